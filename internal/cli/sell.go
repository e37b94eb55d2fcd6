package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell <product>",
		Short: "Sell one unit of a product and commit the stock change",
		Long: `Sell one unit of the named product: decrement the stock of every
required article, update the availability of every dependent product, and
commit the collections.

Fails without side effects when the product does not exist or its
availability is zero.

Example:
  stockroom sell gadget
  stockroom sell "hammer drill" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSell(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runSell(opts *RootOptions, cmd *cobra.Command, name string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	w, cleanup, err := openWarehouse(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	receipt, err := w.Sell(name)
	if err != nil {
		if opts.Format == "json" {
			// The envelope already carries the error; exit non-zero
			// without printing it twice.
			if ferr := formatter.Error(errorCode(err), err.Error()); ferr != nil {
				return ferr
			}
			return &ExitError{Code: ExitFailure}
		}
		return WrapExitError(ExitFailure, "sale failed", err)
	}

	// One-shot invocation: flush immediately, there is no session exit to
	// hang the commit on.
	if err := w.Commit(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "failed to commit", err)
	}

	text := fmt.Sprintf("Sold one %q (availability now %d)", receipt.Product, receipt.Availability)
	return formatter.Success(receipt, text)
}
