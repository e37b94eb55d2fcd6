package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/warehouse"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all products with current availability",
		Long: `List every product with the number of units currently assemblable
from on-hand article stock, sorted by product name.

Example:
  stockroom list --data ./data
  stockroom list --backend sqlite --db stockroom.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	w, cleanup, err := openWarehouse(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	rows, err := w.List()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list products", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(rows, renderListing(rows))
}

// renderListing formats the product listing the way the interactive loop
// prints it: one "name: availability" line per product.
func renderListing(rows []warehouse.ProductAvailability) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %d", row.Name, row.Availability)
	}
	return b.String()
}
