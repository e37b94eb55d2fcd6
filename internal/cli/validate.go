package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/document"
	"github.com/roach88/stockroom/internal/document/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the data documents against the schema",
		Long: `Load the inventory and products documents and check them against the
embedded CUE schema without touching any stock.

Absent documents are reported and skipped; a document that exists but
violates the schema fails validation.

Example:
  stockroom validate --data ./data`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// Validation runs against the raw repository; the schema decorator
	// would hide which document failed on a combined load.
	cfg.SchemaValidation = false
	repo, closer, err := newRepository(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open document repository", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	checks := []struct {
		name       string
		definition string
	}{
		{cfg.InventoryDocument, schema.DefInventory},
		{cfg.ProductsDocument, schema.DefProducts},
	}

	out := cmd.OutOrStdout()
	failed := false
	for _, check := range checks {
		doc, err := repo.Load(cmd.Context(), check.name)
		if errors.Is(err, document.ErrNotExist) {
			fmt.Fprintf(out, "%s: absent (skipped)\n", check.name)
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "%s: FAIL: %v\n", check.name, err)
			failed = true
			continue
		}
		if err := schema.Validate(doc, check.definition); err != nil {
			fmt.Fprintf(out, "%s: FAIL: %v\n", check.name, err)
			failed = true
			continue
		}
		fmt.Fprintf(out, "%s: OK\n", check.name)
	}

	if failed {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}
