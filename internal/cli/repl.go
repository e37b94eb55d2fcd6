package cli

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/warehouse"
)

//go:embed help.txt
var helpText string

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	Silent bool
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive request loop",
		Long: `Start the interactive request loop. One request per line:

  list           list products with availability
  sell <name>    sell one unit of a product
  help           show the request reference
  exit           commit the collections and quit

Unrecognized input is reported as an error and the session continues.

Example:
  stockroom repl --data ./data
  stockroom repl --silent < requests.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Silent, "silent", false, "suppress the prompt (for piped input)")

	return cmd
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	w, cleanup, err := openWarehouse(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	session := &replSession{
		warehouse: w,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
		prompt:    "Please type a request: ",
	}
	if opts.Silent {
		session.prompt = ""
	}
	return session.run(ctx, cmd.InOrStdin())
}

// replSession is the interactive loop state. All requests run to completion
// sequentially; no request failure terminates the session.
type replSession struct {
	warehouse *warehouse.Warehouse
	out       io.Writer
	errOut    io.Writer
	prompt    string
}

func (s *replSession) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if s.prompt != "" {
			fmt.Fprint(s.out, s.prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return WrapExitError(ExitCommandError, "failed to read input", err)
			}
			// Input exhausted: behave like an explicit exit so piped
			// sessions still flush their stock changes.
			return s.exit(ctx)
		}

		command, argument := splitRequest(scanner.Text())
		if command == "exit" {
			return s.exit(ctx)
		}
		if err := s.dispatch(command, argument); err != nil {
			fmt.Fprintf(s.errOut, "Error: %s\n", err)
		}
	}
}

func (s *replSession) dispatch(command, argument string) error {
	switch command {
	case "":
		return nil
	case "list":
		return s.list()
	case "sell":
		return s.sell(argument)
	case "help":
		fmt.Fprint(s.out, helpText)
		return nil
	default:
		return fmt.Errorf("unrecognized request %q, please try again", command)
	}
}

func (s *replSession) list() error {
	rows, err := s.warehouse.List()
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Fprintf(s.out, "%s: %d\n", row.Name, row.Availability)
	}
	return nil
}

func (s *replSession) sell(name string) error {
	if name == "" {
		return fmt.Errorf("sell needs a product name")
	}
	receipt, err := s.warehouse.Sell(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Sold one %q (availability now %d)\n", receipt.Product, receipt.Availability)
	return nil
}

func (s *replSession) exit(ctx context.Context) error {
	if err := s.warehouse.Commit(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to commit", err)
	}
	fmt.Fprintln(s.out, "Bye!")
	return nil
}

// splitRequest splits one input line into the request name and the rest.
// The remainder keeps interior spacing so multi-word product names work:
// "sell hammer drill" sells "hammer drill".
func splitRequest(line string) (string, string) {
	line = strings.TrimSpace(line)
	command, argument, _ := strings.Cut(line, " ")
	return command, strings.TrimSpace(argument)
}
