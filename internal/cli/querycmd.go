package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/graftdb/graft/query"
)

// readQueryText loads query source from -e, a file argument, or stdin.
func readQueryText(cmd *cobra.Command, args []string, expr string) (string, error) {
	if expr != "" {
		if len(args) > 0 {
			return "", errors.New("pass either -e or a file, not both")
		}
		return expr, nil
	}
	if len(args) == 1 {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// NewQueryCommand creates the query command.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	var (
		expr  string
		first bool
	)

	cmd := &cobra.Command{
		Use:   "query [file]",
		Short: "Run a query against the store",
		Long: `Run a query against the store.

The query text comes from -e, a file argument, or stdin. Result rows are
printed one per line; with --format json, as a JSON array of rows.

Example:
  graft query -e '?- name(A, "wiki", "Index"), edge(A, B, L).'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readQueryText(cmd, args, expr)
			if err != nil {
				return err
			}

			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			if first {
				row, err := conn.QueryFirst(cmd.Context(), text)
				if err != nil {
					return err
				}
				if row == nil {
					return printRows(cmd.OutOrStdout(), opts.Format, nil)
				}
				return printRows(cmd.OutOrStdout(), opts.Format, [][]string{row})
			}

			rows, err := conn.QueryAll(cmd.Context(), text)
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), opts.Format, rows)
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "query text")
	cmd.Flags().BoolVar(&first, "first", false, "print only the first result row")
	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand(opts *RootOptions) *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:           "check [file]",
		Short:         "Parse and validate a query without running it",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readQueryText(cmd, args, expr)
			if err != nil {
				return err
			}
			q, err := query.Parse(text)
			if err != nil {
				return err
			}
			// Echo the canonical form so the user sees what was accepted.
			fmt.Fprintln(cmd.OutOrStdout(), q)
			return nil
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "query text")
	return cmd
}
