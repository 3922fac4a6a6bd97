// Package cli implements the graft command-line tool: a thin wrapper for
// experimenting with a store directory, creating atoms and facts, moving
// blobs in and out, and running queries.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/graftdb/graft"
	"github.com/graftdb/graft/sqlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to YAML config
	Store   string // store directory, overrides the config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the graft CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "graft",
		Short: "graft - a minimal graph-structured data store",
		Long: "Graft stores opaque atoms with attached names, edges, tags, and\n" +
			"content-addressed blob attachments, queried with a small conjunctive\n" +
			"pattern language.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to YAML config (default graft.yaml if present)")
	cmd.PersistentFlags().StringVarP(&opts.Store, "db", "D", "", "store directory (overrides the config)")

	cmd.AddCommand(NewAtomCommand(opts))
	cmd.AddCommand(NewNameCommand(opts))
	cmd.AddCommand(NewEdgeCommand(opts))
	cmd.AddCommand(NewTagCommand(opts))
	cmd.AddCommand(NewAttachCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openConn resolves the store directory from flags and config and opens
// the connection. Callers must Close it.
func openConn(opts *RootOptions) (graft.Conn, error) {
	dir, err := resolveStore(opts)
	if err != nil {
		return nil, err
	}
	return sqlite.Open(dir)
}
