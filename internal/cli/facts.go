package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graftdb/graft"
)

// NewAtomCommand creates the atom command.
func NewAtomCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "atom",
		Short:         "Create a fresh atom and print its identifier",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			atom, err := conn.CreateAtom(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), atom)
			return nil
		},
	}
}

// NewNameCommand creates the name command.
func NewNameCommand(opts *RootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "name <atom> <namespace> <title>",
		Short: "Bind a unique (namespace, title) name to an atom",
		Long: `Bind a unique (namespace, title) name to an atom.

Fails if the name is already bound, unless --replace is given, in which
case the previous binding is discarded.

Example:
  graft name 550e8400-e29b-41d4-a716-446655440000 wiki Index`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			atom, err := graft.ParseAtom(args[0])
			if err != nil {
				return err
			}
			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			return conn.CreateName(cmd.Context(), atom, args[1], args[2], replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "discard any existing binding")
	return cmd
}

// NewEdgeCommand creates the edge command.
func NewEdgeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "edge <from> <to> <label>",
		Short:         "Create a directed labeled edge between two atoms",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := graft.ParseAtom(args[0])
			if err != nil {
				return err
			}
			to, err := graft.ParseAtom(args[1])
			if err != nil {
				return err
			}
			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			return conn.CreateEdge(cmd.Context(), from, to, args[2])
		},
	}
}

// NewTagCommand creates the tag command.
func NewTagCommand(opts *RootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:           "tag <atom> <kind> <value>",
		Short:         "Bind a single-valued tag to an atom",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			atom, err := graft.ParseAtom(args[0])
			if err != nil {
				return err
			}
			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			return conn.CreateTag(cmd.Context(), atom, args[1], args[2], replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "discard any existing value")
	return cmd
}

// NewAttachCommand creates the attach command.
func NewAttachCommand(opts *RootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "attach <atom> <kind> <mime> <hash>",
		Short: "Attach stored blob content to an atom",
		Long: `Attach stored blob content to an atom.

The hash must come from a previous "graft put"; attaching an unstored
hash fails.`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			atom, err := graft.ParseAtom(args[0])
			if err != nil {
				return err
			}
			hash, err := graft.ParseHash(args[3])
			if err != nil {
				return err
			}
			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			return conn.CreateBlobAttachment(cmd.Context(), atom, args[1], args[2], hash, replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "discard any existing attachment")
	return cmd
}
