package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/spf13/cobra"

	"github.com/graftdb/graft"
)

// NewPutCommand creates the put command.
func NewPutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "put [file]",
		Short:         "Store blob content and print its hash",
		Long:          "Store blob content from a file (or stdin) and print its SHA-256 hash.\nStoring the same bytes twice is a no-op that prints the same hash.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}

			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			hash, err := conn.StoreBlob(cmd.Context(), src)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:           "get <hash>",
		Short:         "Fetch blob content by hash",
		Long:          "Fetch blob content by hash, writing it to stdout or, with -o, atomically\nto a file (the file never exists half-written).",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := graft.ParseHash(args[0])
			if err != nil {
				return err
			}

			conn, err := openConn(opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			rc, err := conn.FetchBlob(cmd.Context(), hash)
			if err != nil {
				return err
			}
			defer rc.Close()

			if outPath == "" {
				_, err = io.Copy(cmd.OutOrStdout(), rc)
				return err
			}

			t, err := renameio.TempFile("", outPath)
			if err != nil {
				return err
			}
			defer t.Cleanup()
			if _, err := io.Copy(t, rc); err != nil {
				return err
			}
			return t.CloseAtomicallyReplace()
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write content to this file instead of stdout")
	return cmd
}
