package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltree/internal/session"
	"github.com/abhisek/skilltree/internal/treefile"
)

func newImportCmd(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "import <outline>",
		Short: "Replace the tree with an indented text outline",
		Long: `Replace the tree with an indented text outline and save it as JSON.

Each line is one skill. Two spaces of indentation or a leading "- " marker
nest a line under the one above it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, done, err := o.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer done()

			if err := sess.Import(ctx, args[0]); err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = o.cfg.File
			}
			if err := sess.SaveAs(ctx, dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d skills into %s.\n", sess.Tree().Len(), dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "JSON file to write (default: the tree file)")
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the tree as JSON or an indented outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(io.Writer, *session.Session) error
			switch format {
			case "json":
				write = func(w io.Writer, s *session.Session) error { return treefile.Encode(w, s.Tree()) }
			case "text", "outline":
				write = func(w io.Writer, s *session.Session) error { return treefile.WriteOutline(w, s.Tree()) }
			default:
				return fmt.Errorf("unknown format %q (want json or text)", format)
			}

			sess, _, done, err := o.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer done()

			if out == "" || out == "-" {
				return write(cmd.OutOrStdout(), sess)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := write(f, sess); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or text")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
