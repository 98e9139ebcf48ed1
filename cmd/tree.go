package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltree/internal/session"
	"github.com/abhisek/skilltree/internal/skilltree"
	"github.com/abhisek/skilltree/internal/treefile"
)

func newShowCmd(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tree with completion marks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, done, err := o.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer done()

			out := cmd.OutOrStdout()
			if asJSON {
				return treefile.Encode(out, sess.Tree())
			}
			if sess.Tree().Len() == 0 {
				fmt.Fprintf(out, "No skills in %s yet. Add one with `skilltree add <label>`.\n", sess.Path())
				return nil
			}
			return printTree(out, sess.Tree())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON document instead")
	return cmd
}

// printTree writes one line per skill: ✓ for completed, · otherwise.
func printTree(w io.Writer, t *skilltree.Tree) error {
	return t.Walk(func(n skilltree.Node, depth int) error {
		mark := "·"
		if n.Completed {
			mark = "✓"
		}
		_, err := fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), mark, n.Label)
		return err
	})
}

// resolve looks up a node ref ("A/B/C" path or bare label).
func resolve(sess *session.Session, ref string) (skilltree.ID, skilltree.Node, error) {
	id, err := sess.Tree().Lookup(ref)
	if err != nil {
		return 0, skilltree.Node{}, err
	}
	if id == skilltree.RootID {
		return 0, skilltree.Node{}, fmt.Errorf("%w: %q names the root, not a skill", skilltree.ErrNotFound, ref)
	}
	n, err := sess.Tree().Get(id)
	return id, n, err
}

func newAddCmd(o *options) *cobra.Command {
	var parentRef string
	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add a skill",
		Long:  "Add a skill at the top level, or under --parent (a label or A/B/C path).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.mutate(cmd, func(sess *session.Session) (string, error) {
				parent := skilltree.RootID
				where := "the top level"
				if parentRef != "" {
					id, n, err := resolve(sess, parentRef)
					if err != nil {
						return "", err
					}
					parent, where = id, n.Label
				}
				label := strings.TrimSpace(args[0])
				if _, err := sess.Add(parent, label); err != nil {
					return "", err
				}
				return fmt.Sprintf("Added %q under %s.", label, where), nil
			})
		},
	}
	cmd.Flags().StringVarP(&parentRef, "parent", "p", "", "parent skill (label or path)")
	return cmd
}

func newToggleCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <ref>",
		Short: "Flip a skill between complete and incomplete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.mutate(cmd, func(sess *session.Session) (string, error) {
				id, n, err := resolve(sess, args[0])
				if err != nil {
					return "", err
				}
				done, err := sess.Toggle(id)
				if err != nil {
					return "", err
				}
				return stateMessage(n.Label, done), nil
			})
		},
	}
}

func newSetCmd(o *options, use string, completed bool) *cobra.Command {
	short := "Mark a skill complete"
	if !completed {
		short = "Mark a skill incomplete"
	}
	return &cobra.Command{
		Use:   use + " <ref>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.mutate(cmd, func(sess *session.Session) (string, error) {
				id, n, err := resolve(sess, args[0])
				if err != nil {
					return "", err
				}
				if err := sess.Set(id, completed); err != nil {
					return "", err
				}
				return stateMessage(n.Label, completed), nil
			})
		},
	}
}

func stateMessage(label string, completed bool) string {
	if completed {
		return fmt.Sprintf("✓ %s", label)
	}
	return fmt.Sprintf("· %s", label)
}

func newDeleteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete a skill and everything under it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.mutate(cmd, func(sess *session.Session) (string, error) {
				id, n, err := resolve(sess, args[0])
				if err != nil {
					return "", err
				}
				removed := len(sess.Tree().Descendants(id)) + 1
				if err := sess.Delete(id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Deleted %q (%d skills).", n.Label, removed), nil
			})
		},
	}
}

func newExpandCmd(o *options, use string, expanded bool) *cobra.Command {
	short := "Expand every skill in the saved tree"
	if !expanded {
		short = "Collapse every skill in the saved tree"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.mutate(cmd, func(sess *session.Session) (string, error) {
				if expanded {
					sess.ExpandAll()
				} else {
					sess.CollapseAll()
				}
				return "", nil
			})
		},
	}
}

func newResetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Mark every skill incomplete",
		Long:  "Mark every skill incomplete. The previous state stays in the snapshot history.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.mutate(cmd, func(sess *session.Session) (string, error) {
				sess.Reset()
				return fmt.Sprintf("Reset %d skills.", sess.Tree().Len()), nil
			})
		},
	}
}
