package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, done, err := o.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer done()

			st := sess.Stats()
			policy := sess.Engine().Policy()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:       %s\n", sess.Path())
			fmt.Fprintf(out, "Policy:     %s (%s)\n", policy, policy.Description())
			fmt.Fprintf(out, "Skills:     %d (%d top level)\n", st.Nodes, st.TopLevel)
			fmt.Fprintf(out, "Leaves:     %d/%d done\n", st.CompletedLeaves, st.Leaves)
			fmt.Fprintf(out, "Completed:  %d skills\n", st.CompletedNodes)
			fmt.Fprintf(out, "Progress:   %.0f%%\n", st.Percent()*100)
			return nil
		},
	}
}
