package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHistoryCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and restore archived saves",
	}
	cmd.AddCommand(newHistoryListCmd(o), newHistoryRestoreCmd(o), newHistoryPruneCmd(o))
	return cmd
}

func newHistoryListCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			snaps, err := s.SnapshotRepo().List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(snaps) == 0 {
				fmt.Fprintln(out, "No snapshots yet. Every save adds one.")
				return nil
			}

			fmt.Fprintf(out, "%-8s  %-19s  %6s  %6s  %s\n", "ID", "Saved", "Skills", "Done", "File")
			fmt.Fprintln(out, strings.Repeat("─", 72))
			for _, snap := range snaps {
				fmt.Fprintf(out, "%-8s  %-19s  %6d  %6d  %s\n",
					truncate(snap.ID, 8),
					snap.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					snap.Nodes,
					snap.Completed,
					snap.Path,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of snapshots to show (0 = all)")
	return cmd
}

func newHistoryRestoreCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the tree file with a snapshot",
		Long:  "Replace the tree file with a snapshot. The id may be any unique prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.checkWritable(); err != nil {
				return err
			}
			ctx := cmd.Context()
			sess, st, done, err := o.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer done()
			if st == nil {
				return errors.New("snapshot history is unavailable")
			}

			snap, err := sess.Restore(ctx, args[0])
			if err != nil {
				return err
			}
			if err := sess.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %s from %s (%d skills) into %s.\n",
				truncate(snap.ID, 8), snap.CreatedAt.Local().Format("2006-01-02 15:04:05"), snap.Nodes, sess.Path())
			return nil
		},
	}
}

func newHistoryPruneCmd(o *options) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = o.cfg.History.Keep
			}
			if keep < 0 {
				return fmt.Errorf("--keep must not be negative")
			}
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.SnapshotRepo().Prune(cmd.Context(), keep)
			if err != nil {
				return fmt.Errorf("prune snapshots: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshots, kept at most %d.\n", n, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "snapshots to keep (default history.keep)")
	return cmd
}
