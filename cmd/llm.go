package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltree/internal/store"
)

func newLLMCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Inspect LLM request/response events",
	}
	cmd.AddCommand(newLLMListCmd(o), newLLMViewCmd(o), newLLMStatsCmd(o))
	return cmd
}

func newLLMListCmd(o *options) *cobra.Command {
	var (
		limit   int
		purpose string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent LLM events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM events found.")
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-19s  %-10s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Fprintln(out, strings.Repeat("─", 96))

			for _, e := range events {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-10s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(e.Purpose, 10),
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show")
	cmd.Flags().StringVarP(&purpose, "purpose", "p", "", "filter by purpose (e.g. outline)")
	return cmd
}

func newLLMViewCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view <id>",
		Short: "View full request/response for an LLM event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid ID %q: %w", args[0], err)
			}

			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			out := cmd.OutOrStdout()
			sep := strings.Repeat("─", 60)

			fmt.Fprintf(out, "ID:        %d\n", e.ID)
			fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
			fmt.Fprintf(out, "Model:     %s\n", e.Model)
			fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
			fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
			fmt.Fprintf(out, "Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
			}

			for _, part := range []struct{ title, body string }{
				{"REQUEST", e.RequestBody},
				{"RESPONSE", e.ResponseBody},
			} {
				fmt.Fprintln(out)
				fmt.Fprintln(out, sep)
				fmt.Fprintln(out, part.title)
				fmt.Fprintln(out, sep)
				if part.body == "" {
					fmt.Fprintln(out, "(not captured)")
				} else {
					fmt.Fprintln(out, part.body)
				}
			}
			return nil
		},
	}
}

func newLLMStatsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregated LLM token usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}
			byModel, err := s.EventRepo().LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}

			writeUsage(cmd, "Purpose", byPurpose, func(u store.LLMUsage) string { return u.Purpose })
			fmt.Fprintln(out)
			writeUsage(cmd, "Model", byModel, func(u store.LLMUsage) string { return u.Model })
			return nil
		},
	}
}

// writeUsage prints one usage table grouped by the column key returns.
func writeUsage(cmd *cobra.Command, column string, rows []store.LLMUsage, key func(store.LLMUsage) string) {
	out := cmd.OutOrStdout()
	rule := strings.Repeat("─", 82)

	fmt.Fprintf(out, "Usage by %s\n", column)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%-28s  %6s  %10s  %10s  %10s  %8s\n",
		column, "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(out, rule)

	var calls, in, outTokens int
	for _, u := range rows {
		fmt.Fprintf(out, "%-28s  %6d  %10d  %10d  %10d  %8d\n",
			truncate(key(u), 28), u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		outTokens += u.OutputTokens
	}
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%-28s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, outTokens, in+outTokens)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
