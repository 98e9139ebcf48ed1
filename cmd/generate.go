package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/skilltree/internal/outline"
	"github.com/abhisek/skilltree/internal/skilltree"
	"github.com/abhisek/skilltree/internal/store"
	"github.com/abhisek/skilltree/internal/treefile"
)

type generateFlags struct {
	under   string
	replace bool
	depth   int
	items   int
	notes   string
	dryRun  bool
}

func newGenerateCmd(o *options) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Draft skills for a topic with a language model",
		Long: `Ask the configured language model for an outline of skills for a topic and
add it to the tree: at the top level, under --under, or in place of the
whole tree with --replace.

The provider is chosen from SKILLTREE_LLM_PROVIDER (anthropic, openai,
openrouter or gemini) and its API key variable.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, o, strings.Join(args, " "), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.under, "under", "", "graft the outline under this skill (label or path)")
	fl.BoolVar(&f.replace, "replace", false, "replace the whole tree with the outline")
	fl.IntVar(&f.depth, "depth", 0, "maximum outline depth (default 4)")
	fl.IntVar(&f.items, "items", 0, "maximum number of skills (default 60)")
	fl.StringVar(&f.notes, "notes", "", "extra instructions for the model")
	fl.BoolVar(&f.dryRun, "dry-run", false, "print the outline without changing the tree")
	cmd.MarkFlagsMutuallyExclusive("under", "replace")
	return cmd
}

func runGenerate(cmd *cobra.Command, o *options, topic string, f generateFlags) error {
	if !f.dryRun {
		if err := o.checkWritable(); err != nil {
			return err
		}
	}
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	sess, st, done, err := o.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer done()

	var events store.EventRepo
	if st != nil {
		events = st.EventRepo()
	}
	provider, err := o.newProvider(ctx, events)
	if err != nil {
		return fmt.Errorf("configure LLM provider: %w", err)
	}

	parent := skilltree.RootID
	if f.under != "" {
		if parent, _, err = resolve(sess, f.under); err != nil {
			return err
		}
	}

	in := outline.Input{
		Topic:    topic,
		MaxDepth: f.depth,
		MaxItems: f.items,
		Notes:    f.notes,
	}
	if !f.replace {
		in.Existing = childLabels(sess.Tree(), parent)
	}

	logger.Info("generating outline", "topic", topic, "model", provider.ModelID())
	records, err := outline.New(provider, outline.DefaultConfig()).Generate(ctx, in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.dryRun {
		preview := skilltree.New()
		if err := treefile.Replace(preview, records); err != nil {
			return err
		}
		return treefile.WriteOutline(out, preview)
	}

	if f.replace {
		err = sess.Replace(records)
	} else {
		_, err = sess.Graft(parent, records)
	}
	if err != nil {
		return err
	}
	if err := sess.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %d skills for %q to %s.\n", treefile.Count(records), topic, sess.Path())
	return nil
}

func childLabels(t *skilltree.Tree, parent skilltree.ID) []string {
	ids, err := t.Children(parent)
	if err != nil {
		return nil
	}
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, err := t.Get(id); err == nil {
			labels = append(labels, n.Label)
		}
	}
	return labels
}
