package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/skilltree/internal/config"
	"github.com/abhisek/skilltree/internal/llm"
	"github.com/abhisek/skilltree/internal/session"
	"github.com/abhisek/skilltree/internal/store"
	"github.com/abhisek/skilltree/internal/treefile"
)

// options is the state shared by every command of one invocation.
type options struct {
	configPath string
	cfg        config.Config

	// newProvider builds the LLM provider for generate.
	newProvider func(ctx context.Context, repo store.EventRepo) (llm.Provider, error)
}

// Execute runs the skilltree CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	return newRoot(&options{newProvider: llm.NewProviderFromEnv})
}

func newRoot(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "skilltree",
		Short: "A skill checklist where completion flows through the tree",
		Long: `skilltree keeps a tree of skills in a JSON file. Marking every sub-skill
complete completes the parent; with the cascade policy, completing a parent
completes everything under it. Run without a command to open the terminal UI.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, o)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/skilltree/config.yaml)")
	f.StringP("file", "f", "", "tree file (default skilltree.json)")
	f.String("policy", "", "completion policy: cascade or leaf-only")
	f.String("db", "", "snapshot history database (overrides SKILLTREE_DB)")
	f.BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newShowCmd(o),
		newAddCmd(o),
		newToggleCmd(o),
		newSetCmd(o, "check", true),
		newSetCmd(o, "uncheck", false),
		newDeleteCmd(o),
		newExpandCmd(o, "expand-all", true),
		newExpandCmd(o, "collapse-all", false),
		newImportCmd(o),
		newExportCmd(o),
		newStatsCmd(o),
		newResetCmd(o),
		newHistoryCmd(o),
		newGenerateCmd(o),
		newLLMCmd(o),
		newConfigCmd(o),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration with the root flags bound over it and puts
// a logger in the command context.
func (o *options) setup(cmd *cobra.Command) error {
	v, err := config.New(o.configPath)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Root()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := newLogger(cmd.ErrOrStderr(), level)
	cmd.SetContext(log.WithContext(cmd.Context(), logger))
	logger.Debug("configuration loaded", "file", cfg.File, "policy", cfg.Policy, "config", v.ConfigFileUsed())
	return nil
}

func bindFlags(v *viper.Viper, root *cobra.Command) error {
	flags := root.PersistentFlags()
	for key, name := range map[string]string{
		config.KeyFile:    "file",
		config.KeyPolicy:  "policy",
		config.KeyDB:      "db",
		config.KeyVerbose: "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// newLogger creates a logger with short timestamps writing to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// resolveDBPath returns the database path: --db / SKILLTREE_DB / config
// first, then the default XDG path.
func (o *options) resolveDBPath() (string, error) {
	if p := o.cfg.DB; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the history database.
func (o *options) openStore() (*store.Store, error) {
	dbPath, err := o.resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openSession opens the configured tree file. Snapshot history is attached
// when enabled; a history database that cannot be opened is logged and
// skipped. The returned func closes the database.
func (o *options) openSession(ctx context.Context, seed bool) (*session.Session, *store.Store, func(), error) {
	logger := log.FromContext(ctx)
	done := func() {}

	var (
		st   *store.Store
		repo store.SnapshotRepo
	)
	if o.cfg.History.Enabled {
		s, err := o.openStore()
		if err != nil {
			logger.Warn("snapshot history unavailable", "err", err)
		} else {
			st, repo = s, s.SnapshotRepo()
			done = func() { s.Close() }
		}
	}

	sess, err := session.Open(ctx, session.Options{
		Path:        o.cfg.File,
		Policy:      o.cfg.Policy,
		SeedDefault: seed,
		History:     repo,
		Keep:        o.cfg.History.Keep,
	})
	if err != nil {
		done()
		return nil, nil, nil, err
	}
	return sess, st, done, nil
}

// mutate opens the tree file, applies fn and saves the tree if it changed.
// fn returns the message printed on success.
func (o *options) mutate(cmd *cobra.Command, fn func(*session.Session) (string, error)) error {
	if err := o.checkWritable(); err != nil {
		return err
	}
	ctx := cmd.Context()
	sess, _, done, err := o.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer done()

	msg, err := fn(sess)
	if err != nil {
		return err
	}
	if sess.Dirty() {
		if err := sess.Save(ctx); err != nil {
			return err
		}
	}
	if msg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return nil
}

// checkWritable rejects a --file that names an outline. Outlines are read
// only; changes are saved as JSON.
func (o *options) checkWritable() error {
	if treefile.IsOutline(o.cfg.File) {
		return fmt.Errorf("%s is an outline and cannot be saved; convert it with `skilltree import %s --out skilltree.json`",
			o.cfg.File, o.cfg.File)
	}
	return nil
}

// stateLogFile opens the TUI debug log in the state directory.
func stateLogFile() (*os.File, error) {
	dir, err := config.StateDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, "skilltree.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
