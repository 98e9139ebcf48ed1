package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/skilltree/internal/app"
	"github.com/abhisek/skilltree/internal/store"
)

// runApp opens the tree file, seeding a new one with the starter skills,
// and launches the TUI. The TUI owns the terminal, so logs go to the state
// directory with --verbose and nowhere otherwise.
func runApp(cmd *cobra.Command, o *options) error {
	logger := log.New(io.Discard)
	if o.cfg.Verbose {
		f, err := stateLogFile()
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = newLogger(f, log.DebugLevel)
	}
	ctx := log.WithContext(cmd.Context(), logger)

	sess, st, done, err := o.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer done()

	var history store.SnapshotRepo
	if st != nil {
		history = st.SnapshotRepo()
	}

	logger.Debug("starting terminal UI", "file", sess.Path(), "skills", sess.Tree().Len())
	if err := app.Run(ctx, sess, app.Options{History: history}); err != nil {
		return err
	}
	if sess.Dirty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Quit without saving changes to %s.\n", sess.Path())
	}
	return nil
}
