package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/config"
	"github.com/Veraticus/paycapture/internal/engine"
	"github.com/Veraticus/paycapture/internal/service"
	"github.com/Veraticus/paycapture/internal/storage"
	"github.com/spf13/cobra"
)

// initStorage opens and migrates the inbox database.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(cfg.Database.Path)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// captureFlags are shared by the commands that feed notifications into the engine.
type captureFlags struct {
	noInbox bool
	quiet   bool
	// queueInbox buffers inbox writes so live delivery never waits on SQLite.
	queueInbox bool
}

func addCaptureFlags(cmd *cobra.Command, f *captureFlags) {
	cmd.Flags().BoolVar(&f.noInbox, "no-inbox", false, "do not store captures in the inbox database")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not render capture prompts")
}

// buildEngine wires the engine to its presenters. The returned cleanup drains
// the inbox queue and closes the inbox, if one was opened.
func buildEngine(cmd *cobra.Command, cfg *config.Config, f captureFlags) (*engine.Engine, func(), error) {
	var presenters engine.MultiPresenter
	cleanup := func() {}

	switch {
	case !cfg.Presentation.Enabled:
		presenters = append(presenters, cli.DeniedPresenter{})
	case !f.quiet:
		presenters = append(presenters, cli.NewTerminalPresenter(cmd.OutOrStdout()))
	}

	if !f.noInbox {
		store, err := initStorage(cmd.Context(), cfg)
		if err != nil {
			return nil, nil, err
		}
		var (
			inbox service.Presenter = store
			queue *engine.QueuedPresenter
		)
		if f.queueInbox {
			queue = engine.NewQueuedPresenter(store, engine.DefaultQueueSize)
			inbox = queue
		}
		presenters = append(presenters, inbox)
		cleanup = func() {
			if queue != nil {
				queue.Close()
			}
			if err := store.Close(); err != nil {
				common.LogError(err, "Failed to close inbox", common.Fields{"path": store.Path()})
			}
		}
	}

	var presenter service.Presenter
	if len(presenters) > 0 {
		presenter = presenters
	}

	e, err := engine.FromConfig(cfg, presenter)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return e, cleanup, nil
}
