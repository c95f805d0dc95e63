package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/engine"
	"github.com/Veraticus/paycapture/internal/spool"
)

func watchCmd() *cobra.Command {
	var (
		flags    captureFlags
		existing bool
		remove   bool
		pattern  string
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Capture payments from notification files dropped into a spool directory",
		Long: `Watch a directory for notification files and capture each one once it has
been fully written. A file may hold one notification object, a JSON array of
them or one object per line. Notifications in a file are delivered in file
order, with posted_at as the capture time when present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			e, cleanup, err := buildEngine(cmd, cfg, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := interrupts.HandleInterrupts(cmd.Context(), func() string {
				return cli.RenderStats(e.Stats())
			})
			defer interrupts.Stop()

			w := spool.NewWatcher(args[0])
			w.Pattern = pattern
			w.IncludeExisting = existing

			common.LogInfo("Watching spool directory", common.Fields{"dir": args[0], "pattern": pattern})
			if err := w.Run(ctx, spoolHandler(e, remove)); err != nil {
				return fmt.Errorf("spool watcher failed: %w", err)
			}

			return finishCapture(cmd, e, interrupts)
		},
	}

	addCaptureFlags(cmd, &flags)
	cmd.Flags().BoolVar(&existing, "existing", false, "also process files already in the directory")
	cmd.Flags().BoolVar(&remove, "remove", false, "delete each file after it has been processed")
	cmd.Flags().StringVar(&pattern, "pattern", "*.json", "file name pattern to watch")

	return cmd
}

// spoolHandler replays each settled spool file in file order.
func spoolHandler(e *engine.Engine, remove bool) spool.HandlerFunc {
	return func(ctx context.Context, path string) error {
		batch, err := spool.ReadFile(path)
		if err != nil {
			return err
		}

		if _, err := e.Replay(ctx, batch, nil); err != nil {
			return err
		}
		common.LogDebug("Processed spool file", common.Fields{"path": path, "notifications": len(batch)})

		if remove {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
		return nil
	}
}
