package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/engine"
	"github.com/Veraticus/paycapture/internal/service"
	"github.com/Veraticus/paycapture/internal/spool"
)

func replayCmd() *cobra.Command {
	var (
		flags    captureFlags
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Run recorded notifications through the capture pipeline",
		Long: `Replay a file of recorded notifications (an object, an array or JSON lines)
in order, then print a summary of what was captured and why the rest was
rejected. Notifications carrying posted_at are deduplicated on their recorded
time, so a recording reproduces what the live pipeline would have done.
Useful for tuning keywords and currency settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("quiet") {
				flags.quiet = true
			}
			stats, err := runReplay(cmd, args[0], flags, progress)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.ErrOrStderr(), cli.RenderStats(stats))
			return err
		},
	}

	addCaptureFlags(cmd, &flags)
	cmd.Flags().BoolVar(&progress, "progress", true, "show a progress bar")

	return cmd
}

// runReplay delivers the recording at path and returns the outcome counts.
func runReplay(cmd *cobra.Command, path string, flags captureFlags, progress bool) (service.CaptureStats, error) {
	cfg, err := loadConfig()
	if err != nil {
		return service.CaptureStats{}, err
	}

	batch, err := spool.ReadFile(path)
	if err != nil {
		return service.CaptureStats{}, common.NewUserError("Could not read replay file "+path, err)
	}

	e, cleanup, err := buildEngine(cmd, cfg, flags)
	if err != nil {
		return service.CaptureStats{}, err
	}
	defer cleanup()

	var onResult func(engine.Result)
	if progress {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(batch), "Replaying notifications...")
		onResult = func(engine.Result) {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	if _, err := e.Replay(cmd.Context(), batch, onResult); err != nil {
		return e.Stats(), err
	}
	return e.Stats(), nil
}
