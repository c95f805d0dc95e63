package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/engine"
)

func listenCmd() *cobra.Command {
	var flags captureFlags

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Capture payments from notifications streamed on stdin",
		Long: `Read notifications as JSON lines from stdin and run each one through the
capture pipeline as it arrives. Each line is an object with the fields
source_id, title, text, big_text and optionally posted_at (RFC 3339). When
posted_at is present it is the capture time used for duplicate suppression;
otherwise the time the line is read is used. Inbox writes are queued so a
slow database never holds up the stream.

Rejected notifications are silent; run with --log-level debug to see why a
notification was not captured.`,
		Example: `  echo '{"source_id":"com.eg.android.AlipayGphone","text":"支付成功 ￥88.00"}' | paycapture listen`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.queueInbox = true
			return runListen(cmd, cmd.InOrStdin(), flags)
		},
	}

	addCaptureFlags(cmd, &flags)
	return cmd
}

func runListen(cmd *cobra.Command, in io.Reader, flags captureFlags) error {
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

	common.LogInfo("Listening for notifications", common.Fields{"sources": len(cfg.Sources)})

	reader := cli.NewNonBlockingReader(in)
	for {
		n, err := reader.ReadNotification(ctx)
		switch {
		case err == nil:
		case errors.Is(err, cli.ErrMalformedNotification):
			slog.Warn("Skipping malformed notification", "error", err)
			continue
		case errors.Is(err, io.EOF), errors.Is(err, cli.ErrInputCancelled):
			return finishCapture(cmd, e, interrupts)
		default:
			return fmt.Errorf("failed to read notification: %w", err)
		}

		// Rejections are recorded in the engine stats.
		_, _ = e.Handle(ctx, n)
	}
}

// finishCapture prints the outcome summary unless the interrupt handler already did.
func finishCapture(cmd *cobra.Command, e *engine.Engine, interrupts *cli.InterruptHandler) error {
	if interrupts.WasInterrupted() {
		return nil
	}
	if _, err := fmt.Fprintln(cmd.ErrOrStderr(), cli.RenderStats(e.Stats())); err != nil {
		slog.Warn("Failed to write summary", "error", err)
	}
	return nil
}

