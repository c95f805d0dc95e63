package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/model"
)

// TerminalPresenter renders each prefill request as a boxed prompt on a terminal.
type TerminalPresenter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewTerminalPresenter creates a presenter writing to w, or stdout when w is nil.
func NewTerminalPresenter(w io.Writer) *TerminalPresenter {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalPresenter{writer: w}
}

// Present writes the prompt. Concurrent calls never interleave.
func (p *TerminalPresenter) Present(ctx context.Context, req model.PrefillRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintln(p.writer, RenderPrefill(req)); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	return nil
}

// RenderPrefill formats a prefill request: the summary line, the note and a
// footer carrying the request code.
func RenderPrefill(req model.PrefillRequest) string {
	summary, note, _ := strings.Cut(req.Detail, "\n")
	if summary == "" {
		summary = req.Summary
	}
	if note == "" {
		note = req.Note
	}

	var b strings.Builder
	b.WriteString(summary)
	if note != "" {
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(note))
	}
	b.WriteString("\n")
	footer := fmt.Sprintf("request %d", req.RequestCode)
	if req.ID != "" {
		footer += " · " + req.ID
	}
	b.WriteString(SubtleStyle.Render(footer))

	title := req.Title
	if title == "" {
		title = "Payment detected"
	}
	return RenderBox(MoneyIcon+" "+title, b.String())
}

// DeniedPresenter stands in for a presentation surface the user has turned off.
type DeniedPresenter struct{}

// Present always reports that presentation was denied.
func (DeniedPresenter) Present(context.Context, model.PrefillRequest) error {
	return common.ErrPresentationDenied
}
