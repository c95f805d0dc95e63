package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Options configures how the review program talks to the terminal.
type Options struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Run starts the review screen and blocks until the user quits or ctx ends.
// It returns the final model so callers can report what was done.
func Run(ctx context.Context, store Store, cfg Config, opts Options) (Model, error) {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(New(ctx, store, cfg), programOpts...)
	final, err := p.Run()
	if err != nil {
		return Model{}, fmt.Errorf("inbox review failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Model{}, fmt.Errorf("unexpected model type %T", final)
	}
	return m, nil
}
