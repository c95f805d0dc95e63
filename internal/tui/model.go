// Package tui implements the interactive inbox review screen.
package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Store is the part of the inbox the review screen works against.
type Store interface {
	ListPrefillRequests(ctx context.Context, filter service.PrefillFilter) ([]model.PrefillRequest, error)
	ConfirmPrefillRequest(ctx context.Context, id, category string, at time.Time) (*model.Record, error)
	DismissPrefillRequest(ctx context.Context, id string) error
}

// State represents what the review screen is doing.
type State int

const (
	StateLoading State = iota
	StateBrowsing
	StateCategory
)

// Config configures the review screen.
type Config struct {
	Status          model.PrefillStatus
	DefaultCategory string
	Limit           int
	Width           int
	Height          int
}

// Model holds the review screen state.
type Model struct {
	ctx       context.Context
	store     Store
	lastError error
	now       func() time.Time
	status    string
	config    Config
	keymap    KeyMap
	requests  []model.PrefillRequest
	category  textinput.Model
	help      help.Model
	cursor    int
	confirmed int
	dismissed int
	state     State
	width     int
	height    int
}

// New creates a review model over store.
func New(ctx context.Context, store Store, cfg Config) Model {
	if cfg.Status == "" {
		cfg.Status = model.PrefillPending
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = model.DefaultCategory
	}

	input := textinput.New()
	input.Placeholder = cfg.DefaultCategory
	input.Prompt = "Category: "
	input.CharLimit = 40

	return Model{
		ctx:      ctx,
		store:    store,
		now:      time.Now,
		config:   cfg,
		keymap:   DefaultKeyMap(),
		category: input,
		help:     help.New(),
		width:    cfg.Width,
		height:   cfg.Height,
		state:    StateLoading,
	}
}

// Init loads the requests.
func (m Model) Init() tea.Cmd {
	return m.loadRequests()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case requestsLoadedMsg:
		m.state = StateBrowsing
		m.lastError = msg.err
		if msg.err == nil {
			m.requests = msg.requests
			m.clampCursor()
		}
		return m, nil

	case confirmedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.confirmed++
		m.status = fmt.Sprintf("Recorded %s in %s", msg.record.Amount.StringFixed(2), msg.record.Category)
		m.remove(msg.id)
		return m, nil

	case dismissedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.dismissed++
		m.status = "Dismissed " + shortID(msg.id)
		m.remove(msg.id)
		return m, nil

	case tea.KeyMsg:
		if m.state == StateCategory {
			return m.updateCategory(msg)
		}
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.Refresh):
		m.state = StateLoading
		return m, m.loadRequests()

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.requests)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.Confirm):
		if req, ok := m.selected(); ok && m.actionable(req) {
			return m, m.confirmRequest(req.ID, m.config.DefaultCategory)
		}

	case key.Matches(msg, m.keymap.Category):
		if req, ok := m.selected(); ok && m.actionable(req) {
			m.state = StateCategory
			m.category.SetValue("")
			return m, m.category.Focus()
		}

	case key.Matches(msg, m.keymap.Dismiss):
		if req, ok := m.selected(); ok && m.actionable(req) {
			return m, m.dismissRequest(req.ID)
		}
	}

	return m, nil
}

func (m Model) updateCategory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel):
		m.state = StateBrowsing
		m.category.Blur()
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		m.state = StateBrowsing
		m.category.Blur()
		req, ok := m.selected()
		if !ok {
			return m, nil
		}
		category := m.category.Value()
		if category == "" {
			category = m.config.DefaultCategory
		}
		return m, m.confirmRequest(req.ID, category)
	}

	var cmd tea.Cmd
	m.category, cmd = m.category.Update(msg)
	return m, cmd
}

func (m Model) selected() (model.PrefillRequest, bool) {
	if m.cursor < 0 || m.cursor >= len(m.requests) {
		return model.PrefillRequest{}, false
	}
	return m.requests[m.cursor], true
}

func (m *Model) actionable(req model.PrefillRequest) bool {
	if req.Status != model.PrefillPending {
		m.status = "Only pending requests can be recorded or dismissed"
		return false
	}
	return true
}

func (m *Model) remove(id string) {
	if i := slices.IndexFunc(m.requests, func(req model.PrefillRequest) bool { return req.ID == id }); i >= 0 {
		m.requests = slices.Delete(slices.Clone(m.requests), i, i+1)
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.requests) {
		m.cursor = len(m.requests) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Counts reports how many requests were recorded and dismissed.
func (m Model) Counts() (confirmed, dismissed int) {
	return m.confirmed, m.dismissed
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
