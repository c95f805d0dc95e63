package tui

import (
	"context"
	"time"

	"github.com/Veraticus/paycapture/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

const storeTimeout = 10 * time.Second

func (m Model) loadRequests() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		requests, err := m.store.ListPrefillRequests(ctx, service.PrefillFilter{
			Status: m.config.Status,
			Limit:  m.config.Limit,
		})
		return requestsLoadedMsg{requests: requests, err: err}
	}
}

func (m Model) confirmRequest(id, category string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		record, err := m.store.ConfirmPrefillRequest(ctx, id, category, m.now())
		return confirmedMsg{id: id, record: record, err: err}
	}
}

func (m Model) dismissRequest(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storeTimeout)
		defer cancel()

		return dismissedMsg{id: id, err: m.store.DismissPrefillRequest(ctx, id)}
	}
}
