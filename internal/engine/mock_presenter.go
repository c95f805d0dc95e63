package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/paycapture/internal/model"
)

// MockPresenter is a test implementation of service.Presenter that records
// every request it receives.
type MockPresenter struct {
	err      error
	requests []model.PrefillRequest
	mu       sync.Mutex
}

// NewMockPresenter creates a presenter that returns err from every call.
func NewMockPresenter(err error) *MockPresenter {
	return &MockPresenter{err: err}
}

// Present records the request.
func (m *MockPresenter) Present(ctx context.Context, req model.PrefillRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	m.requests = append(m.requests, req)
	return m.err
}

// SetError changes the error returned by subsequent calls.
func (m *MockPresenter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns a copy of the recorded requests.
func (m *MockPresenter) Requests() []model.PrefillRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.PrefillRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
