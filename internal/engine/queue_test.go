package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/paycapture/internal/model"
)

// gatedPresenter blocks every call until release is closed.
type gatedPresenter struct {
	started chan struct{}
	release chan struct{}
	next    *MockPresenter
}

func (g *gatedPresenter) Present(ctx context.Context, req model.PrefillRequest) error {
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-g.release
	return g.next.Present(ctx, req)
}

func TestQueuedPresenter_PresentsInOrder(t *testing.T) {
	mock := NewMockPresenter(nil)
	q := NewQueuedPresenter(mock, 4)

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Present(context.Background(), model.PrefillRequest{RequestCode: i}))
	}
	q.Close()

	requests := mock.Requests()
	require.Len(t, requests, 3)
	for i, req := range requests {
		assert.Equal(t, i+1, req.RequestCode)
	}
	assert.Zero(t, q.Failed())
}

func TestQueuedPresenter_FullQueueDoesNotBlock(t *testing.T) {
	gate := &gatedPresenter{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		next:    NewMockPresenter(nil),
	}
	q := NewQueuedPresenter(gate, 1)

	// The worker takes the first request and blocks on it, the second fills the buffer.
	require.NoError(t, q.Present(context.Background(), model.PrefillRequest{RequestCode: 1}))
	<-gate.started
	require.NoError(t, q.Present(context.Background(), model.PrefillRequest{RequestCode: 2}))

	err := q.Present(context.Background(), model.PrefillRequest{RequestCode: 3})
	require.ErrorIs(t, err, ErrQueueFull)

	close(gate.release)
	q.Close()
	assert.Len(t, gate.next.Requests(), 2)
}

func TestQueuedPresenter_Closed(t *testing.T) {
	q := NewQueuedPresenter(NewMockPresenter(nil), 1)
	q.Close()
	q.Close()

	err := q.Present(context.Background(), model.PrefillRequest{})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueuedPresenter_CountsFailures(t *testing.T) {
	q := NewQueuedPresenter(NewMockPresenter(errors.New("disk full")), 2)
	require.NoError(t, q.Present(context.Background(), model.PrefillRequest{}))
	require.NoError(t, q.Present(context.Background(), model.PrefillRequest{}))
	q.Close()

	assert.Equal(t, int64(2), q.Failed())
}

func TestQueuedPresenter_CancelledContext(t *testing.T) {
	q := NewQueuedPresenter(NewMockPresenter(nil), 1)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Present(ctx, model.PrefillRequest{}), context.Canceled)
}
