package dedup

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base   = time.UnixMilli(1_700_000_000_000)
	amount = decimal.RequireFromString("88.00")
)

func at(ms int64) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "com.tencent.mm|88.00|lunch", Key("com.tencent.mm", amount, "lunch"))
	assert.Equal(t, Key("a", decimal.RequireFromString("5"), "n"), Key("a", decimal.RequireFromString("5.00"), "n"))
	assert.NotEqual(t, Key("a", decimal.RequireFromString("5.01"), "n"), Key("a", decimal.RequireFromString("5"), "n"))
}

func TestWindow_Accept(t *testing.T) {
	t.Run("first detection is accepted", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		assert.True(t, w.Accept("app", amount, "note", at(0)))
	})

	t.Run("identical detection inside window is suppressed", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "note", at(0)))
		assert.False(t, w.Accept("app", amount, "note", at(7999)))
	})

	t.Run("identical detection at window boundary is accepted", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "note", at(0)))
		assert.True(t, w.Accept("app", amount, "note", at(8000)))
	})

	t.Run("identical detection after window is accepted", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "note", at(0)))
		assert.True(t, w.Accept("app", amount, "note", at(12000)))
	})

	t.Run("suppression does not extend the window", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "note", at(0)))
		require.False(t, w.Accept("app", amount, "note", at(5000)))
		assert.True(t, w.Accept("app", amount, "note", at(8000)))
	})

	t.Run("different source is accepted", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "note", at(0)))
		assert.True(t, w.Accept("other", amount, "note", at(10)))
	})

	t.Run("different amount is accepted", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "note", at(0)))
		assert.True(t, w.Accept("app", decimal.RequireFromString("88.01"), "note", at(10)))
	})

	t.Run("different note is accepted", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "note", at(0)))
		assert.True(t, w.Accept("app", amount, "other note", at(10)))
	})

	t.Run("third distinct detection resets the window", func(t *testing.T) {
		w := NewWindow(DefaultWindow)
		require.True(t, w.Accept("app", amount, "A", at(0)))
		require.True(t, w.Accept("app", amount, "B", at(1000)))
		assert.True(t, w.Accept("app", amount, "A", at(2000)), "only the latest key is remembered")
		assert.False(t, w.Accept("app", amount, "A", at(3000)))
	})
}

func TestWindow_CustomDuration(t *testing.T) {
	w := NewWindow(2 * time.Second)
	assert.Equal(t, 2*time.Second, w.Duration())

	require.True(t, w.Accept("app", amount, "note", at(0)))
	assert.False(t, w.Accept("app", amount, "note", at(1999)))
	assert.True(t, w.Accept("app", amount, "note", at(2000)))

	assert.Equal(t, DefaultWindow, NewWindow(0).Duration())
	assert.Equal(t, DefaultWindow, NewWindow(-time.Second).Duration())
}

func TestWindow_LastAndReset(t *testing.T) {
	w := NewWindow(DefaultWindow)

	_, ok := w.Last()
	assert.False(t, ok)

	require.True(t, w.Accept("app", amount, "note", at(100)))
	entry, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, "app|88.00|note", entry.Key)
	assert.True(t, at(100).Equal(entry.AcceptedAt))

	require.False(t, w.Accept("app", amount, "note", at(200)))
	entry, _ = w.Last()
	assert.True(t, at(100).Equal(entry.AcceptedAt), "rejection leaves state unchanged")

	w.Reset()
	_, ok = w.Last()
	assert.False(t, ok)
	assert.True(t, w.Accept("app", amount, "note", at(300)))
}

func TestWindow_ConcurrentIdenticalDetections(t *testing.T) {
	w := NewWindow(DefaultWindow)

	const goroutines = 64
	var accepted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if w.Accept("app", amount, "note", at(0)) {
				accepted.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}
