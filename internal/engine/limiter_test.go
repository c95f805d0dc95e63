package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(0.001, 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "sources are limited independently")
}

func TestLimiter_DefaultBurst(t *testing.T) {
	l := NewLimiter(0.001, 0)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.False(t, l.Allow("a"))
}

func TestLimiter_SetSourceRate(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.SetSourceRate("busy", 0.001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("busy"))
	}
	assert.False(t, l.Allow("busy"))

	assert.True(t, l.Allow("quiet"))
	assert.False(t, l.Allow("quiet"))
}

func TestLimiter_ConcurrentSources(t *testing.T) {
	l := NewLimiter(0.001, 1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("same") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, allowed)
}
