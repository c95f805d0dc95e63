package engine

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles notifications per source. It never blocks: a source that
// is over its rate has its notification dropped.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a per-source limiter.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(perSecond),
		defaultBurst: burst,
	}
}

// Allow reports whether a notification from sourceID may be processed now.
func (l *Limiter) Allow(sourceID string) bool {
	return l.getLimiter(sourceID).Allow()
}

func (l *Limiter) getLimiter(sourceID string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[sourceID]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[sourceID]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[sourceID] = limiter

	return limiter
}

// SetSourceRate overrides the rate for one source.
func (l *Limiter) SetSourceRate(sourceID string, perSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[sourceID] = rate.NewLimiter(rate.Limit(perSecond), burst)
}
