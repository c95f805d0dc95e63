// Package engine runs raw notifications through the capture pipeline:
// allow-list, throttle, normalization, classification, deduplication,
// emission and presentation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/paycapture/internal/classification"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/config"
	"github.com/Veraticus/paycapture/internal/dedup"
	"github.com/Veraticus/paycapture/internal/emitter"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/notification"
	"github.com/Veraticus/paycapture/internal/service"
)

// Engine orchestrates the capture of payment notifications. It is safe for
// concurrent use; notifications may be delivered from any goroutine.
type Engine struct {
	classifier Classifier
	presenter  service.Presenter
	window     *dedup.Window
	emitter    *emitter.Emitter
	limiter    *Limiter
	labels     map[string]string
	now        func() time.Time
	rejected   map[model.RejectReason]*atomic.Int64
	received   atomic.Int64
	accepted   atomic.Int64
	presented  atomic.Int64
}

// Config holds configuration options for the capture engine.
type Config struct {
	// Sources maps allow-listed source ids to display labels.
	Sources map[string]string
	Window  time.Duration
	// ThrottlePerSecond enables per-source throttling when positive.
	ThrottlePerSecond float64
	ThrottleBurst     int
}

// New creates a capture engine with the given dependencies.
func New(cfg Config, classifier Classifier, em *emitter.Emitter, presenter service.Presenter) *Engine {
	labels := make(map[string]string, len(cfg.Sources))
	for id, label := range cfg.Sources {
		labels[id] = label
	}

	rejected := make(map[model.RejectReason]*atomic.Int64)
	for _, reason := range model.AllRejectReasons() {
		rejected[reason] = &atomic.Int64{}
	}

	e := &Engine{
		classifier: classifier,
		presenter:  presenter,
		window:     dedup.NewWindow(cfg.Window),
		emitter:    em,
		labels:     labels,
		now:        time.Now,
		rejected:   rejected,
	}
	if cfg.ThrottlePerSecond > 0 {
		e.limiter = NewLimiter(cfg.ThrottlePerSecond, cfg.ThrottleBurst)
	}
	return e
}

// FromConfig builds an engine with the default classifier and emitter for the
// application configuration.
func FromConfig(cfg *config.Config, presenter service.Presenter) (*Engine, error) {
	classifier, err := classification.NewPaymentClassifier(classification.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	return New(Config{
		Sources:           cfg.Labels(),
		Window:            cfg.Dedup.Window,
		ThrottlePerSecond: cfg.Throttle.PerSecond,
		ThrottleBurst:     cfg.Throttle.Burst,
	}, classifier, emitter.FromConfig(cfg.Presentation), presenter), nil
}

// WithClock replaces the time source. It must be called before the engine is shared.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Window exposes the deduplication window.
func (e *Engine) Window() *dedup.Window {
	return e.window
}

// Handle runs one notification through the pipeline. Rejections are returned
// as the sentinel errors in package common and never reach the presenter.
// When the presenter fails, the emitted event is returned together with the
// error. The notification's PostedAt, when set, is the capture time used for
// deduplication and the emitted event; otherwise the engine clock is read.
func (e *Engine) Handle(ctx context.Context, n model.RawNotification) (*model.CaptureEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.received.Add(1)
	event, err := e.capture(ctx, n)
	e.record(n.SourceID, err)
	return event, err
}

func (e *Engine) capture(ctx context.Context, n model.RawNotification) (*model.CaptureEvent, error) {
	label, ok := e.labels[n.SourceID]
	if !ok {
		return nil, common.ErrNotApplicable
	}

	if e.limiter != nil && !e.limiter.Allow(n.SourceID) {
		return nil, common.ErrThrottled
	}

	content := notification.Content(n)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", common.ErrNotApplicable)
	}

	c, err := e.classifier.Classify(n.SourceID, content)
	if err != nil {
		return nil, err
	}

	now := n.PostedAt
	if now.IsZero() {
		now = e.now()
	}
	note := emitter.ResolveNote(label, c.Note)
	if !e.window.Accept(n.SourceID, c.Amount, note, now) {
		return nil, common.ErrDuplicateSuppressed
	}

	event := e.emitter.Emit(n.SourceID, label, *c, now)
	e.accepted.Add(1)

	slog.Info("Payment captured",
		"source", n.SourceID,
		"amount", event.Amount.StringFixed(2),
		"matcher", c.Matcher,
		"request_code", event.RequestCode)

	if e.presenter == nil {
		return &event, nil
	}

	if err := e.presenter.Present(ctx, event.Prefill()); err != nil {
		return &event, fmt.Errorf("failed to present capture: %w", err)
	}
	e.presented.Add(1)

	return &event, nil
}

func (e *Engine) record(sourceID string, err error) {
	if err == nil {
		return
	}

	reason := common.ReasonOf(err)
	if counter, ok := e.rejected[reason]; ok {
		counter.Add(1)
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Debug("Capture interrupted", "source", sourceID, "error", err)
	case reason == model.ReasonPresentationFailed:
		slog.Warn("Failed to present capture", "source", sourceID, "error", err)
	default:
		slog.Debug("Notification rejected", "source", sourceID, "reason", reason, "error", err)
	}
}

// Stats returns a snapshot of the outcome counters.
func (e *Engine) Stats() service.CaptureStats {
	stats := service.CaptureStats{
		Received:  e.received.Load(),
		Accepted:  e.accepted.Load(),
		Presented: e.presented.Load(),
		Rejected:  make(map[model.RejectReason]int64, len(e.rejected)),
	}
	for reason, counter := range e.rejected {
		if n := counter.Load(); n > 0 {
			stats.Rejected[reason] = n
		}
	}
	return stats
}

// Result is the outcome of one notification in a batch.
type Result struct {
	Event *model.CaptureEvent
	Err   error
}

// Replay delivers a recorded sequence one notification at a time, in order,
// so the dedup window sees them exactly as they were recorded. onResult, if
// not nil, is called after each delivery. The returned error is non-nil only
// when ctx is cancelled before the sequence was delivered.
func (e *Engine) Replay(ctx context.Context, notifications []model.RawNotification, onResult func(Result)) ([]Result, error) {
	results := make([]Result, 0, len(notifications))
	for _, n := range notifications {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("replay interrupted: %w", err)
		}
		event, err := e.Handle(ctx, n)
		r := Result{Event: event, Err: err}
		results = append(results, r)
		if onResult != nil {
			onResult(r)
		}
	}
	return results, nil
}

// HandleAll delivers notifications concurrently, at most concurrency at a
// time, the way a host delivers callbacks from several threads. Delivery
// order into the dedup window is unspecified; use Replay for recordings.
// Results are in input order. The returned error is non-nil only when ctx is
// cancelled before every notification was delivered.
func (e *Engine) HandleAll(ctx context.Context, notifications []model.RawNotification, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(notifications))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, n := range notifications {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Err: err}
				return err
			}
			event, err := e.Handle(gctx, n)
			results[i] = Result{Event: event, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}
