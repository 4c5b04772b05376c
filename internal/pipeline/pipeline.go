package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/forecast-summary-service/internal/domain"
	"github.com/couchcryptid/forecast-summary-service/internal/observability"
)

// BatchExtractor reads up to batchSize sample events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.SampleEvent, error)
}

// Drainer hands back events still buffered at shutdown.
type Drainer interface {
	Drain() []domain.SampleEvent
}

// Transformer converts a sample event into an output event.
type Transformer interface {
	Transform(ctx context.Context, ev domain.SampleEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline moves sample events from the extractor to the loader in batches.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	running     atomic.Bool
	batchSize   int

	// pending holds transformed events whose load failed. Only the Run
	// goroutine touches it until Run returns, after which Flush may.
	pending []domain.OutputEvent
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil while the publish loop is running.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("event publisher is not running")
	}
	return nil
}

// Run executes the batch transform-load loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.batchSize)
	p.running.Store(true)
	p.metrics.PublisherRunning.Set(1)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	if len(p.pending) == 0 {
		batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			p.logger.Error("extract batch failed", "error", err)
			return p.backoffOrStop(ctx, backoff)
		}
		if len(batch) == 0 {
			return ctx.Err() == nil
		}
		p.metrics.BatchSize.Observe(float64(len(batch)))
		p.pending = p.transformAll(ctx, batch)
	}

	if len(p.pending) == 0 {
		return ctx.Err() == nil
	}

	if err := p.loader.LoadBatch(ctx, p.pending); err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(p.pending))
		return p.backoffOrStop(ctx, backoff)
	}

	p.metrics.EventsPublished.Add(float64(len(p.pending)))
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.pending = nil
	*backoff = initialBackoff
	return true
}

// transformAll serializes each event, skipping and counting failures.
func (p *Pipeline) transformAll(ctx context.Context, batch []domain.SampleEvent) []domain.OutputEvent {
	out := make([]domain.OutputEvent, 0, len(batch))
	for _, ev := range batch {
		o, err := p.transformer.Transform(ctx, ev)
		if err != nil {
			p.logger.Warn("transform failed, skipping event", "error", err, "event_id", ev.ID)
			p.metrics.TransformErrors.Inc()
			continue
		}
		out = append(out, o)
	}
	return out
}

// Flush loads events left over after Run returns: the failed batch, if any,
// followed by whatever the extractor still buffers. Call it only after Run
// has exited.
func (p *Pipeline) Flush(ctx context.Context) error {
	out := p.pending
	if d, ok := p.extractor.(Drainer); ok {
		out = append(out, p.transformAll(ctx, d.Drain())...)
	}
	if len(out) == 0 {
		return nil
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.metrics.PublishErrors.Inc()
		p.pending = out
		return fmt.Errorf("flush %d events: %w", len(out), err)
	}
	p.metrics.EventsPublished.Add(float64(len(out)))
	p.pending = nil
	p.logger.Info("publisher flushed", "events", len(out))
	return nil
}

// backoffOrStop sleeps with the current backoff and advances it.
// Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
