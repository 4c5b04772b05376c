package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/forecast-summary-service/internal/domain"
	"github.com/couchcryptid/forecast-summary-service/internal/observability"
)

// Queue buffers sample events between request handlers and the pipeline.
// It implements BatchExtractor and Drainer.
type Queue struct {
	events        chan domain.SampleEvent
	flushInterval time.Duration
	metrics       *observability.Metrics
}

// NewQueue creates a Queue holding at most size events. ExtractBatch waits up
// to flushInterval after the first event for the batch to fill.
func NewQueue(size int, flushInterval time.Duration, metrics *observability.Metrics) *Queue {
	return &Queue{
		events:        make(chan domain.SampleEvent, size),
		flushInterval: flushInterval,
		metrics:       metrics,
	}
}

// Publish enqueues ev without blocking. It returns false and counts a drop
// when the queue is full.
func (q *Queue) Publish(ev domain.SampleEvent) bool {
	select {
	case q.events <- ev:
		return true
	default:
		q.metrics.EventsDropped.Inc()
		return false
	}
}

// Len reports the number of buffered events.
func (q *Queue) Len() int {
	return len(q.events)
}

// ExtractBatch blocks until at least one event is available, then collects
// more until batchSize is reached or the flush interval elapses. Events
// gathered before ctx is cancelled are returned rather than lost.
func (q *Queue) ExtractBatch(ctx context.Context, batchSize int) ([]domain.SampleEvent, error) {
	var first domain.SampleEvent
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case first = <-q.events:
	}

	batch := make([]domain.SampleEvent, 0, batchSize)
	batch = append(batch, first)

	timer := time.NewTimer(q.flushInterval)
	defer timer.Stop()

	for len(batch) < batchSize {
		select {
		case ev := <-q.events:
			batch = append(batch, ev)
		case <-timer.C:
			return batch, nil
		case <-ctx.Done():
			return batch, nil
		}
	}
	return batch, nil
}

// Drain removes and returns every buffered event without blocking.
func (q *Queue) Drain() []domain.SampleEvent {
	var out []domain.SampleEvent
	for {
		select {
		case ev := <-q.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}
