// Package forecast serves random orderings of the weather summary catalog.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/forecast-summary-service/internal/domain"
	"github.com/couchcryptid/forecast-summary-service/internal/observability"
	"github.com/couchcryptid/forecast-summary-service/internal/sampler"
)

// Publisher accepts sample events for asynchronous delivery. Publish must not block.
type Publisher interface {
	Publish(ev domain.SampleEvent) bool
}

// ReadinessChecker reports whether a dependency is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Options configures a Service. Zero values select the shuffle strategy, the
// shared random source and no event publishing.
type Options struct {
	Strategy  sampler.Strategy
	Source    sampler.Source
	Publisher Publisher
	// Dependencies are consulted by CheckReadiness after the catalog check.
	Dependencies []ReadinessChecker
	Metrics      *observability.Metrics
	Logger       *slog.Logger
}

// Service draws samples from a fixed catalog.
type Service struct {
	catalog   domain.Catalog
	items     []string
	strategy  sampler.Strategy
	source    sampler.Source
	publisher Publisher
	deps      []ReadinessChecker
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Service over catalog.
func New(catalog domain.Catalog, opts Options) *Service {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = sampler.StrategyShuffle
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewUnregisteredMetrics()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:   catalog,
		items:     catalog.Items(),
		strategy:  strategy,
		source:    opts.Source,
		publisher: opts.Publisher,
		deps:      opts.Dependencies,
		metrics:   metrics,
		logger:    logger,
	}
}

// DefaultCount is the number of summaries returned when the caller does not
// ask for a specific count: the whole catalog.
func (s *Service) DefaultCount() int {
	return s.catalog.Len()
}

// Strategy reports the configured shuffling strategy.
func (s *Service) Strategy() sampler.Strategy {
	return s.strategy
}

// Summaries returns count distinct catalog entries in random order. A count
// outside [0, DefaultCount()] fails with sampler.ErrInvalidArgument.
func (s *Service) Summaries(ctx context.Context, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := sampler.Sample(s.items, count,
		sampler.WithStrategy(s.strategy),
		sampler.WithSource(s.source),
	)
	if err != nil {
		if errors.Is(err, sampler.ErrInvalidArgument) {
			s.metrics.SampleErrors.Inc()
		}
		return nil, fmt.Errorf("sample summaries: %w", err)
	}
	s.metrics.SampleDuration.Observe(time.Since(start).Seconds())
	s.metrics.SamplesServed.WithLabelValues(string(s.strategy)).Inc()
	s.metrics.SampleSize.Observe(float64(len(out)))

	if s.publisher != nil {
		ev := domain.NewSampleEvent(out, s.catalog.Len(), string(s.strategy))
		if !s.publisher.Publish(ev) {
			s.logger.WarnContext(ctx, "sample event dropped, publish queue full", "event_id", ev.ID)
		}
	}
	return out, nil
}

// CheckReadiness returns nil when the catalog is loaded and every dependency is ready.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.catalog.Len() == 0 {
		return errors.New("summary catalog is empty")
	}
	for _, dep := range s.deps {
		if err := dep.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
