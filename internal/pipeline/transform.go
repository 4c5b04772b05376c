package pipeline

import (
	"context"

	"github.com/couchcryptid/forecast-summary-service/internal/domain"
)

// SampleTransformer implements Transformer by serializing sample events to JSON.
type SampleTransformer struct{}

// NewTransformer creates a SampleTransformer.
func NewTransformer() *SampleTransformer {
	return &SampleTransformer{}
}

func (t *SampleTransformer) Transform(_ context.Context, ev domain.SampleEvent) (domain.OutputEvent, error) {
	return domain.SerializeSampleEvent(ev)
}
