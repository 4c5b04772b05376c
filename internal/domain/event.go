package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventTypeForecastSample is the event_type header value for published samples.
const EventTypeForecastSample = "forecast_sample"

// SampleEvent records one sample served to a client.
type SampleEvent struct {
	ID          string    `json:"id"`
	Summaries   []string  `json:"summaries"`
	Count       int       `json:"count"`
	CatalogSize int       `json:"catalog_size"`
	Strategy    string    `json:"strategy"`
	DrawnAt     time.Time `json:"drawn_at"`
}

// NewSampleEvent builds a SampleEvent with a fresh ID and the current time.
func NewSampleEvent(summaries []string, catalogSize int, strategy string) SampleEvent {
	return SampleEvent{
		ID:          uuid.NewString(),
		Summaries:   summaries,
		Count:       len(summaries),
		CatalogSize: catalogSize,
		Strategy:    strategy,
		DrawnAt:     clock.Now().UTC(),
	}
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeSampleEvent marshals a SampleEvent into an OutputEvent keyed by its ID.
func SerializeSampleEvent(ev SampleEvent) (OutputEvent, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize sample event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(ev.ID),
		Value: data,
		Headers: map[string]string{
			"event_type": EventTypeForecastSample,
			"drawn_at":   ev.DrawnAt.Format(time.RFC3339),
		},
	}, nil
}
