package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/forecast-summary-service/internal/config"
	"github.com/couchcryptid/forecast-summary-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessage(t *testing.T) {
	ev := domain.SampleEvent{
		ID:          "evt-1",
		Summaries:   []string{"Sunny", "Stormy"},
		Count:       2,
		CatalogSize: 6,
		Strategy:    "shuffle",
		DrawnAt:     time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC),
	}
	out, err := domain.SerializeSampleEvent(ev)
	require.NoError(t, err)

	msg := toMessage(out)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"summaries":["Sunny","Stormy"]`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "drawn_at", msg.Headers[0].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[0].Value)
	assert.Equal(t, "event_type", msg.Headers[1].Key)
	assert.Equal(t, []byte(domain.EventTypeForecastSample), msg.Headers[1].Value)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})
	assert.Empty(t, msg.Headers)
	assert.Equal(t, []byte("k"), msg.Key)
}

func TestWriter_LoadBatchEmptyIsNoop(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaTopic: "unused"}, slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}
