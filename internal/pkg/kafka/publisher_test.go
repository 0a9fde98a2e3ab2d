package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sitework/workforce-backend-go/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafkago.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestPublisher_Publish_KeysByAggregate(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisher(w)
	event := outbox.Event{
		ID:            "evt-1",
		AggregateType: "payroll_record",
		AggregateID:   "rec-1",
		EventType:     outbox.EventPayrollRecorded,
		Topic:         "payroll-events",
		Payload:       []byte(`{"record_id":"rec-1"}`),
	}

	// Act
	err := p.Publish(context.Background(), event)

	// Assert
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "payroll-events", msg.Topic)
	assert.Equal(t, "rec-1", string(msg.Key))
	assert.JSONEq(t, `{"record_id":"rec-1"}`, string(msg.Value))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, outbox.EventPayrollRecorded, headers["event_type"])
	assert.Equal(t, "evt-1", headers["event_id"])
}

func TestPublisher_Publish_ReturnsWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}

	err := NewPublisher(w).Publish(context.Background(), outbox.Event{ID: "evt-1"})

	assert.EqualError(t, err, "broker down")
}
