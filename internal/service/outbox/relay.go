package outbox

import (
	"context"
	"log/slog"

	"github.com/sitework/workforce-backend-go/internal/domain/outbox"
)

const defaultBatchSize = 50

type Publisher interface {
	Publish(ctx context.Context, event outbox.Event) error
}

// Relay moves committed outbox rows to the broker. A row is marked sent only
// after the broker accepted it, so delivery is at-least-once.
type Relay struct {
	outboxRepo outbox.OutboxRepository
	publisher  Publisher
	batchSize  int
}

func NewRelay(outboxRepo outbox.OutboxRepository, publisher Publisher) *Relay {
	return &Relay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		batchSize:  defaultBatchSize,
	}
}

// Job adapts the relay to a scheduled job.
func (r *Relay) Job(ctx context.Context) error {
	_, err := r.ProcessPending(ctx)
	return err
}

// ProcessPending publishes one batch and returns how many events were sent.
// A failed publish marks the row for a delayed retry and moves on.
func (r *Relay) ProcessPending(ctx context.Context) (int, error) {
	events, err := r.outboxRepo.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, event := range events {
		if err := r.publisher.Publish(ctx, event); err != nil {
			slog.Warn("publish outbox event failed",
				"outbox_id", event.ID,
				"event_type", event.EventType,
				"topic", event.Topic,
				"retry_count", event.RetryCount,
				"error", err,
			)
			if markErr := r.outboxRepo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				slog.Error("mark outbox failed", "outbox_id", event.ID, "error", markErr)
			}
			continue
		}

		if err := r.outboxRepo.MarkSent(ctx, event.ID); err != nil {
			slog.Error("mark outbox sent failed", "outbox_id", event.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 {
		slog.Info("outbox events sent", "count", sent)
	}
	return sent, nil
}
