package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types shared by the API (producer) and the worker (consumer).
const (
	TypeContactEnrich = "contact:enrich"
)

// ContactEnrichPayload identifies the contact to enrich.
type ContactEnrichPayload struct {
	ContactID     uuid.UUID `json:"contact_id"`
	CorrelationID string    `json:"correlation_id"`
}

// NewContactEnrichTask builds a contact enrichment task.
func NewContactEnrichTask(contactID uuid.UUID, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ContactEnrichPayload{
		ContactID:     contactID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeContactEnrich, payload), nil
}

type correlationKey struct{}

// WithCorrelationID tags ctx so tasks enqueued under it carry id, letting the
// worker's logs be joined with the request that queued the work.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return uuid.NewString()
}
