package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/leadgenius/api/internal/middleware"
	"github.com/octobees/leadgenius/api/internal/tasks"
)

// EnrichmentScheduler queues a delayed background enrichment.
type EnrichmentScheduler interface {
	ScheduleContactEnrichment(ctx context.Context, contactID uuid.UUID) error
}

// EnrichJobHandler queues contact enrichment on the background worker.
type EnrichJobHandler struct {
	scheduler EnrichmentScheduler
}

// NewEnrichJobHandler constructs the handler.
func NewEnrichJobHandler(scheduler EnrichmentScheduler) *EnrichJobHandler {
	return &EnrichJobHandler{scheduler: scheduler}
}

// Enqueue handles POST /contacts/:id/enrich/schedule.
func (h *EnrichJobHandler) Enqueue(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid contact id")
	}

	rid := middlewarepkg.RequestIDFromContext(c)
	ctx := tasks.WithCorrelationID(c.Request().Context(), rid)
	if err := h.scheduler.ScheduleContactEnrichment(ctx, id); err != nil {
		return respondError(c, err, "failed to queue enrichment")
	}

	slog.Info("contact enrichment queued",
		slog.String("contact_id", id.String()),
		slog.String("request_id", rid),
	)
	return Success(c, http.StatusAccepted, "enrichment job queued", map[string]any{
		"contact_id": id.String(),
		"status":     "queued",
	})
}
