package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/octobees/leadgenius/api/internal/enrichment"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

// ContactEnricher runs the enrichment steps of a queued contact.
type ContactEnricher interface {
	EnrichContact(ctx context.Context, contactID uuid.UUID) (enrichment.Result, error)
	FindEmail(ctx context.Context, contactID uuid.UUID) (enrichment.Result, error)
}

// ContactEnrichHandler processes contact:enrich tasks.
type ContactEnrichHandler struct {
	enricher ContactEnricher
	logger   *slog.Logger
}

// NewContactEnrichHandler wires the handler.
func NewContactEnrichHandler(enricher ContactEnricher, logger *slog.Logger) *ContactEnrichHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactEnrichHandler{enricher: enricher, logger: logger}
}

// ProcessTask implements asynq.Handler. The LinkedIn profile is merged first;
// the email finder runs only when the contact still has no address.
func (h *ContactEnrichHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ContactEnrichPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("contact_id", payload.ContactID.String()),
	)
	log.Info("contact enrichment started")

	res, err := h.enricher.EnrichContact(ctx, payload.ContactID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) || errors.Is(err, repository.ErrCompanyNotFound) {
			log.Warn("contact not found, skipping task")
			return nil
		}
		log.Error("enrich contact failed", slog.Any("error", err))
		return err
	}
	if res.Fallback {
		log.Warn("linkedin enrichment fell back", slog.String("notice", res.Notice))
	}

	if contact, ok := res.Data.(*entity.Contact); ok && contact.Email != nil {
		log.Info("contact enrichment finished", slog.Bool("email_known", true))
		return nil
	}

	emailRes, err := h.enricher.FindEmail(ctx, payload.ContactID)
	if err != nil {
		log.Error("find email failed", slog.Any("error", err))
		return err
	}
	log.Info("contact enrichment finished",
		slog.Bool("email_found", emailRes.Content != ""),
		slog.String("source", string(emailRes.Source)))
	return nil
}
