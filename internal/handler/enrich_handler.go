package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/enrichment"
	"github.com/octobees/leadgenius/api/internal/entity"
)

// Enricher is the enrichment surface used by EnrichHandler.
type Enricher interface {
	FindEmail(ctx context.Context, contactID uuid.UUID) (enrichment.Result, error)
	EnrichContact(ctx context.Context, contactID uuid.UUID) (enrichment.Result, error)
	ResearchProfile(ctx context.Context, contactID uuid.UUID) (enrichment.Result, error)
	EnrichCompany(ctx context.Context, companyID uuid.UUID) (enrichment.Result, error)
	ResearchCompany(ctx context.Context, companyID uuid.UUID) (enrichment.Result, error)
	AnalyzeIdealClient(ctx context.Context, companyID uuid.UUID) (enrichment.Result, error)
	GenerateOutreach(ctx context.Context, companyID uuid.UUID, contactID *uuid.UUID) (enrichment.Result, error)
	GenerateInsight(ctx context.Context, companyID uuid.UUID, kind entity.InsightKind) (enrichment.Result, error)
}

// EnrichHandler runs webhook enrichment for contacts and companies. Webhook
// failures come back as successful responses carrying fallback content.
type EnrichHandler struct {
	enricher Enricher
}

// NewEnrichHandler wires a new EnrichHandler instance.
func NewEnrichHandler(enricher Enricher) *EnrichHandler {
	return &EnrichHandler{enricher: enricher}
}

type enrichFunc func(ctx context.Context, id uuid.UUID) (enrichment.Result, error)

func (h *EnrichHandler) run(c echo.Context, subject string, fn enrichFunc, message string) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid "+subject+" id")
	}
	result, err := fn(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to "+message)
	}
	return Success(c, http.StatusOK, resultMessage(result, message), result)
}

func resultMessage(result enrichment.Result, message string) string {
	if result.Fallback && result.Notice != "" {
		return result.Notice
	}
	return message + " completed"
}

// FindEmail handles POST /contacts/:id/find-email.
func (h *EnrichHandler) FindEmail(c echo.Context) error {
	return h.run(c, "contact", h.enricher.FindEmail, "find email")
}

// EnrichContact handles POST /contacts/:id/enrich.
func (h *EnrichHandler) EnrichContact(c echo.Context) error {
	return h.run(c, "contact", h.enricher.EnrichContact, "enrich contact")
}

// ResearchProfile handles POST /contacts/:id/research.
func (h *EnrichHandler) ResearchProfile(c echo.Context) error {
	return h.run(c, "contact", h.enricher.ResearchProfile, "research profile")
}

// EnrichCompany handles POST /companies/:id/enrich.
func (h *EnrichHandler) EnrichCompany(c echo.Context) error {
	return h.run(c, "company", h.enricher.EnrichCompany, "enrich company")
}

// ResearchCompany handles POST /companies/:id/research.
func (h *EnrichHandler) ResearchCompany(c echo.Context) error {
	return h.run(c, "company", h.enricher.ResearchCompany, "research company")
}

// IdealClient handles POST /companies/:id/ideal-client.
func (h *EnrichHandler) IdealClient(c echo.Context) error {
	return h.run(c, "company", h.enricher.AnalyzeIdealClient, "analyze ideal client")
}

// Insight handles POST /companies/:id/insights/:kind.
func (h *EnrichHandler) Insight(c echo.Context) error {
	kind, err := entity.ParseInsightKind(strings.TrimSpace(c.Param("kind")))
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	return h.run(c, "company", func(ctx context.Context, id uuid.UUID) (enrichment.Result, error) {
		return h.enricher.GenerateInsight(ctx, id, kind)
	}, "generate "+string(kind))
}

// Outreach handles POST /companies/:id/outreach. The body may name a contact
// of the company to address the scripts to.
func (h *EnrichHandler) Outreach(c echo.Context) error {
	var req dto.OutreachRequest
	if c.Request().ContentLength != 0 {
		if ok, err := bind(c, &req); !ok {
			return err
		}
	}
	var contactID *uuid.UUID
	if req.ContactID != nil && strings.TrimSpace(*req.ContactID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.ContactID))
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid contact_id")
		}
		contactID = &parsed
	}
	return h.run(c, "company", func(ctx context.Context, id uuid.UUID) (enrichment.Result, error) {
		return h.enricher.GenerateOutreach(ctx, id, contactID)
	}, "generate outreach")
}
