package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/service"
)

// LeadsHandler runs lead searches and imports selected results.
type LeadsHandler struct {
	search  *service.SearchService
	imports *service.LeadImportService
}

// NewLeadsHandler wires the handler.
func NewLeadsHandler(search *service.SearchService, imports *service.LeadImportService) *LeadsHandler {
	return &LeadsHandler{search: search, imports: imports}
}

// Search handles POST /leads/search.
func (h *LeadsHandler) Search(c echo.Context) error {
	var req dto.LeadSearchRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.search.Search(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "lead search failed")
	}
	return Success(c, http.StatusOK, "lead search completed", resp)
}

// Transform handles POST /leads/transform. Nothing is persisted.
func (h *LeadsHandler) Transform(c echo.Context) error {
	var req dto.TransformRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	results, err := h.search.Transform(req.Records)
	if err != nil {
		return respondError(c, err, "failed to transform records")
	}
	return Success(c, http.StatusOK, "records transformed", results)
}

// Import handles POST /leads/import.
func (h *LeadsHandler) Import(c echo.Context) error {
	var req dto.ImportLeadsRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.imports.Import(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "failed to import leads")
	}
	return Success(c, http.StatusOK, "leads imported", resp)
}

// History handles GET /leads/history.
func (h *LeadsHandler) History(c echo.Context) error {
	limit := parseIntDefault(c.QueryParam("limit"), 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	history, err := h.search.History(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err, "failed to load search history")
	}
	return Success(c, http.StatusOK, "search history retrieved", history)
}

// Results handles GET /leads/history/:id/results by reloading the archived dataset.
func (h *LeadsHandler) Results(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid search id")
	}

	results, err := h.search.Results(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load search results")
	}
	return Success(c, http.StatusOK, "search results retrieved", results)
}
