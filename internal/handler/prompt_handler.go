package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/service"
)

// PromptSearchHandler previews how a free-form prompt is interpreted.
type PromptSearchHandler struct {
	service *service.SearchService
}

// NewPromptSearchHandler wires the handler.
func NewPromptSearchHandler(svc *service.SearchService) *PromptSearchHandler {
	return &PromptSearchHandler{service: svc}
}

// Parse handles POST /leads/parse-prompt without running the scraper.
func (h *PromptSearchHandler) Parse(c echo.Context) error {
	var req dto.PromptSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return Error(c, http.StatusBadRequest, "prompt is required")
	}

	result, err := h.service.ParsePrompt(req)
	if err != nil {
		return respondError(c, err, "failed to parse prompt")
	}

	resp := dto.PromptSearchResponse{
		Prompt:   req.Prompt,
		Keywords: result.Keywords,
		Location: result.Location,
		Limit:    result.Limit,
	}
	return Success(c, http.StatusOK, "prompt parsed", resp)
}
