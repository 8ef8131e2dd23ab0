package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/service"
)

// SettingsHandler reads and updates the application settings row.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler wires the handler.
func NewSettingsHandler(service *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get handles GET /settings. API keys are masked.
func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.service.Get(c.Request().Context())
	if err != nil {
		return respondError(c, err, "failed to load settings")
	}
	return Success(c, http.StatusOK, "settings retrieved", settings.Masked())
}

// Update handles PUT /settings.
func (h *SettingsHandler) Update(c echo.Context) error {
	var req dto.UpdateSettingsRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	settings, err := h.service.Update(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "failed to update settings")
	}
	return Success(c, http.StatusOK, "settings updated", settings.Masked())
}
