package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/apify"
	"github.com/octobees/leadgenius/api/internal/enrichment"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
	"github.com/octobees/leadgenius/api/internal/service"
	"github.com/octobees/leadgenius/api/internal/templates"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// logged and reported with the generic message.
func respondError(c echo.Context, err error, message string) error {
	var validationErr service.ValidationError
	var csvErr service.CSVValidationError
	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &csvErr):
		return Error(c, http.StatusBadRequest, csvErr.Error())
	case errors.Is(err, entity.ErrUnknownInsightKind),
		errors.Is(err, enrichment.ErrContactNotInCompany):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, enrichment.ErrSchedulerUnavailable):
		return Error(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrScraperNotConfigured),
		errors.Is(err, apify.ErrMissingToken):
		return Error(c, http.StatusBadRequest, "configure an Apify API key in settings first")
	case errors.Is(err, apify.ErrMissingActor):
		return Error(c, http.StatusBadRequest, "configure an Apify actor in settings first")
	case errors.Is(err, apify.ErrRunTimeout):
		return Error(c, http.StatusGatewayTimeout, "the lead search is still running on Apify, try again shortly")
	case errors.Is(err, apify.ErrRunFailed):
		return Error(c, http.StatusBadGateway, "the lead search failed on Apify")
	case errors.Is(err, service.ErrCompanyRequired):
		return Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrDuplicateCompany):
		return Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrCompanyNotFound),
		errors.Is(err, repository.ErrContactNotFound),
		errors.Is(err, repository.ErrListNotFound),
		errors.Is(err, repository.ErrSearchNotFound),
		errors.Is(err, templates.ErrTemplateNotFound):
		return Error(c, http.StatusNotFound, err.Error())
	}

	slog.Error(message,
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return Error(c, http.StatusInternalServerError, message)
}
