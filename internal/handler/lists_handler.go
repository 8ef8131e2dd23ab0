package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/service"
)

// ListsHandler manages named company lists.
type ListsHandler struct {
	service *service.ListsService
}

// NewListsHandler wires the handler.
func NewListsHandler(service *service.ListsService) *ListsHandler {
	return &ListsHandler{service: service}
}

// List handles GET /lists.
func (h *ListsHandler) List(c echo.Context) error {
	lists, err := h.service.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "failed to list lists")
	}
	return Success(c, http.StatusOK, "lists retrieved", lists)
}

// Create handles POST /lists.
func (h *ListsHandler) Create(c echo.Context) error {
	var req dto.CreateListRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	list, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "failed to create list")
	}
	return Success(c, http.StatusCreated, "list created", list)
}

// Get handles GET /lists/:id and includes the member companies.
func (h *ListsHandler) Get(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid list id")
	}
	list, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load list")
	}
	return Success(c, http.StatusOK, "list retrieved", list)
}

// Delete handles DELETE /lists/:id.
func (h *ListsHandler) Delete(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid list id")
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "failed to delete list")
	}
	return Success(c, http.StatusOK, "list deleted", nil)
}

// AddCompany handles POST /lists/:id/companies/:company_id.
func (h *ListsHandler) AddCompany(c echo.Context) error {
	listID, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid list id")
	}
	companyID, ok := pathUUID(c, "company_id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}
	if err := h.service.AddCompany(c.Request().Context(), listID, companyID); err != nil {
		return respondError(c, err, "failed to add company to list")
	}
	return Success(c, http.StatusOK, "company added to list", nil)
}

// RemoveCompany handles DELETE /lists/:id/companies/:company_id.
func (h *ListsHandler) RemoveCompany(c echo.Context) error {
	listID, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid list id")
	}
	companyID, ok := pathUUID(c, "company_id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}
	if err := h.service.RemoveCompany(c.Request().Context(), listID, companyID); err != nil {
		return respondError(c, err, "failed to remove company from list")
	}
	return Success(c, http.StatusOK, "company removed from list", nil)
}
