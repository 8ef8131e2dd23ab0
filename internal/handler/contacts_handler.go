package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/service"
)

// ContactsHandler exposes contact CRUD endpoints.
type ContactsHandler struct {
	service *service.ContactsService
}

// NewContactsHandler creates a new handler instance.
func NewContactsHandler(service *service.ContactsService) *ContactsHandler {
	return &ContactsHandler{service: service}
}

// List handles GET /contacts.
func (h *ContactsHandler) List(c echo.Context) error {
	filter := dto.ContactFilter{
		Q:          strings.TrimSpace(c.QueryParam("q")),
		Pagination: dto.Pagination{
			Page:    parseIntDefault(c.QueryParam("page"), 1),
			PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
		}.Normalized(),
	}
	if raw := strings.TrimSpace(c.QueryParam("company_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid company_id")
		}
		filter.CompanyID = &id
	}

	contacts, err := h.service.ListContacts(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "failed to list contacts")
	}
	return SuccessPage(c, http.StatusOK, "contacts retrieved", contacts,
		NewPageMeta(filter.Page, filter.PerPage, len(contacts)))
}

// Create handles POST /contacts. The contact must resolve to an existing company.
func (h *ContactsHandler) Create(c echo.Context) error {
	var req dto.ContactRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	contact, err := h.service.CreateContact(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "failed to create contact")
	}
	return Success(c, http.StatusCreated, "contact created", contact)
}

// Get handles GET /contacts/:id.
func (h *ContactsHandler) Get(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid contact id")
	}

	contact, err := h.service.GetContact(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load contact")
	}
	return Success(c, http.StatusOK, "contact retrieved", contact)
}

// Update handles PATCH /contacts/:id.
func (h *ContactsHandler) Update(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid contact id")
	}
	var req dto.ContactRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	contact, err := h.service.UpdateContact(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err, "failed to update contact")
	}
	return Success(c, http.StatusOK, "contact updated", contact)
}

// Delete handles DELETE /contacts/:id.
func (h *ContactsHandler) Delete(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid contact id")
	}

	if err := h.service.DeleteContact(c.Request().Context(), id); err != nil {
		return respondError(c, err, "failed to delete contact")
	}
	return Success(c, http.StatusOK, "contact deleted", nil)
}
