package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/service"
)

// CompaniesHandler exposes company CRUD endpoints.
type CompaniesHandler struct {
	service *service.CompaniesService
}

// NewCompaniesHandler creates a new handler instance.
func NewCompaniesHandler(service *service.CompaniesService) *CompaniesHandler {
	return &CompaniesHandler{service: service}
}

// List handles GET /companies requests.
func (h *CompaniesHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:          strings.TrimSpace(c.QueryParam("q")),
		Industry:   strings.TrimSpace(c.QueryParam("industry")),
		City:       strings.TrimSpace(c.QueryParam("city")),
		Sort:       strings.TrimSpace(c.QueryParam("sort")),
		Pagination: dto.Pagination{
			Page:    parseIntDefault(c.QueryParam("page"), 1),
			PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
		}.Normalized(),
	}

	if idealStr := strings.TrimSpace(c.QueryParam("ideal")); idealStr != "" {
		ideal, err := strconv.ParseBool(idealStr)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid ideal (use true or false)")
		}
		filter.Ideal = &ideal
	}

	companies, err := h.service.ListCompanies(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "failed to list companies")
	}

	return SuccessPage(c, http.StatusOK, "companies retrieved", companies,
		NewPageMeta(filter.Page, filter.PerPage, len(companies)))
}

// Create handles POST /companies.
func (h *CompaniesHandler) Create(c echo.Context) error {
	var req dto.CompanyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	company, err := h.service.CreateCompany(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "failed to create company")
	}
	return Success(c, http.StatusCreated, "company created", company)
}

// Get handles GET /companies/:id.
func (h *CompaniesHandler) Get(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}

	company, err := h.service.GetCompany(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load company")
	}
	return Success(c, http.StatusOK, "company retrieved", company)
}

// Update handles PATCH /companies/:id.
func (h *CompaniesHandler) Update(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}
	var req dto.CompanyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	company, err := h.service.UpdateCompany(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err, "failed to update company")
	}
	return Success(c, http.StatusOK, "company updated", company)
}

// Delete handles DELETE /companies/:id. Contacts of the company are removed with it.
func (h *CompaniesHandler) Delete(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}

	if err := h.service.DeleteCompany(c.Request().Context(), id); err != nil {
		return respondError(c, err, "failed to delete company")
	}
	return Success(c, http.StatusOK, "company deleted", nil)
}

// Contacts handles GET /companies/:id/contacts.
func (h *CompaniesHandler) Contacts(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}

	contacts, err := h.service.CompanyContacts(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to list contacts")
	}
	return Success(c, http.StatusOK, "contacts retrieved", contacts)
}

// Insights handles GET /companies/:id/insights.
func (h *CompaniesHandler) Insights(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}

	insights, err := h.service.Insights(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to list insights")
	}
	return Success(c, http.StatusOK, "insights retrieved", insights)
}
