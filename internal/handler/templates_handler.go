package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/service"
	"github.com/octobees/leadgenius/api/internal/templates"
)

// TemplatesHandler serves the email template catalogue.
type TemplatesHandler struct {
	library   *templates.Library
	companies *service.CompaniesService
	contacts  *service.ContactsService
}

// NewTemplatesHandler wires the handler.
func NewTemplatesHandler(library *templates.Library, companies *service.CompaniesService, contacts *service.ContactsService) *TemplatesHandler {
	return &TemplatesHandler{library: library, companies: companies, contacts: contacts}
}

// List handles GET /templates. An optional category narrows the list.
func (h *TemplatesHandler) List(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	list := h.library.List()
	if category != "" {
		filtered := list[:0]
		for _, tpl := range list {
			if strings.EqualFold(tpl.Category, category) {
				filtered = append(filtered, tpl)
			}
		}
		list = filtered
	}
	return Success(c, http.StatusOK, "templates retrieved", list)
}

// Render handles POST /templates/:id/render. Placeholders without a value are kept.
func (h *TemplatesHandler) Render(c echo.Context) error {
	tpl, err := h.library.Get(c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to load template")
	}

	var req dto.RenderTemplateRequest
	if c.Request().ContentLength != 0 {
		if ok, err := bind(c, &req); !ok {
			return err
		}
	}

	ctx := c.Request().Context()
	var (
		company *entity.Company
		contact *entity.Contact
	)
	if id, ok := optionalUUID(req.ContactID); ok {
		if contact, err = h.contacts.GetContact(ctx, id); err != nil {
			return respondError(c, err, "failed to load contact")
		}
	}
	companyID, ok := optionalUUID(req.CompanyID)
	if !ok && contact != nil {
		companyID, ok = contact.CompanyID, true
	}
	if ok {
		if company, err = h.companies.GetCompany(ctx, companyID); err != nil {
			return respondError(c, err, "failed to load company")
		}
	}

	vars := templates.VariablesFor(company, contact, strings.TrimSpace(req.SenderName))
	for k, v := range req.Variables {
		vars[k] = v
	}
	return Success(c, http.StatusOK, "template rendered", tpl.Render(vars))
}

func optionalUUID(raw *string) (uuid.UUID, bool) {
	if raw == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
