package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

// EnrichmentScheduler queues background enrichment for a saved contact.
type EnrichmentScheduler interface {
	ScheduleContactEnrichment(ctx context.Context, contactID uuid.UUID) error
}

// ContactsService manages contacts and keeps them attached to a company.
type ContactsService struct {
	repo      repository.ContactsRepository
	companies repository.CompaniesRepository
}

// NewContactsService builds a ContactsService.
func NewContactsService(repo repository.ContactsRepository, companies repository.CompaniesRepository) *ContactsService {
	return &ContactsService{repo: repo, companies: companies}
}

// ListContacts returns contacts matching the filter.
func (s *ContactsService) ListContacts(ctx context.Context, filter dto.ContactFilter) ([]entity.Contact, error) {
	filter.Pagination = filter.Pagination.Normalized()
	return s.repo.List(ctx, filter)
}

// GetContact returns one contact.
func (s *ContactsService) GetContact(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	return s.repo.Get(ctx, id)
}

// CreateContact resolves the company first, then saves the contact with the
// persisted company id. A contact is never written without one.
func (s *ContactsService) CreateContact(ctx context.Context, req dto.ContactRequest) (*entity.Contact, error) {
	contact := &entity.Contact{}
	applyContactRequest(contact, req)
	if contact.Name() == "" {
		return nil, invalid("first_name", "contact name is required")
	}

	companyID, err := s.resolveCompany(ctx, req.CompanyID, req.CompanyName)
	if err != nil {
		return nil, err
	}
	contact.CompanyID = companyID

	if err := s.repo.Create(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyRequired
		}
		return nil, err
	}
	return contact, nil
}

// UpdateContact applies a partial update. Moving a contact to another company
// goes through the same resolution as create.
func (s *ContactsService) UpdateContact(ctx context.Context, id uuid.UUID, req dto.ContactRequest) (*entity.Contact, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyContactRequest(contact, req)
	if contact.Name() == "" {
		return nil, invalid("first_name", "contact name cannot be blank")
	}
	if req.CompanyID != nil || req.CompanyName != nil {
		companyID, err := s.resolveCompany(ctx, req.CompanyID, req.CompanyName)
		if err != nil {
			return nil, err
		}
		contact.CompanyID = companyID
	}
	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes a contact.
func (s *ContactsService) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *ContactsService) resolveCompany(ctx context.Context, rawID, name *string) (uuid.UUID, error) {
	if rawID != nil && strings.TrimSpace(*rawID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*rawID))
		if err != nil {
			return uuid.Nil, invalid("company_id", "company id must be a uuid")
		}
		company, err := s.companies.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrCompanyNotFound) {
				return uuid.Nil, ErrCompanyRequired
			}
			return uuid.Nil, err
		}
		return company.ID, nil
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		company := &entity.Company{Name: strings.TrimSpace(*name)}
		if _, err := s.companies.FindOrCreate(ctx, company); err != nil {
			return uuid.Nil, err
		}
		if company.ID == uuid.Nil {
			return uuid.Nil, ErrCompanyRequired
		}
		return company.ID, nil
	}
	return uuid.Nil, ErrCompanyRequired
}

func applyContactRequest(c *entity.Contact, req dto.ContactRequest) {
	if req.FirstName != nil {
		c.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		c.LastName = strings.TrimSpace(*req.LastName)
	}
	set := func(dst **string, src *string) {
		if src == nil {
			return
		}
		*dst = normalizeString(*src)
	}
	set(&c.Title, req.Title)
	set(&c.Phone, req.Phone)
	set(&c.LinkedInURL, req.LinkedInURL)
	set(&c.Notes, req.Notes)
	if req.Email != nil {
		email := normalizeString(strings.ToLower(*req.Email))
		c.Email = email
	}
}
