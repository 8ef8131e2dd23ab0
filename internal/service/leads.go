package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

// LeadImportService turns selected search results into companies and contacts.
type LeadImportService struct {
	companies repository.CompaniesRepository
	contacts  repository.ContactsRepository
	scheduler EnrichmentScheduler
	logger    *slog.Logger
}

// NewLeadImportService builds a LeadImportService. A nil scheduler disables
// background enrichment.
func NewLeadImportService(companies repository.CompaniesRepository, contacts repository.ContactsRepository, scheduler EnrichmentScheduler, logger *slog.Logger) *LeadImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadImportService{companies: companies, contacts: contacts, scheduler: scheduler, logger: logger}
}

// Import saves each result. Companies are resolved or created first and
// contacts are written with the persisted company id. Failures on one result
// are reported and do not stop the batch.
func (s *LeadImportService) Import(ctx context.Context, req dto.ImportLeadsRequest) (dto.ImportLeadsResponse, error) {
	var (
		resp     dto.ImportLeadsResponse
		resolved = map[string]uuid.UUID{}
	)

	for i, result := range req.Results {
		companyName := strings.TrimSpace(result.Company)
		if result.Type == entity.SearchResultCompany && companyName == "" {
			companyName = strings.TrimSpace(result.Name)
		}
		if companyName == "" {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("result %d: %v", i, ErrCompanyRequired))
			continue
		}

		companyID, err := s.resolveCompany(ctx, companyName, result, resolved, &resp)
		if err != nil {
			if ctx.Err() != nil {
				return resp, ctx.Err()
			}
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("result %d: %v", i, err))
			continue
		}

		if result.Type != entity.SearchResultPerson {
			continue
		}

		contact := contactFromResult(result)
		contact.CompanyID = companyID
		if contact.Name() == "" {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("result %d: contact name is required", i))
			continue
		}
		if err := s.contacts.Create(ctx, contact); err != nil {
			if ctx.Err() != nil {
				return resp, ctx.Err()
			}
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("result %d: %v", i, err))
			continue
		}
		resp.ContactsCreated++

		if req.Enrich && s.scheduler != nil {
			if err := s.scheduler.ScheduleContactEnrichment(ctx, contact.ID); err != nil {
				s.logger.Warn("schedule contact enrichment failed",
					slog.String("contact_id", contact.ID.String()),
					slog.String("error", err.Error()))
			}
		}
	}
	return resp, nil
}

func (s *LeadImportService) resolveCompany(ctx context.Context, name string, result entity.SearchResult, cache map[string]uuid.UUID, resp *dto.ImportLeadsResponse) (uuid.UUID, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	company := companyFromResult(name, result)
	inserted, err := s.companies.FindOrCreate(ctx, company)
	if err != nil {
		return uuid.Nil, err
	}
	if company.ID == uuid.Nil {
		return uuid.Nil, ErrCompanyRequired
	}
	if inserted {
		resp.CompaniesCreated++
	} else {
		resp.CompaniesMatched++
	}
	cache[key] = company.ID
	return company.ID, nil
}

func companyFromResult(name string, r entity.SearchResult) *entity.Company {
	c := &entity.Company{
		Name:     name,
		Website:  normalizeString(r.CompanyWebsite),
		Industry: normalizeString(r.Industry),
		City:     normalizeString(r.City),
		State:    normalizeString(r.State),
		Country:  normalizeString(r.Country),
		Location: normalizeString(r.Location),
		Size:     normalizeString(r.Employees),
	}
	if r.Type == entity.SearchResultCompany {
		c.Phone = normalizeString(r.Phone)
		c.Email = normalizeString(r.Email)
		c.LinkedInURL = normalizeString(r.LinkedInURL)
	}
	return c
}

func contactFromResult(r entity.SearchResult) *entity.Contact {
	first, last := strings.TrimSpace(r.FirstName), strings.TrimSpace(r.LastName)
	if first == "" && last == "" {
		first, last = entity.SplitName(r.Name)
	}
	c := &entity.Contact{
		FirstName:   first,
		LastName:    last,
		Title:       normalizeString(r.Title),
		Email:       normalizeString(strings.ToLower(r.Email)),
		Phone:       normalizeString(r.Phone),
		LinkedInURL: normalizeString(r.LinkedInURL),
		Location:    normalizeString(r.Location),
	}
	return c
}
