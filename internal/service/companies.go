package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

// CompaniesService exposes read/write operations for the company catalogue.
type CompaniesService struct {
	repo     repository.CompaniesRepository
	contacts repository.ContactsRepository
	insights repository.InsightsRepository
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// UploadSummary reports how many rows were inserted or updated during import.
type UploadSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// NewCompaniesService creates a new instance of CompaniesService.
func NewCompaniesService(repo repository.CompaniesRepository, contacts repository.ContactsRepository, insights repository.InsightsRepository) *CompaniesService {
	return &CompaniesService{repo: repo, contacts: contacts, insights: insights}
}

// ListCompanies returns companies respecting pagination defaults.
func (s *CompaniesService) ListCompanies(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	filter.Pagination = filter.Pagination.Normalized()
	return s.repo.List(ctx, filter)
}

// GetCompany returns one company.
func (s *CompaniesService) GetCompany(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return s.repo.Get(ctx, id)
}

// CreateCompany validates and stores a new company.
func (s *CompaniesService) CreateCompany(ctx context.Context, req dto.CompanyRequest) (*entity.Company, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("name", "company name is required")
	}
	company := &entity.Company{}
	applyCompanyRequest(company, req)
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// UpdateCompany applies a partial update.
func (s *CompaniesService) UpdateCompany(ctx context.Context, id uuid.UUID, req dto.CompanyRequest) (*entity.Company, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("name", "company name cannot be blank")
	}
	company, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCompanyRequest(company, req)
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany removes a company and its contacts.
func (s *CompaniesService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// CompanyContacts lists the contacts of a company.
func (s *CompaniesService) CompanyContacts(ctx context.Context, id uuid.UUID) ([]entity.Contact, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.contacts.List(ctx, dto.ContactFilter{CompanyID: &id, Pagination: dto.Pagination{PerPage: 100}})
}

// Insights returns the insight history of a company.
func (s *CompaniesService) Insights(ctx context.Context, id uuid.UUID) ([]entity.Insight, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.insights.ListByCompany(ctx, id)
}

func applyCompanyRequest(c *entity.Company, req dto.CompanyRequest) {
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	set := func(dst **string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if v == "" {
			*dst = nil
			return
		}
		*dst = &v
	}
	set(&c.Industry, req.Industry)
	set(&c.Size, req.Size)
	set(&c.Location, req.Location)
	set(&c.Street, req.Street)
	set(&c.City, req.City)
	set(&c.State, req.State)
	set(&c.Zip, req.Zip)
	set(&c.Country, req.Country)
	set(&c.Website, req.Website)
	set(&c.Phone, req.Phone)
	set(&c.Email, req.Email)
	set(&c.Description, req.Description)
	set(&c.LinkedInURL, req.LinkedInURL)
	set(&c.FacebookURL, req.FacebookURL)
	set(&c.TwitterURL, req.TwitterURL)
	set(&c.InstagramURL, req.InstagramURL)
}

// ImportCompaniesCSV ingests companies data from a CSV reader. Only the name
// column is required; rows without a name are skipped.
func (s *CompaniesService) ImportCompaniesCSV(ctx context.Context, r io.Reader) (UploadSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return UploadSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return UploadSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return UploadSummary{}, valErr
	}

	var (
		records []entity.Company
		skipped int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return UploadSummary{}, fmt.Errorf("read csv row: %w", err)
		}

		col := func(name string) *string {
			idx, ok := indexMap[name]
			if !ok || idx >= len(row) {
				return nil
			}
			return normalizeString(row[idx])
		}

		name := col("name")
		if name == nil {
			skipped++
			continue
		}
		records = append(records, entity.Company{
			Name:     *name,
			Industry: col("industry"),
			City:     col("city"),
			State:    col("state"),
			Country:  col("country"),
			Website:  col("website"),
			Phone:    col("phone"),
			Email:    col("email"),
			Location: col("location"),
		})
	}

	result, err := s.repo.BulkUpsert(ctx, records)
	if err != nil {
		return UploadSummary{}, err
	}

	return UploadSummary{
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Skipped:  skipped,
		Total:    result.Total,
	}, nil
}

var csvHeaderAliases = map[string]string{
	"name":          "name",
	"company":       "name",
	"company_name":  "name",
	"industry":      "industry",
	"type_business": "industry",
	"category":      "industry",
	"city":          "city",
	"state":         "state",
	"country":       "country",
	"website":       "website",
	"url":           "website",
	"phone":         "phone",
	"email":         "email",
	"location":      "location",
	"address":       "location",
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		canonical, ok := csvHeaderAliases[key]
		if !ok {
			continue
		}
		if _, seen := index[canonical]; !seen {
			index[canonical] = i
		}
	}
	if _, ok := index["name"]; !ok {
		return nil, CSVValidationError{Message: "missing required column: name"}
	}
	return index, nil
}

func normalizeString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
