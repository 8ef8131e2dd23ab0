package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

// ListsService manages named company lists.
type ListsService struct {
	repo      repository.ListsRepository
	companies repository.CompaniesRepository
}

// NewListsService builds a ListsService.
func NewListsService(repo repository.ListsRepository, companies repository.CompaniesRepository) *ListsService {
	return &ListsService{repo: repo, companies: companies}
}

// Create stores a new list.
func (s *ListsService) Create(ctx context.Context, req dto.CreateListRequest) (*entity.List, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "list name is required")
	}
	list := &entity.List{Name: name, Description: strings.TrimSpace(req.Description)}
	if err := s.repo.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// List returns all lists.
func (s *ListsService) List(ctx context.Context) ([]entity.List, error) {
	return s.repo.List(ctx)
}

// ListWithCompanies pairs a list with its member companies.
type ListWithCompanies struct {
	entity.List
	Companies []entity.Company `json:"companies"`
}

// Get returns a list and its companies.
func (s *ListsService) Get(ctx context.Context, id uuid.UUID) (*ListWithCompanies, error) {
	list, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	companies, err := s.repo.Companies(ctx, id)
	if err != nil {
		return nil, err
	}
	if companies == nil {
		companies = []entity.Company{}
	}
	return &ListWithCompanies{List: *list, Companies: companies}, nil
}

// Delete removes a list.
func (s *ListsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AddCompany adds a company after checking both records exist.
func (s *ListsService) AddCompany(ctx context.Context, listID, companyID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, listID); err != nil {
		return err
	}
	if _, err := s.companies.Get(ctx, companyID); err != nil {
		return err
	}
	return s.repo.AddCompany(ctx, listID, companyID)
}

// RemoveCompany removes a company from a list.
func (s *ListsService) RemoveCompany(ctx context.Context, listID, companyID uuid.UUID) error {
	return s.repo.RemoveCompany(ctx, listID, companyID)
}
