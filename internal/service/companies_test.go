package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

func TestCompaniesService_ListCompanies_AppliesDefaults(t *testing.T) {
	received := dto.ListFilter{}
	repo := newMockCompanies()
	repo.list = func(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
		received = filter
		return []entity.Company{{Name: "Acme"}}, nil
	}

	service := NewCompaniesService(repo, newMockContacts(), &mockInsightsRepository{})
	companies, err := service.ListCompanies(context.Background(), dto.ListFilter{Pagination: dto.Pagination{Page: -1, PerPage: 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(companies) != 1 {
		t.Fatalf("expected 1 company, got %d", len(companies))
	}
	if received.Page != 1 {
		t.Fatalf("expected page default 1, got %d", received.Page)
	}
	if received.PerPage != 20 {
		t.Fatalf("expected per_page default 20, got %d", received.PerPage)
	}
}

func TestCompaniesService_ListCompanies_CapsPerPage(t *testing.T) {
	repo := newMockCompanies()
	repo.list = func(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
		if filter.PerPage != 100 {
			t.Fatalf("expected per_page capped at 100, got %d", filter.PerPage)
		}
		return nil, nil
	}
	service := NewCompaniesService(repo, newMockContacts(), &mockInsightsRepository{})
	if _, err := service.ListCompanies(context.Background(), dto.ListFilter{Pagination: dto.Pagination{PerPage: 1000}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompaniesService_CreateCompany(t *testing.T) {
	repo := newMockCompanies()
	service := NewCompaniesService(repo, newMockContacts(), &mockInsightsRepository{})

	_, err := service.CreateCompany(context.Background(), dto.CompanyRequest{Name: strPtr("   ")})
	var vErr ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "name" {
		t.Fatalf("expected name validation error, got %v", err)
	}

	company, err := service.CreateCompany(context.Background(), dto.CompanyRequest{
		Name:    strPtr(" Acme "),
		City:    strPtr("Austin"),
		Website: strPtr(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if company.ID == uuid.Nil || company.Name != "Acme" || entity.Value(company.City) != "Austin" {
		t.Fatalf("unexpected company: %+v", company)
	}
	if company.Website != nil {
		t.Fatalf("expected blank website to stay nil")
	}
}

func TestCompaniesService_UpdateCompanyIsPartial(t *testing.T) {
	id := uuid.New()
	repo := newMockCompanies(entity.Company{ID: id, Name: "Acme", City: strPtr("Austin"), Phone: strPtr("123")})
	service := NewCompaniesService(repo, newMockContacts(), &mockInsightsRepository{})

	updated, err := service.UpdateCompany(context.Background(), id, dto.CompanyRequest{Industry: strPtr("Software"), Phone: strPtr("")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Acme" || entity.Value(updated.City) != "Austin" {
		t.Fatalf("expected untouched fields to persist, got %+v", updated)
	}
	if entity.Value(updated.Industry) != "Software" || updated.Phone != nil {
		t.Fatalf("expected industry set and phone cleared, got %+v", updated)
	}

	if _, err := service.UpdateCompany(context.Background(), uuid.New(), dto.CompanyRequest{}); !errors.Is(err, repository.ErrCompanyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompaniesService_CompanyContacts(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	contacts := newMockContacts(
		entity.Contact{ID: uuid.New(), CompanyID: id, FirstName: "Jane"},
		entity.Contact{ID: uuid.New(), CompanyID: other, FirstName: "Bob"},
	)
	service := NewCompaniesService(newMockCompanies(entity.Company{ID: id, Name: "Acme"}), contacts, &mockInsightsRepository{})

	got, err := service.CompanyContacts(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].FirstName != "Jane" {
		t.Fatalf("unexpected contacts: %+v", got)
	}
	if _, err := service.CompanyContacts(context.Background(), uuid.New()); !errors.Is(err, repository.ErrCompanyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompaniesService_ImportCompaniesCSV(t *testing.T) {
	var received []entity.Company
	repo := newMockCompanies()
	repo.bulk = func(ctx context.Context, companies []entity.Company) (repository.BulkUpsertResult, error) {
		received = companies
		return repository.BulkUpsertResult{Inserted: 1, Updated: 1, Total: 2}, nil
	}

	csvData := "\ufeffCompany,Type_Business,City,Website,Phone\n" +
		"Acme,Software,Austin,https://acme.com,+1 512 555 0100\n" +
		",Retail,Boise,,\n" +
		"Globex, ,Denver,,\n"

	service := NewCompaniesService(repo, newMockContacts(), &mockInsightsRepository{})
	summary, err := service.ImportCompaniesCSV(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Inserted != 1 || summary.Updated != 1 || summary.Total != 2 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(received) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(received))
	}
	if received[0].Name != "Acme" || entity.Value(received[0].Industry) != "Software" || entity.Value(received[0].Website) != "https://acme.com" {
		t.Fatalf("unexpected first company: %+v", received[0])
	}
	if received[1].Industry != nil {
		t.Fatalf("expected blank industry to be nil")
	}
}

func TestCompaniesService_ImportCompaniesCSV_MissingName(t *testing.T) {
	service := NewCompaniesService(newMockCompanies(), newMockContacts(), &mockInsightsRepository{})
	_, err := service.ImportCompaniesCSV(context.Background(), strings.NewReader("city,phone\nAustin,1\n"))
	var csvErr CSVValidationError
	if !errors.As(err, &csvErr) {
		t.Fatalf("expected CSVValidationError, got %v", err)
	}
	if !strings.Contains(csvErr.Message, "name") {
		t.Fatalf("unexpected message: %s", csvErr.Message)
	}

	_, err = service.ImportCompaniesCSV(context.Background(), strings.NewReader(""))
	if !errors.As(err, &csvErr) {
		t.Fatalf("expected CSVValidationError for empty file, got %v", err)
	}
}
