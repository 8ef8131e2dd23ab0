package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

type stubCompaniesRepository struct {
	items      map[uuid.UUID]entity.Company
	lastFilter dto.ListFilter
	listErr    error
	bulk       func(ctx context.Context, companies []entity.Company) (repository.BulkUpsertResult, error)
	deleted    []uuid.UUID
}

func newStubCompanies(companies ...entity.Company) *stubCompaniesRepository {
	s := &stubCompaniesRepository{items: map[uuid.UUID]entity.Company{}}
	for _, c := range companies {
		s.items[c.ID] = c
	}
	return s
}

func (s *stubCompaniesRepository) Create(ctx context.Context, company *entity.Company) error {
	for _, existing := range s.items {
		if strings.EqualFold(existing.Name, company.Name) {
			return repository.ErrDuplicateCompany
		}
	}
	company.ID = uuid.New()
	s.items[company.ID] = *company
	return nil
}

func (s *stubCompaniesRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	return &c, nil
}

func (s *stubCompaniesRepository) FindByName(ctx context.Context, name string) (*entity.Company, error) {
	for _, c := range s.items {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (s *stubCompaniesRepository) FindOrCreate(ctx context.Context, company *entity.Company) (bool, error) {
	if existing, err := s.FindByName(ctx, company.Name); err == nil {
		*company = *existing
		return false, nil
	}
	company.ID = uuid.New()
	s.items[company.ID] = *company
	return true, nil
}

func (s *stubCompaniesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []entity.Company{}
	for _, c := range s.items {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCompaniesRepository) Update(ctx context.Context, company *entity.Company) error {
	if _, ok := s.items[company.ID]; !ok {
		return repository.ErrCompanyNotFound
	}
	s.items[company.ID] = *company
	return nil
}

func (s *stubCompaniesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.items[id]; !ok {
		return repository.ErrCompanyNotFound
	}
	delete(s.items, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCompaniesRepository) UpdateInsights(ctx context.Context, id uuid.UUID, insights entity.CompanyInsights) error {
	c, ok := s.items[id]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	c.Insights = insights
	s.items[id] = c
	return nil
}

func (s *stubCompaniesRepository) UpdateScripts(ctx context.Context, id uuid.UUID, scripts entity.OutreachScripts) error {
	c, ok := s.items[id]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	c.ApplyScripts(scripts)
	s.items[id] = c
	return nil
}

func (s *stubCompaniesRepository) BulkUpsert(ctx context.Context, companies []entity.Company) (repository.BulkUpsertResult, error) {
	if s.bulk != nil {
		return s.bulk(ctx, companies)
	}
	return repository.BulkUpsertResult{Inserted: len(companies), Total: len(companies)}, nil
}

type stubContactsRepository struct {
	items map[uuid.UUID]entity.Contact
}

func newStubContacts(contacts ...entity.Contact) *stubContactsRepository {
	s := &stubContactsRepository{items: map[uuid.UUID]entity.Contact{}}
	for _, c := range contacts {
		s.items[c.ID] = c
	}
	return s
}

func (s *stubContactsRepository) Create(ctx context.Context, contact *entity.Contact) error {
	if contact.CompanyID == uuid.Nil {
		return repository.ErrContactCompanyMissing
	}
	contact.ID = uuid.New()
	s.items[contact.ID] = *contact
	return nil
}

func (s *stubContactsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	return &c, nil
}

func (s *stubContactsRepository) List(ctx context.Context, filter dto.ContactFilter) ([]entity.Contact, error) {
	out := []entity.Contact{}
	for _, c := range s.items {
		if filter.CompanyID != nil && c.CompanyID != *filter.CompanyID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *stubContactsRepository) Update(ctx context.Context, contact *entity.Contact) error {
	if _, ok := s.items[contact.ID]; !ok {
		return repository.ErrContactNotFound
	}
	s.items[contact.ID] = *contact
	return nil
}

func (s *stubContactsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.items[id]; !ok {
		return repository.ErrContactNotFound
	}
	delete(s.items, id)
	return nil
}

type stubInsightsRepository struct {
	items []entity.Insight
}

func (s *stubInsightsRepository) Append(ctx context.Context, insight *entity.Insight) error {
	insight.ID = uuid.New()
	s.items = append(s.items, *insight)
	return nil
}

func (s *stubInsightsRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Insight, error) {
	out := []entity.Insight{}
	for _, in := range s.items {
		if in.CompanyID == companyID {
			out = append(out, in)
		}
	}
	return out, nil
}

type stubSettingsRepository struct {
	settings entity.AppSettings
	saved    int
}

func (s *stubSettingsRepository) Get(ctx context.Context) (entity.AppSettings, error) {
	if s.settings.ID == "" {
		return entity.AppSettings{}, repository.ErrSettingsNotFound
	}
	return s.settings, nil
}

func (s *stubSettingsRepository) Save(ctx context.Context, settings *entity.AppSettings) error {
	s.saved++
	s.settings = *settings
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func withParams(c echo.Context, names []string, values ...string) echo.Context {
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()
	var raw struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return APIResponse{Status: raw.Status, Message: raw.Message}
}
