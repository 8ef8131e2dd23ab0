package enrichment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/llm"
	"github.com/octobees/leadgenius/api/internal/repository"
	"github.com/octobees/leadgenius/api/internal/webhook"
)

type staticSettings struct {
	settings entity.AppSettings
}

func (s staticSettings) Get(ctx context.Context) (entity.AppSettings, error) {
	return s.settings, nil
}

type fakeCaller struct {
	bodies   map[string]string
	fail     map[string]bool
	requests []webhook.Request
}

func (f *fakeCaller) Call(ctx context.Context, req webhook.Request) (webhook.Response, error) {
	f.requests = append(f.requests, req)
	if f.fail[req.Kind] {
		return webhook.Response{Attempts: 2}, webhook.ErrExhausted
	}
	return webhook.Response{Body: []byte(f.bodies[req.Kind]), Status: 200, Method: "GET", Attempts: 1}, nil
}

type fakeGenerator struct {
	text   string
	err    error
	prompt llm.Prompt
}

func (g *fakeGenerator) Generate(ctx context.Context, p llm.Prompt) (string, error) {
	g.prompt = p
	return g.text, g.err
}

type memoryCompanies struct {
	repository.CompaniesRepository
	items   map[uuid.UUID]entity.Company
	scripts map[uuid.UUID]entity.OutreachScripts
}

func newMemoryCompanies(companies ...entity.Company) *memoryCompanies {
	m := &memoryCompanies{items: map[uuid.UUID]entity.Company{}, scripts: map[uuid.UUID]entity.OutreachScripts{}}
	for _, c := range companies {
		m.items[c.ID] = c
	}
	return m
}

func (m *memoryCompanies) Get(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	return &c, nil
}

func (m *memoryCompanies) Update(ctx context.Context, company *entity.Company) error {
	if _, ok := m.items[company.ID]; !ok {
		return repository.ErrCompanyNotFound
	}
	m.items[company.ID] = *company
	return nil
}

func (m *memoryCompanies) UpdateInsights(ctx context.Context, id uuid.UUID, insights entity.CompanyInsights) error {
	c, ok := m.items[id]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	c.Insights = insights
	m.items[id] = c
	return nil
}

func (m *memoryCompanies) UpdateScripts(ctx context.Context, id uuid.UUID, scripts entity.OutreachScripts) error {
	c, ok := m.items[id]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	c.ApplyScripts(scripts)
	m.items[id] = c
	m.scripts[id] = scripts
	return nil
}

type memoryContacts struct {
	repository.ContactsRepository
	items map[uuid.UUID]entity.Contact
}

func newMemoryContacts(contacts ...entity.Contact) *memoryContacts {
	m := &memoryContacts{items: map[uuid.UUID]entity.Contact{}}
	for _, c := range contacts {
		m.items[c.ID] = c
	}
	return m
}

func (m *memoryContacts) Get(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	return &c, nil
}

func (m *memoryContacts) List(ctx context.Context, filter dto.ContactFilter) ([]entity.Contact, error) {
	var out []entity.Contact
	for _, c := range m.items {
		if filter.CompanyID == nil || c.CompanyID == *filter.CompanyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryContacts) Update(ctx context.Context, contact *entity.Contact) error {
	if _, ok := m.items[contact.ID]; !ok {
		return repository.ErrContactNotFound
	}
	m.items[contact.ID] = *contact
	return nil
}

type memoryInsights struct {
	appended []entity.Insight
}

func (m *memoryInsights) Append(ctx context.Context, insight *entity.Insight) error {
	if insight.CompanyID == uuid.Nil {
		return errors.New("company id required")
	}
	insight.ID = uuid.New()
	m.appended = append(m.appended, *insight)
	return nil
}

func (m *memoryInsights) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Insight, error) {
	var out []entity.Insight
	for _, in := range m.appended {
		if in.CompanyID == companyID {
			out = append(out, in)
		}
	}
	return out, nil
}

type recordingScheduler struct {
	scheduled []uuid.UUID
}

func (s *recordingScheduler) ScheduleContactEnrichment(ctx context.Context, contactID uuid.UUID) error {
	s.scheduled = append(s.scheduled, contactID)
	return nil
}

func webhooksFor(kinds ...entity.WebhookKind) map[entity.WebhookKind]string {
	out := map[entity.WebhookKind]string{}
	for _, k := range kinds {
		out[k] = "https://hooks.example.com/" + strings.ReplaceAll(string(k), "_", "-")
	}
	return out
}
