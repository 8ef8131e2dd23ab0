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

type mockCompaniesRepository struct {
	list         func(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error)
	bulk         func(ctx context.Context, companies []entity.Company) (repository.BulkUpsertResult, error)
	create       func(ctx context.Context, company *entity.Company) error
	update       func(ctx context.Context, company *entity.Company) error
	findOrCreate func(ctx context.Context, company *entity.Company) (bool, error)
	companies    map[uuid.UUID]entity.Company
	deleted      []uuid.UUID
	insights     map[uuid.UUID]entity.CompanyInsights
	scripts      map[uuid.UUID]entity.OutreachScripts
}

func newMockCompanies(companies ...entity.Company) *mockCompaniesRepository {
	m := &mockCompaniesRepository{
		companies: map[uuid.UUID]entity.Company{},
		insights:  map[uuid.UUID]entity.CompanyInsights{},
		scripts:   map[uuid.UUID]entity.OutreachScripts{},
	}
	for _, c := range companies {
		m.companies[c.ID] = c
	}
	return m
}

func (m *mockCompaniesRepository) Create(ctx context.Context, company *entity.Company) error {
	if m.create != nil {
		return m.create(ctx, company)
	}
	company.ID = uuid.New()
	m.companies[company.ID] = *company
	return nil
}

func (m *mockCompaniesRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	return &c, nil
}

func (m *mockCompaniesRepository) FindByName(ctx context.Context, name string) (*entity.Company, error) {
	for _, c := range m.companies {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (m *mockCompaniesRepository) FindOrCreate(ctx context.Context, company *entity.Company) (bool, error) {
	if m.findOrCreate != nil {
		return m.findOrCreate(ctx, company)
	}
	if existing, err := m.FindByName(ctx, company.Name); err == nil {
		*company = *existing
		return false, nil
	}
	company.ID = uuid.New()
	m.companies[company.ID] = *company
	return true, nil
}

func (m *mockCompaniesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, errors.New("list not implemented")
}

func (m *mockCompaniesRepository) Update(ctx context.Context, company *entity.Company) error {
	if m.update != nil {
		return m.update(ctx, company)
	}
	if _, ok := m.companies[company.ID]; !ok {
		return repository.ErrCompanyNotFound
	}
	m.companies[company.ID] = *company
	return nil
}

func (m *mockCompaniesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.companies[id]; !ok {
		return repository.ErrCompanyNotFound
	}
	delete(m.companies, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCompaniesRepository) UpdateInsights(ctx context.Context, id uuid.UUID, insights entity.CompanyInsights) error {
	c, ok := m.companies[id]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	c.Insights = insights
	m.companies[id] = c
	m.insights[id] = insights
	return nil
}

func (m *mockCompaniesRepository) UpdateScripts(ctx context.Context, id uuid.UUID, scripts entity.OutreachScripts) error {
	c, ok := m.companies[id]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	c.ApplyScripts(scripts)
	m.companies[id] = c
	m.scripts[id] = scripts
	return nil
}

func (m *mockCompaniesRepository) BulkUpsert(ctx context.Context, companies []entity.Company) (repository.BulkUpsertResult, error) {
	if m.bulk != nil {
		return m.bulk(ctx, companies)
	}
	return repository.BulkUpsertResult{}, errors.New("bulk not implemented")
}

type mockContactsRepository struct {
	contacts map[uuid.UUID]entity.Contact
	created  []entity.Contact
	create   func(ctx context.Context, contact *entity.Contact) error
	list     func(ctx context.Context, filter dto.ContactFilter) ([]entity.Contact, error)
}

func newMockContacts(contacts ...entity.Contact) *mockContactsRepository {
	m := &mockContactsRepository{contacts: map[uuid.UUID]entity.Contact{}}
	for _, c := range contacts {
		m.contacts[c.ID] = c
	}
	return m
}

func (m *mockContactsRepository) Create(ctx context.Context, contact *entity.Contact) error {
	if m.create != nil {
		return m.create(ctx, contact)
	}
	if contact.CompanyID == uuid.Nil {
		return repository.ErrContactCompanyMissing
	}
	contact.ID = uuid.New()
	m.contacts[contact.ID] = *contact
	m.created = append(m.created, *contact)
	return nil
}

func (m *mockContactsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	return &c, nil
}

func (m *mockContactsRepository) List(ctx context.Context, filter dto.ContactFilter) ([]entity.Contact, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	var out []entity.Contact
	for _, c := range m.contacts {
		if filter.CompanyID == nil || c.CompanyID == *filter.CompanyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContactsRepository) Update(ctx context.Context, contact *entity.Contact) error {
	if _, ok := m.contacts[contact.ID]; !ok {
		return repository.ErrContactNotFound
	}
	m.contacts[contact.ID] = *contact
	return nil
}

func (m *mockContactsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.contacts[id]; !ok {
		return repository.ErrContactNotFound
	}
	delete(m.contacts, id)
	return nil
}

type mockInsightsRepository struct {
	appended []entity.Insight
}

func (m *mockInsightsRepository) Append(ctx context.Context, insight *entity.Insight) error {
	insight.ID = uuid.New()
	m.appended = append(m.appended, *insight)
	return nil
}

func (m *mockInsightsRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Insight, error) {
	var out []entity.Insight
	for _, in := range m.appended {
		if in.CompanyID == companyID {
			out = append(out, in)
		}
	}
	return out, nil
}

type mockSettingsRepository struct {
	settings *entity.AppSettings
	gets     int
	saves    int
	getErr   error
	onGet    func()
}

func (m *mockSettingsRepository) Get(ctx context.Context) (entity.AppSettings, error) {
	m.gets++
	if m.getErr != nil {
		return entity.AppSettings{}, m.getErr
	}
	if m.settings == nil {
		return entity.AppSettings{}, repository.ErrSettingsNotFound
	}
	copied := *m.settings
	copied.Webhooks = map[entity.WebhookKind]string{}
	for k, v := range m.settings.Webhooks {
		copied.Webhooks[k] = v
	}
	if m.onGet != nil {
		m.onGet()
	}
	return copied, nil
}

func (m *mockSettingsRepository) Save(ctx context.Context, settings *entity.AppSettings) error {
	m.saves++
	settings.ID = entity.DefaultSettingsID
	copied := *settings
	m.settings = &copied
	return nil
}

type memorySettingsCache struct {
	entries     map[int64]entity.AppSettings
	generation  int64
	invalidated int
}

func (c *memorySettingsCache) Get(ctx context.Context) (entity.AppSettings, int64, bool) {
	v, ok := c.entries[c.generation]
	return v, c.generation, ok
}

func (c *memorySettingsCache) Set(ctx context.Context, generation int64, settings entity.AppSettings) {
	if c.entries == nil {
		c.entries = map[int64]entity.AppSettings{}
	}
	c.entries[generation] = settings
}

func (c *memorySettingsCache) Invalidate(ctx context.Context) error {
	delete(c.entries, c.generation)
	c.generation++
	c.invalidated++
	return nil
}

type mockSearchesRepository struct {
	created  []entity.SearchHistory
	finished []entity.SearchHistory
	archives map[uuid.UUID]repository.SearchArchive
}

func newMockSearches() *mockSearchesRepository {
	return &mockSearchesRepository{archives: map[uuid.UUID]repository.SearchArchive{}}
}

func (m *mockSearchesRepository) Create(ctx context.Context, search *entity.SearchHistory) error {
	search.ID = uuid.New()
	if search.Status == "" {
		search.Status = entity.SearchRunning
	}
	m.created = append(m.created, *search)
	return nil
}

func (m *mockSearchesRepository) Finish(ctx context.Context, search *entity.SearchHistory) error {
	m.finished = append(m.finished, *search)
	return nil
}

func (m *mockSearchesRepository) List(ctx context.Context, limit int) ([]entity.SearchHistory, error) {
	return m.finished, nil
}

func (m *mockSearchesRepository) SaveArchive(ctx context.Context, archive repository.SearchArchive) error {
	m.archives[archive.SearchID] = archive
	return nil
}

func (m *mockSearchesRepository) GetArchive(ctx context.Context, searchID uuid.UUID) (*repository.SearchArchive, error) {
	a, ok := m.archives[searchID]
	if !ok {
		return nil, repository.ErrSearchNotFound
	}
	return &a, nil
}

type mockListsRepository struct {
	lists   map[uuid.UUID]entity.List
	members map[uuid.UUID][]uuid.UUID
}

func newMockLists() *mockListsRepository {
	return &mockListsRepository{lists: map[uuid.UUID]entity.List{}, members: map[uuid.UUID][]uuid.UUID{}}
}

func (m *mockListsRepository) Create(ctx context.Context, list *entity.List) error {
	list.ID = uuid.New()
	m.lists[list.ID] = *list
	return nil
}

func (m *mockListsRepository) List(ctx context.Context) ([]entity.List, error) {
	var out []entity.List
	for _, l := range m.lists {
		out = append(out, l)
	}
	return out, nil
}

func (m *mockListsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.List, error) {
	l, ok := m.lists[id]
	if !ok {
		return nil, repository.ErrListNotFound
	}
	l.CompanyCount = len(m.members[id])
	return &l, nil
}

func (m *mockListsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.lists[id]; !ok {
		return repository.ErrListNotFound
	}
	delete(m.lists, id)
	return nil
}

func (m *mockListsRepository) AddCompany(ctx context.Context, listID, companyID uuid.UUID) error {
	for _, id := range m.members[listID] {
		if id == companyID {
			return nil
		}
	}
	m.members[listID] = append(m.members[listID], companyID)
	return nil
}

func (m *mockListsRepository) RemoveCompany(ctx context.Context, listID, companyID uuid.UUID) error {
	ids := m.members[listID]
	for i, id := range ids {
		if id == companyID {
			m.members[listID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockListsRepository) Companies(ctx context.Context, listID uuid.UUID) ([]entity.Company, error) {
	out := make([]entity.Company, 0, len(m.members[listID]))
	for _, id := range m.members[listID] {
		out = append(out, entity.Company{ID: id})
	}
	return out, nil
}

func strPtr(s string) *string { return &s }
