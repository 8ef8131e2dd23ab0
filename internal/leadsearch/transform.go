package leadsearch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/octobees/leadgenius/api/internal/entity"
)

// ErrInvalidPayload is returned when the scraper output is not JSON.
var ErrInvalidPayload = errors.New("scraper payload is not valid JSON")

var (
	firstNamePaths = []string{"first_name", "firstName", "contact.first_name"}
	lastNamePaths  = []string{"last_name", "lastName", "contact.last_name"}
	fullNamePaths  = []string{"name", "full_name", "fullName", "contact.name"}
	titlePaths     = []string{"title", "headline", "job_title", "jobTitle", "position"}
	companyPaths   = []string{"organization_name", "organization.name", "company", "company_name", "companyName", "employer", "account.name"}
	orgNamePaths   = []string{"name", "title", "company_name", "companyName", "organization_name", "organization.name"}
	emailPaths     = []string{"email", "contact.email", "emails.0", "personal_emails.0", "emails.0.email"}
	phonePaths     = []string{"phone", "phone_number", "sanitized_phone", "phoneUnformatted", "contact.phone", "phone_numbers.0.sanitized_number", "organization.phone", "organization.primary_phone.number"}
	linkedinPaths  = []string{"linkedin_url", "linkedinUrl", "linkedin", "profileUrl", "contact.linkedin_url"}
	websitePaths   = []string{"website", "company_website", "website_url", "organization.website_url", "organization.primary_domain", "domain", "url"}
	industryPaths  = []string{"industry", "organization.industry", "categoryName", "category"}
	cityPaths      = []string{"city", "organization.city", "location.city"}
	statePaths     = []string{"state", "organization.state", "location.state"}
	countryPaths   = []string{"country", "organization.country", "location.country", "countryCode"}
	locationPaths  = []string{"location", "formatted_address", "address", "organization.raw_address"}
	employeePaths  = []string{"estimated_num_employees", "organization.estimated_num_employees", "employees", "employee_count", "size"}
	companyMarkers = []string{"placeId", "place_id", "categoryName", "totalScore", "primary_domain"}
)

// Transformer flattens raw scraper records into SearchResults.
type Transformer struct {
	now func() time.Time
}

// NewTransformer returns a transformer using the wall clock for synthetic ids.
func NewTransformer() *Transformer {
	return &Transformer{now: time.Now}
}

// WithClock overrides the clock used when synthesising ids.
func (t *Transformer) WithClock(now func() time.Time) *Transformer {
	t.now = now
	return t
}

// Transform normalises scraper output. The input may be an array of records, a
// single record, or an object with an "items" array; any record may nest people
// under "contacts". Records that are already normalised pass through untouched.
func (t *Transformer) Transform(raw []byte) ([]entity.SearchResult, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidPayload
	}

	root := gjson.ParseBytes(raw)
	var records []gjson.Result
	switch {
	case root.IsArray():
		records = root.Array()
	case root.IsObject() && root.Get("items").IsArray():
		records = root.Get("items").Array()
	case root.IsObject():
		records = []gjson.Result{root}
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrInvalidPayload)
	}

	stamp := t.now().UnixMilli()
	results := make([]entity.SearchResult, 0, len(records))
	for i, record := range records {
		if !record.IsObject() {
			continue
		}
		if normalized, ok := alreadyNormalized(record); ok {
			results = append(results, normalized)
			continue
		}

		contacts := record.Get("contacts")
		if contacts.IsArray() && len(contacts.Array()) > 0 {
			for j, contact := range contacts.Array() {
				if !contact.IsObject() {
					continue
				}
				res := fromRecord(contact, record, true)
				res.ID = syntheticID(i, j, stamp)
				results = append(results, res)
			}
			continue
		}

		res := fromRecord(record, gjson.Result{}, false)
		res.ID = syntheticID(i, 0, stamp)
		results = append(results, res)
	}

	return results, nil
}

// ReExtract fills empty fields of a result from its preserved raw payload.
func ReExtract(result entity.SearchResult) entity.SearchResult {
	if len(result.RawData) == 0 || !gjson.ValidBytes(result.RawData) {
		return result
	}
	fresh := fromRecord(gjson.ParseBytes(result.RawData), gjson.Result{}, result.Type == entity.SearchResultPerson)

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&result.Name, fresh.Name)
	fill(&result.FirstName, fresh.FirstName)
	fill(&result.LastName, fresh.LastName)
	fill(&result.Title, fresh.Title)
	fill(&result.Email, fresh.Email)
	fill(&result.Phone, fresh.Phone)
	fill(&result.LinkedInURL, fresh.LinkedInURL)
	fill(&result.Company, fresh.Company)
	fill(&result.CompanyWebsite, fresh.CompanyWebsite)
	fill(&result.Industry, fresh.Industry)
	fill(&result.Location, fresh.Location)
	fill(&result.City, fresh.City)
	fill(&result.State, fresh.State)
	fill(&result.Country, fresh.Country)
	fill(&result.Employees, fresh.Employees)
	if result.Type == "" {
		result.Type = fresh.Type
	}
	return result
}

func syntheticID(outer, inner int, stamp int64) string {
	return fmt.Sprintf("%d-%d-%d", outer, inner, stamp)
}

func alreadyNormalized(record gjson.Result) (entity.SearchResult, bool) {
	id := record.Get("id")
	kind := record.Get("type").String()
	if id.Type != gjson.String || id.String() == "" || !record.Get("raw_data").Exists() {
		return entity.SearchResult{}, false
	}
	if kind != string(entity.SearchResultPerson) && kind != string(entity.SearchResultCompany) {
		return entity.SearchResult{}, false
	}
	var res entity.SearchResult
	if err := json.Unmarshal([]byte(record.Raw), &res); err != nil {
		return entity.SearchResult{}, false
	}
	return res, true
}

// fromRecord maps one record. Nested contacts pass person=true since their
// parent already names the company.
func fromRecord(record, parent gjson.Result, person bool) entity.SearchResult {
	res := entity.SearchResult{
		FirstName:   first(record, firstNamePaths...),
		LastName:    first(record, lastNamePaths...),
		Email:       first(record, emailPaths...),
		Phone:       first(record, phonePaths...),
		LinkedInURL: first(record, linkedinPaths...),
		Industry:    first(record, industryPaths...),
		City:        first(record, cityPaths...),
		State:       first(record, statePaths...),
		Country:     first(record, countryPaths...),
		Employees:   first(record, employeePaths...),
		RawData:     json.RawMessage(record.Raw),
	}

	res.Name = first(record, fullNamePaths...)
	if res.Name == "" {
		res.Name = strings.TrimSpace(res.FirstName + " " + res.LastName)
	}

	res.Location = first(record, locationPaths...)
	if res.Location == "" {
		res.Location = joinNonEmpty(", ", res.City, res.State, res.Country)
	}

	res.Company = first(record, companyPaths...)
	res.CompanyWebsite = first(record, websitePaths...)
	if parent.Exists() {
		if res.Company == "" {
			res.Company = first(parent, orgNamePaths...)
		}
		if res.CompanyWebsite == "" {
			res.CompanyWebsite = first(parent, websitePaths...)
		}
		if res.Industry == "" {
			res.Industry = first(parent, industryPaths...)
		}
		if res.Location == "" {
			res.Location = first(parent, locationPaths...)
		}
		if res.Phone == "" {
			res.Phone = first(parent, phonePaths...)
		}
	}

	if person || isPerson(record, res) {
		res.Type = entity.SearchResultPerson
		res.Title = first(record, titlePaths...)
		return res
	}

	res.Type = entity.SearchResultCompany
	if res.Name == "" {
		res.Name = first(record, orgNamePaths...)
	}
	if res.Company == "" {
		res.Company = res.Name
	}
	return res
}

func isPerson(record gjson.Result, res entity.SearchResult) bool {
	switch strings.ToLower(record.Get("type").String()) {
	case "person", "people", "contact":
		return true
	case "company", "organization", "place":
		return false
	}
	for _, marker := range companyMarkers {
		if record.Get(marker).Exists() {
			return false
		}
	}
	if res.FirstName != "" || res.LastName != "" || res.Email != "" {
		return true
	}
	if first(record, titlePaths...) != "" {
		return true
	}
	return strings.Contains(strings.ToLower(res.LinkedInURL), "/in/")
}

// first returns the first scalar, non-empty value among the paths.
func first(record gjson.Result, paths ...string) string {
	for _, path := range paths {
		value := record.Get(path)
		switch value.Type {
		case gjson.String, gjson.Number:
			if s := strings.TrimSpace(value.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
