package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/metrics"
	"github.com/octobees/leadgenius/api/internal/service"
	"github.com/octobees/leadgenius/api/internal/webhook"
)

// FindEmail asks the email finder webhook for the contact's address and stores
// the first deliverable one.
func (e *Enricher) FindEmail(ctx context.Context, contactID uuid.UUID) (Result, error) {
	contact, company, err := e.loadContact(ctx, contactID)
	if err != nil {
		return Result{}, err
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	outcome := e.callWebhook(ctx, settings, entity.WebhookEmailFinder, contactPayload(contact, company))
	if !outcome.ok() {
		metrics.ObserveFallback("find_email", string(SourceDemo))
		return Result{Source: SourceDemo, Fallback: true, Notice: outcome.notice + " No email was found."}, nil
	}

	email := e.cleaner.FirstEmail(ctx, outcome.content, string(outcome.body))
	if email == "" {
		return Result{Source: SourceWebhook, Fallback: true, Notice: "The email finder did not return a valid address."}, nil
	}

	contact.Email = &email
	if err := e.contacts.Update(ctx, contact); err != nil {
		return Result{}, fmt.Errorf("save contact email: %w", err)
	}
	return Result{Content: email, Source: SourceWebhook, Data: contact}, nil
}

// EnrichContact merges a LinkedIn profile returned by the webhook into the contact.
func (e *Enricher) EnrichContact(ctx context.Context, contactID uuid.UUID) (Result, error) {
	contact, company, err := e.loadContact(ctx, contactID)
	if err != nil {
		return Result{}, err
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	outcome := e.callWebhook(ctx, settings, entity.WebhookLinkedInEnrichment, contactPayload(contact, company))
	if !outcome.ok() {
		metrics.ObserveFallback("enrich_contact", string(SourceDemo))
		return Result{Source: SourceDemo, Fallback: true, Notice: outcome.notice + " The contact was not changed.", Data: contact}, nil
	}

	profile, ok := webhook.ExtractObject(outcome.body)
	if !ok {
		// Plain text answers still count as a profile summary.
		if contact.Bio == nil {
			contact.Bio = strPtr(outcome.content)
		}
	} else {
		e.mergeProfile(ctx, contact, profile)
	}

	now := e.now().UTC()
	contact.EnrichedAt = &now
	if err := e.contacts.Update(ctx, contact); err != nil {
		return Result{}, fmt.Errorf("save enriched contact: %w", err)
	}
	return Result{Content: profileSummary(contact), Source: SourceWebhook, Data: contact}, nil
}

// ResearchProfile generates a research brief on the contact and stores it on the record.
func (e *Enricher) ResearchProfile(ctx context.Context, contactID uuid.UUID) (Result, error) {
	contact, company, err := e.loadContact(ctx, contactID)
	if err != nil {
		return Result{}, err
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	contextText := "Contact: " + contact.Name()
	if title := entity.Value(contact.Title); title != "" {
		contextText += "\nTitle: " + title
	}
	if company != nil {
		contextText += "\n" + companyContext(company)
	}

	res := e.generateText(ctx, settings, textRequest{
		operation:   "profile_research",
		kind:        entity.WebhookProfileResearch,
		payload:     contactPayload(contact, company),
		instruction: "Write a short research brief on this person for a sales rep: role, likely priorities and talking points.",
		context:     contextText,
		demo:        func() string { return demoProfileResearch(contact, company) },
	})

	contact.ProfileResearch = &res.Content
	if err := e.contacts.Update(ctx, contact); err != nil {
		return Result{}, fmt.Errorf("save profile research: %w", err)
	}
	return res, nil
}

func (e *Enricher) loadContact(ctx context.Context, contactID uuid.UUID) (*entity.Contact, *entity.Company, error) {
	contact, err := e.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, nil, err
	}
	company, err := e.companies.Get(ctx, contact.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	return contact, company, nil
}

func (e *Enricher) mergeProfile(ctx context.Context, contact *entity.Contact, profile gjson.Result) {
	fill := func(dst **string, paths ...string) {
		if v := firstString(profile, paths...); v != "" {
			*dst = &v
		}
	}
	fill(&contact.Bio, "bio", "summary", "about")
	fill(&contact.Title, "title", "headline", "occupation", "job_title")
	fill(&contact.Location, "location", "addressWithCountry", "geo.full")
	fill(&contact.LinkedInURL, "linkedin_url", "linkedinUrl", "profileUrl", "url")

	if contact.Email == nil {
		var candidates []string
		for _, path := range []string{"email", "emails", "contact.email"} {
			for _, v := range profile.Get(path).Array() {
				candidates = append(candidates, v.String())
			}
		}
		if email := e.cleaner.FirstEmail(ctx, candidates...); email != "" {
			contact.Email = &email
		}
	}

	if phone := e.cleaner.NormalizePhone(firstString(profile, "phone", "phone_number", "phoneNumbers.0")); phone != "" {
		contact.Phone = &phone
	}

	if skills := stringList(profile.Get("skills")); len(skills) > 0 {
		contact.Skills = skills
	}
	setRaw := func(dst *json.RawMessage, paths ...string) {
		for _, path := range paths {
			if v := profile.Get(path); v.IsArray() && len(v.Array()) > 0 {
				*dst = json.RawMessage(v.Raw)
				return
			}
		}
	}
	setRaw(&contact.Education, "education", "educations")
	setRaw(&contact.Experience, "experience", "experiences", "positions")
	setRaw(&contact.Posts, "posts", "activity", "updates")
}

// stringList accepts ["a","b"] or [{"name":"a"}] forms.
func stringList(value gjson.Result) []string {
	if !value.IsArray() {
		return nil
	}
	var out []string
	for _, item := range value.Array() {
		var s string
		if item.IsObject() {
			s = firstString(item, "name", "title", "skill")
		} else {
			s = strings.TrimSpace(item.String())
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstString(value gjson.Result, paths ...string) string {
	for _, path := range paths {
		v := value.Get(path)
		if v.Type == gjson.String || v.Type == gjson.Number {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func profileSummary(c *entity.Contact) string {
	var filled []string
	if c.Bio != nil {
		filled = append(filled, "bio")
	}
	if c.Title != nil {
		filled = append(filled, "title")
	}
	if c.Location != nil {
		filled = append(filled, "location")
	}
	if len(c.Skills) > 0 {
		filled = append(filled, fmt.Sprintf("%d skills", len(c.Skills)))
	}
	if len(c.Experience) > 0 {
		filled = append(filled, "experience")
	}
	if len(c.Education) > 0 {
		filled = append(filled, "education")
	}
	if len(filled) == 0 {
		return "Profile enriched for " + c.Name()
	}
	return "Profile enriched for " + c.Name() + ": " + strings.Join(filled, ", ")
}

var _ service.EnrichmentScheduler = (*Enricher)(nil)
