package enrichment

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/metrics"
	"github.com/octobees/leadgenius/api/internal/service"
	"github.com/octobees/leadgenius/api/internal/service/scoring"
	"github.com/octobees/leadgenius/api/internal/webhook"
)

// insightWebhooks maps generated insight kinds to their webhook.
var insightWebhooks = map[entity.InsightKind]entity.WebhookKind{
	entity.InsightAwards:            entity.WebhookAwards,
	entity.InsightJobPostings:       entity.WebhookJobPostings,
	entity.InsightContentAudit:      entity.WebhookContentAudit,
	entity.InsightAdStatus:          entity.WebhookAdStatus,
	entity.InsightSuggestedApproach: entity.WebhookSuggestedApproach,
	entity.InsightTechStack:         entity.WebhookTechStack,
}

var insightInstructions = map[entity.InsightKind]string{
	entity.InsightAwards:            "List notable awards, certifications and recognition this company has received.",
	entity.InsightJobPostings:       "Summarise what roles this company is likely hiring for and what that says about its growth.",
	entity.InsightContentAudit:      "Audit this company's likely web and social content and suggest three improvements.",
	entity.InsightAdStatus:          "Assess whether this company appears to run paid advertising and on which channels.",
	entity.InsightSuggestedApproach: "Suggest the best sales approach for this company in a short paragraph.",
	entity.InsightTechStack:         "List the technologies this company likely uses on its website and in operations.",
}

var scorePattern = regexp.MustCompile(`(?i)score[^0-9]{0,12}(\d{1,3})`)

// EnrichCompany merges firmographic data returned by the webhook into the company.
func (e *Enricher) EnrichCompany(ctx context.Context, companyID uuid.UUID) (Result, error) {
	company, err := e.companies.Get(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	outcome := e.callWebhook(ctx, settings, entity.WebhookCompanyEnrichment, companyPayload(company))
	if !outcome.ok() {
		metrics.ObserveFallback("enrich_company", string(SourceDemo))
		return Result{Source: SourceDemo, Fallback: true, Notice: outcome.notice + " The company was not changed.", Data: company}, nil
	}

	data, ok := webhook.ExtractObject(outcome.body)
	if !ok {
		if company.Description == nil {
			company.Description = strPtr(outcome.content)
		}
	} else {
		e.mergeCompany(ctx, company, data)
	}

	if err := e.companies.Update(ctx, company); err != nil {
		return Result{}, fmt.Errorf("save enriched company: %w", err)
	}
	return Result{Content: "Company enriched: " + company.Name, Source: SourceWebhook, Data: company}, nil
}

// ResearchCompany generates a research brief and stores it as the research insight.
func (e *Enricher) ResearchCompany(ctx context.Context, companyID uuid.UUID) (Result, error) {
	company, err := e.companies.Get(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	res := e.generateText(ctx, settings, textRequest{
		operation:   "company_research",
		kind:        entity.WebhookCompanyResearch,
		payload:     companyPayload(company),
		instruction: "Write a concise research brief on this company for a sales rep: what they do, market, likely needs.",
		context:     companyContext(company),
		demo:        func() string { return demoCompanyResearch(company) },
	})
	if err := e.saveInsight(ctx, company, entity.InsightResearch, res, nil); err != nil {
		return Result{}, err
	}
	return res, nil
}

// GenerateInsight produces one insight kind for the company.
func (e *Enricher) GenerateInsight(ctx context.Context, companyID uuid.UUID, kind entity.InsightKind) (Result, error) {
	switch kind {
	case entity.InsightResearch:
		return e.ResearchCompany(ctx, companyID)
	case entity.InsightIdealClient:
		return e.AnalyzeIdealClient(ctx, companyID)
	}
	hook, ok := insightWebhooks[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", entity.ErrUnknownInsightKind, kind)
	}

	company, err := e.companies.Get(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	res := e.generateText(ctx, settings, textRequest{
		operation:   string(kind),
		kind:        hook,
		payload:     companyPayload(company),
		instruction: insightInstructions[kind],
		context:     companyContext(company),
		demo:        func() string { return demoInsight(kind, company) },
	})
	if err := e.saveInsight(ctx, company, kind, res, nil); err != nil {
		return Result{}, err
	}
	return res, nil
}

// AnalyzeIdealClient asks the ideal customer webhook whether the company fits.
// Without a webhook answer the fit is scored locally from the stored fields.
func (e *Enricher) AnalyzeIdealClient(ctx context.Context, companyID uuid.UUID) (Result, error) {
	company, err := e.companies.Get(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	var (
		res     Result
		insight entity.IdealClientInsight
	)
	outcome := e.callWebhook(ctx, settings, entity.WebhookIdealCustomer, companyPayload(company))
	if outcome.ok() {
		insight = parseIdealClient(outcome.body, outcome.content)
		res = Result{Content: insight.Reasoning, Source: SourceWebhook}
	} else {
		contacts, err := e.contacts.List(ctx, dto.ContactFilter{CompanyID: &company.ID})
		if err != nil {
			return Result{}, fmt.Errorf("count contacts: %w", err)
		}
		fit := scoring.ComputeFit(*company, len(contacts))
		insight = entity.IdealClientInsight{IsIdeal: fit.IsIdeal, Score: fit.Score, Reasoning: fit.Reasoning}
		metrics.ObserveFallback("ideal_client", string(SourceLocal))
		res = Result{
			Content:  fit.Reasoning,
			Source:   SourceLocal,
			Fallback: true,
			Notice:   outcome.notice + " Scored locally from the company profile.",
		}
	}

	data := map[string]any{"is_ideal": insight.IsIdeal, "score": insight.Score, "reasoning": insight.Reasoning}
	res.Data = data
	if err := e.saveInsight(ctx, company, entity.InsightIdealClient, res, data); err != nil {
		return Result{}, err
	}
	return res, nil
}

func parseIdealClient(body []byte, content string) entity.IdealClientInsight {
	insight := entity.IdealClientInsight{Reasoning: content}
	explicit := false
	if obj, ok := webhook.ExtractObject(body); ok {
		for _, path := range []string{"is_ideal", "isIdeal", "ideal", "is_ideal_client"} {
			if v := obj.Get(path); v.Exists() {
				insight.IsIdeal = v.Bool()
				explicit = true
				break
			}
		}
		for _, path := range []string{"score", "fit_score", "fitScore"} {
			if v := obj.Get(path); v.Exists() {
				insight.Score = clampScore(int(v.Int()))
				break
			}
		}
		if reason := firstString(obj, "reasoning", "reason", "analysis", "explanation"); reason != "" {
			insight.Reasoning = reason
		}
	}
	if explicit {
		return insight
	}

	if insight.Score == 0 {
		if m := scorePattern.FindStringSubmatch(content); m != nil {
			n, _ := strconv.Atoi(m[1])
			insight.Score = clampScore(n)
		}
	}
	lower := strings.ToLower(content)
	insight.IsIdeal = insight.Score >= scoring.IdealThreshold ||
		(strings.Contains(lower, "ideal") && !strings.Contains(lower, "not ideal") && !strings.Contains(lower, "not an ideal"))
	return insight
}

func clampScore(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}

func (e *Enricher) mergeCompany(ctx context.Context, company *entity.Company, data gjson.Result) {
	fill := func(dst **string, paths ...string) {
		if v := firstString(data, paths...); v != "" {
			*dst = &v
		}
	}
	fill(&company.Industry, "industry", "category", "categoryName")
	fill(&company.Size, "size", "employees", "estimated_num_employees", "employee_count")
	fill(&company.Description, "description", "short_description", "summary", "about")
	fill(&company.Street, "street", "address.street", "street_address")
	fill(&company.City, "city", "address.city")
	fill(&company.State, "state", "address.state")
	fill(&company.Zip, "zip", "postal_code", "postalCode", "address.postal_code")
	fill(&company.Country, "country", "address.country")

	raw := service.RawEnrichedData{
		Emails:      collect(data, "email", "emails", "contact_email"),
		Phones:      collect(data, "phone", "phones", "phone_number", "phoneNumbers"),
		Addresses:   collect(data, "formatted_address", "address", "full_address"),
		Website:     firstString(data, "website", "website_url", "domain", "url"),
		SocialLinks: map[string][]string{},
	}
	for _, platform := range []string{"linkedin", "facebook", "instagram", "twitter"} {
		links := collect(data, platform, platform+"_url", "socials."+platform, "social_links."+platform)
		if len(links) > 0 {
			raw.SocialLinks[platform] = links
		}
	}
	cleaned := e.cleaner.Process(ctx, raw)

	if len(cleaned.Emails) > 0 {
		company.Email = &cleaned.Emails[0]
	}
	if len(cleaned.Phones) > 0 {
		company.Phone = &cleaned.Phones[0]
	}
	if cleaned.Website != "" {
		company.Website = &cleaned.Website
	}
	if cleaned.Address != "" && company.Location == nil {
		company.Location = &cleaned.Address
	}
	setLink := func(dst **string, value string) {
		if value != "" {
			*dst = &value
		}
	}
	setLink(&company.LinkedInURL, cleaned.Socials.LinkedIn)
	setLink(&company.FacebookURL, cleaned.Socials.Facebook)
	setLink(&company.InstagramURL, cleaned.Socials.Instagram)
	setLink(&company.TwitterURL, cleaned.Socials.Twitter)
}

// collect gathers string values at the paths, flattening arrays.
func collect(data gjson.Result, paths ...string) []string {
	var out []string
	for _, path := range paths {
		for _, v := range data.Get(path).Array() {
			if v.Type == gjson.String || v.Type == gjson.Number {
				if s := strings.TrimSpace(v.String()); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
