package entity

import "time"

// DefaultSettingsID is the primary key of the singleton settings row.
const DefaultSettingsID = "default"

// WebhookKind names a configurable enrichment endpoint.
type WebhookKind string

const (
	WebhookEmailFinder        WebhookKind = "email_finder"
	WebhookLinkedInEnrichment WebhookKind = "linkedin_enrichment"
	WebhookCompanyEnrichment  WebhookKind = "company_enrichment"
	WebhookProfileResearch    WebhookKind = "profile_research"
	WebhookCompanyResearch    WebhookKind = "company_research"
	WebhookIdealCustomer      WebhookKind = "ideal_customer"
	WebhookAwards             WebhookKind = "awards"
	WebhookJobPostings        WebhookKind = "job_postings"
	WebhookContentAudit       WebhookKind = "content_audit"
	WebhookOutreachScripts    WebhookKind = "outreach_scripts"
	WebhookTechStack          WebhookKind = "tech_stack"
	WebhookAdStatus           WebhookKind = "ad_status"
	WebhookSuggestedApproach  WebhookKind = "suggested_approach"
)

// WebhookKinds lists every configurable endpoint.
var WebhookKinds = []WebhookKind{
	WebhookEmailFinder,
	WebhookLinkedInEnrichment,
	WebhookCompanyEnrichment,
	WebhookProfileResearch,
	WebhookCompanyResearch,
	WebhookIdealCustomer,
	WebhookAwards,
	WebhookJobPostings,
	WebhookContentAudit,
	WebhookOutreachScripts,
	WebhookTechStack,
	WebhookAdStatus,
	WebhookSuggestedApproach,
}

// AppSettings holds API keys and webhook URLs.
type AppSettings struct {
	ID           string                 `json:"id"`
	ApifyAPIKey  string                 `json:"apify_api_key"`
	ApolloAPIKey string                 `json:"apollo_api_key"`
	OpenAIAPIKey string                 `json:"openai_api_key"`
	ApifyActorID string                 `json:"apify_actor_id"`
	Webhooks     map[WebhookKind]string `json:"webhooks"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// WebhookURL returns the configured endpoint for a kind.
func (s AppSettings) WebhookURL(kind WebhookKind) string {
	if s.Webhooks == nil {
		return ""
	}
	return s.Webhooks[kind]
}

// Masked returns a copy safe to send to clients.
func (s AppSettings) Masked() AppSettings {
	out := s
	out.ApifyAPIKey = mask(s.ApifyAPIKey)
	out.ApolloAPIKey = mask(s.ApolloAPIKey)
	out.OpenAIAPIKey = mask(s.OpenAIAPIKey)
	return out
}

func mask(secret string) string {
	if len(secret) <= 4 {
		if secret == "" {
			return ""
		}
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
