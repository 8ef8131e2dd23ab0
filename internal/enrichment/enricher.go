package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/llm"
	"github.com/octobees/leadgenius/api/internal/metrics"
	"github.com/octobees/leadgenius/api/internal/repository"
	"github.com/octobees/leadgenius/api/internal/service"
	"github.com/octobees/leadgenius/api/internal/webhook"
)

// Source names where a result's content came from.
type Source string

const (
	SourceWebhook Source = "webhook"
	SourceLLM     Source = "llm"
	SourceLocal   Source = "local"
	SourceDemo    Source = "demo"
)

// ErrSchedulerUnavailable is returned when background enrichment is not wired.
var ErrSchedulerUnavailable = errors.New("enrichment scheduler not configured")

// ErrContactNotInCompany is returned when outreach targets a contact of another company.
var ErrContactNotInCompany = errors.New("contact does not belong to company")

// Result is returned by every enrichment operation. Fallback is set whenever
// the configured webhook did not produce the content; Notice explains why.
type Result struct {
	Content  string `json:"content"`
	Source   Source `json:"source"`
	Fallback bool   `json:"fallback"`
	Notice   string `json:"notice,omitempty"`
	Data     any    `json:"data,omitempty"`

	// raw is the webhook body the content was extracted from.
	raw []byte
}

// SettingsReader loads the current settings.
type SettingsReader interface {
	Get(ctx context.Context) (entity.AppSettings, error)
}

// WebhookCaller performs one logical webhook call.
type WebhookCaller interface {
	Call(ctx context.Context, req webhook.Request) (webhook.Response, error)
}

// TextGenerator produces text when no webhook answered.
type TextGenerator interface {
	Generate(ctx context.Context, p llm.Prompt) (string, error)
}

// Enricher orchestrates webhook enrichment for companies and contacts.
type Enricher struct {
	settings  SettingsReader
	caller    WebhookCaller
	generator TextGenerator
	companies repository.CompaniesRepository
	contacts  repository.ContactsRepository
	insights  repository.InsightsRepository
	cleaner   *service.DataProcessor
	scheduler service.EnrichmentScheduler
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises an Enricher.
type Option func(*Enricher)

// WithGenerator enables the OpenAI fallback.
func WithGenerator(g TextGenerator) Option {
	return func(e *Enricher) {
		e.generator = g
	}
}

// WithScheduler enables delayed background enrichment.
func WithScheduler(s service.EnrichmentScheduler) Option {
	return func(e *Enricher) {
		e.scheduler = s
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) {
		e.now = now
	}
}

// NewEnricher wires an Enricher.
func NewEnricher(
	settings SettingsReader,
	caller WebhookCaller,
	companies repository.CompaniesRepository,
	contacts repository.ContactsRepository,
	insights repository.InsightsRepository,
	cleaner *service.DataProcessor,
	opts ...Option,
) *Enricher {
	if cleaner == nil {
		cleaner = service.NewDataProcessor("")
	}
	e := &Enricher{
		settings:  settings,
		caller:    caller,
		companies: companies,
		contacts:  contacts,
		insights:  insights,
		cleaner:   cleaner,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScheduleContactEnrichment queues a delayed enrichment of the contact.
func (e *Enricher) ScheduleContactEnrichment(ctx context.Context, contactID uuid.UUID) error {
	if e.scheduler == nil {
		return ErrSchedulerUnavailable
	}
	if _, err := e.contacts.Get(ctx, contactID); err != nil {
		return err
	}
	return e.scheduler.ScheduleContactEnrichment(ctx, contactID)
}

// webhookOutcome is the raw result of calling the webhook for a kind.
type webhookOutcome struct {
	body    []byte
	content string
	notice  string
}

func (o webhookOutcome) ok() bool { return o.notice == "" }

// callWebhook calls the webhook configured for kind and extracts its text content.
// A missing URL, an exhausted call or an empty answer is reported via notice.
func (e *Enricher) callWebhook(ctx context.Context, settings entity.AppSettings, kind entity.WebhookKind, payload map[string]any) webhookOutcome {
	url := settings.WebhookURL(kind)
	if strings.TrimSpace(url) == "" {
		return webhookOutcome{notice: fmt.Sprintf("No %s webhook is configured.", humanize(string(kind)))}
	}

	resp, err := e.caller.Call(ctx, webhook.Request{Kind: string(kind), URL: url, Payload: payload})
	if err != nil {
		e.logger.Warn("webhook call failed",
			slog.String("kind", string(kind)),
			slog.String("url", url),
			slog.Int("attempt", resp.Attempts),
			slog.String("error", err.Error()),
		)
		return webhookOutcome{notice: fmt.Sprintf("The %s webhook did not respond.", humanize(string(kind)))}
	}

	content, err := webhook.ExtractContent(resp.Body)
	if err != nil || strings.TrimSpace(content) == "" {
		return webhookOutcome{body: resp.Body, notice: fmt.Sprintf("The %s webhook returned an empty answer.", humanize(string(kind)))}
	}
	return webhookOutcome{body: resp.Body, content: strings.TrimSpace(content)}
}

// textRequest describes a text generator with its fallbacks.
type textRequest struct {
	operation   string
	kind        entity.WebhookKind
	payload     map[string]any
	instruction string
	context     string
	demo        func() string
}

// generateText runs webhook, then OpenAI, then demo content.
func (e *Enricher) generateText(ctx context.Context, settings entity.AppSettings, req textRequest) Result {
	outcome := e.callWebhook(ctx, settings, req.kind, req.payload)
	if outcome.ok() {
		return Result{Content: outcome.content, Source: SourceWebhook, raw: outcome.body}
	}

	if e.generator != nil && strings.TrimSpace(settings.OpenAIAPIKey) != "" {
		text, err := e.generator.Generate(ctx, llm.Prompt{
			APIKey:      settings.OpenAIAPIKey,
			Instruction: req.instruction,
			Context:     req.context,
		})
		if err == nil && strings.TrimSpace(text) != "" {
			metrics.ObserveFallback(req.operation, string(SourceLLM))
			return Result{
				Content:  strings.TrimSpace(text),
				Source:   SourceLLM,
				Fallback: true,
				Notice:   outcome.notice + " Generated with OpenAI instead.",
			}
		}
		if err != nil {
			e.logger.Warn("openai fallback failed",
				slog.String("operation", req.operation),
				slog.String("error", err.Error()))
		}
	}

	metrics.ObserveFallback(req.operation, string(SourceDemo))
	return Result{
		Content:  req.demo(),
		Source:   SourceDemo,
		Fallback: true,
		Notice:   outcome.notice + " Showing sample content.",
	}
}

// saveInsight appends the insight to the history and updates the company's typed insights.
func (e *Enricher) saveInsight(ctx context.Context, company *entity.Company, kind entity.InsightKind, res Result, data any) error {
	insight := entity.Insight{
		CompanyID:   company.ID,
		Kind:        kind,
		Content:     res.Content,
		Source:      string(res.Source),
		Fallback:    res.Fallback,
		GeneratedAt: e.now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode insight data: %w", err)
		}
		insight.Data = raw
	}

	if err := company.Insights.Set(insight); err != nil {
		return err
	}
	if err := e.insights.Append(ctx, &insight); err != nil {
		return fmt.Errorf("append insight: %w", err)
	}
	if err := e.companies.UpdateInsights(ctx, company.ID, company.Insights); err != nil {
		return fmt.Errorf("update company insights: %w", err)
	}
	return nil
}

func (e *Enricher) loadSettings(ctx context.Context) (entity.AppSettings, error) {
	settings, err := e.settings.Get(ctx)
	if err != nil {
		return entity.AppSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func companyPayload(c *entity.Company) map[string]any {
	payload := map[string]any{
		"company_id":   c.ID.String(),
		"company_name": c.Name,
		"name":         c.Name,
	}
	optional := map[string]*string{
		"website":  c.Website,
		"industry": c.Industry,
		"city":     c.City,
		"state":    c.State,
		"country":  c.Country,
		"location": c.Location,
		"phone":    c.Phone,
		"linkedin": c.LinkedInURL,
	}
	for key, value := range optional {
		if v := strings.TrimSpace(entity.Value(value)); v != "" {
			payload[key] = v
		}
	}
	return payload
}

func contactPayload(ct *entity.Contact, company *entity.Company) map[string]any {
	payload := map[string]any{
		"contact_id": ct.ID.String(),
		"first_name": ct.FirstName,
		"last_name":  ct.LastName,
		"full_name":  ct.Name(),
	}
	if v := entity.Value(ct.LinkedInURL); v != "" {
		payload["linkedin_url"] = v
	}
	if v := entity.Value(ct.Title); v != "" {
		payload["title"] = v
	}
	if v := entity.Value(ct.Email); v != "" {
		payload["email"] = v
	}
	if company != nil {
		payload["company_name"] = company.Name
		if domain := domainOf(entity.Value(company.Website)); domain != "" {
			payload["domain"] = domain
		}
	}
	return payload
}

func companyContext(c *entity.Company) string {
	lines := []string{"Company: " + c.Name}
	add := func(label string, value *string) {
		if v := strings.TrimSpace(entity.Value(value)); v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Industry", c.Industry)
	add("Size", c.Size)
	add("Website", c.Website)
	add("Location", c.Location)
	add("City", c.City)
	add("Country", c.Country)
	add("Description", c.Description)
	return strings.Join(lines, "\n")
}

func domainOf(website string) string {
	website = strings.TrimSpace(strings.ToLower(website))
	website = strings.TrimPrefix(website, "https://")
	website = strings.TrimPrefix(website, "http://")
	website = strings.TrimPrefix(website, "www.")
	if i := strings.IndexAny(website, "/?#"); i >= 0 {
		website = website[:i]
	}
	return website
}

func humanize(kind string) string {
	return strings.ReplaceAll(kind, "_", " ")
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
