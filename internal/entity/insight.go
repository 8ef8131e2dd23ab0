package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsightKind discriminates the insight variants stored per company.
type InsightKind string

const (
	InsightAwards            InsightKind = "awards"
	InsightJobPostings       InsightKind = "job_postings"
	InsightContentAudit      InsightKind = "content_audit"
	InsightIdealClient       InsightKind = "ideal_client"
	InsightSuggestedApproach InsightKind = "suggested_approach"
	InsightAdStatus          InsightKind = "ad_status"
	InsightResearch          InsightKind = "research"
	InsightTechStack         InsightKind = "tech_stack"
)

// ErrUnknownInsightKind is returned for kinds outside the known set.
var ErrUnknownInsightKind = errors.New("unknown insight kind")

// InsightKinds lists every supported kind.
var InsightKinds = []InsightKind{
	InsightAwards,
	InsightJobPostings,
	InsightContentAudit,
	InsightIdealClient,
	InsightSuggestedApproach,
	InsightAdStatus,
	InsightResearch,
	InsightTechStack,
}

// ParseInsightKind validates a raw kind string.
func ParseInsightKind(raw string) (InsightKind, error) {
	for _, k := range InsightKinds {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInsightKind, raw)
}

// Insight is one generated piece of company intelligence.
type Insight struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CompanyID   uuid.UUID       `json:"company_id" db:"company_id"`
	Kind        InsightKind     `json:"kind" db:"kind"`
	Content     string          `json:"content" db:"content"`
	Data        json.RawMessage `json:"data,omitempty" db:"data"`
	Source      string          `json:"source" db:"source"`
	Fallback    bool            `json:"fallback" db:"fallback"`
	GeneratedAt time.Time       `json:"generated_at" db:"generated_at"`
}

// TextInsight is the payload of a free-text insight variant.
type TextInsight struct {
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	Fallback    bool      `json:"fallback,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// IdealClientInsight records the sales-fit judgement for a company.
type IdealClientInsight struct {
	IsIdeal     bool      `json:"is_ideal"`
	Score       int       `json:"score"`
	Reasoning   string    `json:"reasoning"`
	Source      string    `json:"source"`
	Fallback    bool      `json:"fallback,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// CompanyInsights is the typed replacement for the free-form insights blob.
type CompanyInsights struct {
	Awards            *TextInsight        `json:"awards,omitempty"`
	JobPostings       *TextInsight        `json:"job_postings,omitempty"`
	ContentAudit      *TextInsight        `json:"content_audit,omitempty"`
	IdealClient       *IdealClientInsight `json:"ideal_client,omitempty"`
	SuggestedApproach *TextInsight        `json:"suggested_approach,omitempty"`
	AdStatus          *TextInsight        `json:"ad_status,omitempty"`
	Research          *TextInsight        `json:"research,omitempty"`
	TechStack         *TextInsight        `json:"tech_stack,omitempty"`
}

// Set routes an insight into its typed slot.
func (ci *CompanyInsights) Set(in Insight) error {
	text := &TextInsight{Content: in.Content, Source: in.Source, Fallback: in.Fallback, GeneratedAt: in.GeneratedAt}
	switch in.Kind {
	case InsightAwards:
		ci.Awards = text
	case InsightJobPostings:
		ci.JobPostings = text
	case InsightContentAudit:
		ci.ContentAudit = text
	case InsightSuggestedApproach:
		ci.SuggestedApproach = text
	case InsightAdStatus:
		ci.AdStatus = text
	case InsightResearch:
		ci.Research = text
	case InsightTechStack:
		ci.TechStack = text
	case InsightIdealClient:
		ideal := IdealClientInsight{Reasoning: in.Content}
		if len(in.Data) > 0 {
			if err := json.Unmarshal(in.Data, &ideal); err != nil {
				return fmt.Errorf("decode ideal client data: %w", err)
			}
			if ideal.Reasoning == "" {
				ideal.Reasoning = in.Content
			}
		}
		ideal.Source = in.Source
		ideal.Fallback = in.Fallback
		ideal.GeneratedAt = in.GeneratedAt
		ci.IdealClient = &ideal
	default:
		return fmt.Errorf("%w: %q", ErrUnknownInsightKind, in.Kind)
	}
	return nil
}

// Text returns the content stored for a text kind, if any.
func (ci CompanyInsights) Text(kind InsightKind) string {
	var t *TextInsight
	switch kind {
	case InsightAwards:
		t = ci.Awards
	case InsightJobPostings:
		t = ci.JobPostings
	case InsightContentAudit:
		t = ci.ContentAudit
	case InsightSuggestedApproach:
		t = ci.SuggestedApproach
	case InsightAdStatus:
		t = ci.AdStatus
	case InsightResearch:
		t = ci.Research
	case InsightTechStack:
		t = ci.TechStack
	case InsightIdealClient:
		if ci.IdealClient != nil {
			return ci.IdealClient.Reasoning
		}
	}
	if t == nil {
		return ""
	}
	return t.Content
}
