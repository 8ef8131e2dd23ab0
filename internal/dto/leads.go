package dto

import (
	"encoding/json"

	"github.com/octobees/leadgenius/api/internal/entity"
)

// LeadSearchRequest starts a lead search. Either Prompt or Query is required;
// Input, when set, is sent to the scraper actor verbatim.
type LeadSearchRequest struct {
	Prompt   string         `json:"prompt" validate:"max=500"`
	Query    string         `json:"query" validate:"max=200"`
	Location string         `json:"location" validate:"max=200"`
	Limit    int            `json:"limit" validate:"omitempty,min=1,max=500"`
	Input    map[string]any `json:"input"`
}

// LeadSearchResponse is returned once a search has finished.
type LeadSearchResponse struct {
	SearchID string                `json:"search_id"`
	RunID    string                `json:"run_id,omitempty"`
	Results  []entity.SearchResult `json:"results"`
}

// TransformRequest carries raw scraper output to normalise without persisting.
type TransformRequest struct {
	Records json.RawMessage `json:"records" validate:"required"`
}

// ImportLeadsRequest saves selected search results.
type ImportLeadsRequest struct {
	Results []entity.SearchResult `json:"results" validate:"required,min=1,max=500"`
	Enrich  bool                  `json:"enrich"`
}

// ImportLeadsResponse summarises an import.
type ImportLeadsResponse struct {
	CompaniesCreated int      `json:"companies_created"`
	CompaniesMatched int      `json:"companies_matched"`
	ContactsCreated  int      `json:"contacts_created"`
	Skipped          int      `json:"skipped"`
	Errors           []string `json:"errors,omitempty"`
}
