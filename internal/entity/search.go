package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SearchResultType tags a normalised lead.
type SearchResultType string

const (
	SearchResultPerson  SearchResultType = "person"
	SearchResultCompany SearchResultType = "company"
)

// SearchResult is a normalised scraped lead, pending conversion into a company or contact.
type SearchResult struct {
	ID             string           `json:"id"`
	Type           SearchResultType `json:"type"`
	Name           string           `json:"name"`
	FirstName      string           `json:"first_name,omitempty"`
	LastName       string           `json:"last_name,omitempty"`
	Title          string           `json:"title,omitempty"`
	Email          string           `json:"email,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	LinkedInURL    string           `json:"linkedin_url,omitempty"`
	Company        string           `json:"company,omitempty"`
	CompanyWebsite string           `json:"company_website,omitempty"`
	Industry       string           `json:"industry,omitempty"`
	Location       string           `json:"location,omitempty"`
	City           string           `json:"city,omitempty"`
	State          string           `json:"state,omitempty"`
	Country        string           `json:"country,omitempty"`
	Employees      string           `json:"employees,omitempty"`
	RawData        json.RawMessage  `json:"raw_data,omitempty"`
}

// SearchStatus is the lifecycle state of a lead search.
type SearchStatus string

const (
	SearchRunning   SearchStatus = "running"
	SearchSucceeded SearchStatus = "succeeded"
	SearchFailed    SearchStatus = "failed"
)

// SearchHistory records one lead search run.
type SearchHistory struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Query       string       `json:"query" db:"query"`
	Source      string       `json:"source" db:"source"`
	RunID       *string      `json:"run_id,omitempty" db:"run_id"`
	Status      SearchStatus `json:"status" db:"status"`
	ResultCount int          `json:"result_count" db:"result_count"`
	Error       *string      `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
