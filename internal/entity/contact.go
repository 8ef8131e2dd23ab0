package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is a person attached to a company.
type Contact struct {
	ID              uuid.UUID       `json:"id"`
	CompanyID       uuid.UUID       `json:"company_id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Title           *string         `json:"title,omitempty"`
	Email           *string         `json:"email,omitempty"`
	Phone           *string         `json:"phone,omitempty"`
	LinkedInURL     *string         `json:"linkedin_url,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	ProfileResearch *string         `json:"profile_research,omitempty"`
	Bio             *string         `json:"bio,omitempty"`
	Location        *string         `json:"location,omitempty"`
	Skills          []string        `json:"skills"`
	Education       json.RawMessage `json:"education"`
	Experience      json.RawMessage `json:"experience"`
	Posts           json.RawMessage `json:"posts"`
	EnrichedAt      *time.Time      `json:"enriched_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Name joins first and last name.
func (c Contact) Name() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// SplitName breaks a full name into first and last parts.
func SplitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
