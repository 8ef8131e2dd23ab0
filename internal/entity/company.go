package entity

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a prospect organisation stored in the CRM.
type Company struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Industry       *string         `json:"industry,omitempty"`
	Size           *string         `json:"size,omitempty"`
	Location       *string         `json:"location,omitempty"`
	Street         *string         `json:"street,omitempty"`
	City           *string         `json:"city,omitempty"`
	State          *string         `json:"state,omitempty"`
	Zip            *string         `json:"zip,omitempty"`
	Country        *string         `json:"country,omitempty"`
	Website        *string         `json:"website,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Description    *string         `json:"description,omitempty"`
	LinkedInURL    *string         `json:"linkedin_url,omitempty"`
	FacebookURL    *string         `json:"facebook_url,omitempty"`
	TwitterURL     *string         `json:"twitter_url,omitempty"`
	InstagramURL   *string         `json:"instagram_url,omitempty"`
	CallScript     *string         `json:"call_script,omitempty"`
	EmailScript    *string         `json:"email_script,omitempty"`
	TextScript     *string         `json:"text_script,omitempty"`
	SocialDMScript *string         `json:"social_dm_script,omitempty"`
	Insights       CompanyInsights `json:"insights"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OutreachScripts groups the free-text scripts generated for a company.
type OutreachScripts struct {
	Call     string `json:"call_script"`
	Email    string `json:"email_script"`
	Text     string `json:"text_script"`
	SocialDM string `json:"social_dm_script"`
}

// Empty reports whether no script was produced.
func (s OutreachScripts) Empty() bool {
	return s.Call == "" && s.Email == "" && s.Text == "" && s.SocialDM == ""
}

// ApplyScripts copies the non-empty scripts onto the company.
func (c *Company) ApplyScripts(scripts OutreachScripts) {
	if scripts.Call != "" {
		c.CallScript = &scripts.Call
	}
	if scripts.Email != "" {
		c.EmailScript = &scripts.Email
	}
	if scripts.Text != "" {
		c.TextScript = &scripts.Text
	}
	if scripts.SocialDM != "" {
		c.SocialDMScript = &scripts.SocialDM
	}
}

// Value dereferences an optional string field.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
