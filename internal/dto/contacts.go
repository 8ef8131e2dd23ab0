package dto

import "github.com/google/uuid"

// ContactFilter contains query parameters for contact listing.
type ContactFilter struct {
	Q         string
	CompanyID *uuid.UUID
	Pagination
}

// ContactRequest is the create/update payload for a contact. On create either
// CompanyID or CompanyName must resolve to a company.
type ContactRequest struct {
	CompanyID   *string `json:"company_id" validate:"omitempty,uuid"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=120"`
	LastName    *string `json:"last_name" validate:"omitempty,max=120"`
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	LinkedInURL *string `json:"linkedin_url" validate:"omitempty,url"`
	Notes       *string `json:"notes" validate:"omitempty,max=5000"`
}
