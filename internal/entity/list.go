package entity

import (
	"time"

	"github.com/google/uuid"
)

// List is a named collection of companies.
type List struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	CompanyCount int       `json:"company_count" db:"company_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
