package dto

// OutreachRequest selects the optional contact outreach scripts are addressed to.
type OutreachRequest struct {
	ContactID *string `json:"contact_id" validate:"omitempty,uuid"`
}

// RenderTemplateRequest selects the records a template is rendered for.
type RenderTemplateRequest struct {
	CompanyID  *string           `json:"company_id" validate:"omitempty,uuid"`
	ContactID  *string           `json:"contact_id" validate:"omitempty,uuid"`
	SenderName string            `json:"sender_name" validate:"max=120"`
	Variables  map[string]string `json:"variables"`
}
