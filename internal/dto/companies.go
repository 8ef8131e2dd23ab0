package dto

// ListFilter contains query parameters for company listing endpoints.
type ListFilter struct {
	Q        string
	Industry string
	City     string
	Ideal    *bool
	Sort     string
	Pagination
}

// CompanyRequest is the create/update payload for a company. Nil fields are left untouched on update.
type CompanyRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Industry     *string `json:"industry" validate:"omitempty,max=120"`
	Size         *string `json:"size" validate:"omitempty,max=60"`
	Location     *string `json:"location" validate:"omitempty,max=200"`
	Street       *string `json:"street" validate:"omitempty,max=200"`
	City         *string `json:"city" validate:"omitempty,max=120"`
	State        *string `json:"state" validate:"omitempty,max=120"`
	Zip          *string `json:"zip" validate:"omitempty,max=20"`
	Country      *string `json:"country" validate:"omitempty,max=120"`
	Website      *string `json:"website" validate:"omitempty,max=300"`
	Phone        *string `json:"phone" validate:"omitempty,max=40"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	LinkedInURL  *string `json:"linkedin_url" validate:"omitempty,url"`
	FacebookURL  *string `json:"facebook_url" validate:"omitempty,url"`
	TwitterURL   *string `json:"twitter_url" validate:"omitempty,url"`
	InstagramURL *string `json:"instagram_url" validate:"omitempty,url"`
}
