package dto

// CreateListRequest is the payload for creating a company list.
type CreateListRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=1000"`
}
