package dto

// PromptSearchRequest represents a free-form lead search prompt.
type PromptSearchRequest struct {
	Prompt   string `json:"prompt"`
	Location string `json:"location,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// PromptSearchResponse echoes the interpreted parameters from the prompt.
type PromptSearchResponse struct {
	Prompt   string `json:"prompt"`
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
}
