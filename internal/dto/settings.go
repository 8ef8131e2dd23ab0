package dto

// UpdateSettingsRequest is a partial update of the settings row. Webhook URLs
// are merged by kind; an empty string clears a webhook.
type UpdateSettingsRequest struct {
	ApifyAPIKey  *string           `json:"apify_api_key" validate:"omitempty,max=200"`
	ApolloAPIKey *string           `json:"apollo_api_key" validate:"omitempty,max=200"`
	OpenAIAPIKey *string           `json:"openai_api_key" validate:"omitempty,max=200"`
	ApifyActorID *string           `json:"apify_actor_id" validate:"omitempty,max=200"`
	Webhooks     map[string]string `json:"webhooks" validate:"omitempty,dive,omitempty,url"`
}
