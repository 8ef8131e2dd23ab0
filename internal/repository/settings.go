package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leadgenius/api/internal/entity"
)

// ErrSettingsNotFound indicates the singleton settings row is missing.
var ErrSettingsNotFound = errors.New("settings not found")

// SettingsRepository reads and writes the singleton settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (entity.AppSettings, error)
	Save(ctx context.Context, settings *entity.AppSettings) error
}

// PGXSettingsRepository implements SettingsRepository using pgx.
type PGXSettingsRepository struct {
	pool pgxPool
}

// NewPGXSettingsRepository wires a pgx backed repository.
func NewPGXSettingsRepository(pool *pgxpool.Pool) *PGXSettingsRepository {
	return &PGXSettingsRepository{pool: pool}
}

// Get loads the settings row.
func (r *PGXSettingsRepository) Get(ctx context.Context) (entity.AppSettings, error) {
	var (
		settings entity.AppSettings
		webhooks []byte
	)
	query := `
        SELECT id, apify_api_key, apollo_api_key, openai_api_key, apify_actor_id, webhooks, updated_at
        FROM app_settings WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, entity.DefaultSettingsID).Scan(
		&settings.ID,
		&settings.ApifyAPIKey,
		&settings.ApolloAPIKey,
		&settings.OpenAIAPIKey,
		&settings.ApifyActorID,
		&webhooks,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.AppSettings{}, ErrSettingsNotFound
		}
		return entity.AppSettings{}, fmt.Errorf("fetch settings: %w", err)
	}

	settings.Webhooks = map[entity.WebhookKind]string{}
	if len(webhooks) > 0 {
		if err := json.Unmarshal(webhooks, &settings.Webhooks); err != nil {
			return entity.AppSettings{}, fmt.Errorf("decode webhooks: %w", err)
		}
	}
	return settings, nil
}

// Save upserts the settings row.
func (r *PGXSettingsRepository) Save(ctx context.Context, settings *entity.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("settings payload is nil")
	}
	webhooks := settings.Webhooks
	if webhooks == nil {
		webhooks = map[entity.WebhookKind]string{}
	}
	payload, err := json.Marshal(webhooks)
	if err != nil {
		return fmt.Errorf("marshal webhooks: %w", err)
	}

	query := `
        INSERT INTO app_settings (id, apify_api_key, apollo_api_key, openai_api_key, apify_actor_id, webhooks, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6::jsonb, NOW())
        ON CONFLICT (id) DO UPDATE SET
            apify_api_key = EXCLUDED.apify_api_key,
            apollo_api_key = EXCLUDED.apollo_api_key,
            openai_api_key = EXCLUDED.openai_api_key,
            apify_actor_id = EXCLUDED.apify_actor_id,
            webhooks = EXCLUDED.webhooks,
            updated_at = NOW()
        RETURNING updated_at`
	err = r.pool.QueryRow(ctx, query,
		entity.DefaultSettingsID,
		settings.ApifyAPIKey,
		settings.ApolloAPIKey,
		settings.OpenAIAPIKey,
		settings.ApifyActorID,
		string(payload),
	).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	settings.ID = entity.DefaultSettingsID
	return nil
}
