package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
)

// SettingsCache is the read-through cache in front of the settings row. Set
// receives the generation Get reported so writes racing an Invalidate are lost.
type SettingsCache interface {
	Get(ctx context.Context) (entity.AppSettings, int64, bool)
	Set(ctx context.Context, generation int64, settings entity.AppSettings)
	Invalidate(ctx context.Context) error
}

// SettingsService reads and writes application settings. The database row is
// the only source of truth; the cache is dropped on every write.
type SettingsService struct {
	repo  repository.SettingsRepository
	cache SettingsCache
}

// NewSettingsService builds a SettingsService. A nil cache reads straight from the database.
func NewSettingsService(repo repository.SettingsRepository, cache SettingsCache) *SettingsService {
	return &SettingsService{repo: repo, cache: cache}
}

// Get returns the current settings. A missing row yields empty settings.
func (s *SettingsService) Get(ctx context.Context) (entity.AppSettings, error) {
	generation := int64(-1)
	if s.cache != nil {
		cached, gen, ok := s.cache.Get(ctx)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	settings, err := s.load(ctx)
	if err != nil {
		return entity.AppSettings{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, generation, settings)
	}
	return settings, nil
}

// Update merges the request into the stored row, saves it and invalidates the cache.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (entity.AppSettings, error) {
	webhooks := make(map[entity.WebhookKind]string, len(req.Webhooks))
	for raw, url := range req.Webhooks {
		kind, ok := parseWebhookKind(raw)
		if !ok {
			return entity.AppSettings{}, invalid("webhooks."+raw, "unknown webhook")
		}
		webhooks[kind] = strings.TrimSpace(url)
	}

	settings, err := s.load(ctx)
	if err != nil {
		return entity.AppSettings{}, err
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&settings.ApifyAPIKey, req.ApifyAPIKey)
	assign(&settings.ApolloAPIKey, req.ApolloAPIKey)
	assign(&settings.OpenAIAPIKey, req.OpenAIAPIKey)
	assign(&settings.ApifyActorID, req.ApifyActorID)
	for kind, url := range webhooks {
		if url == "" {
			delete(settings.Webhooks, kind)
			continue
		}
		settings.Webhooks[kind] = url
	}

	if err := s.repo.Save(ctx, &settings); err != nil {
		return entity.AppSettings{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			slog.Warn("settings cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	return settings, nil
}

func (s *SettingsService) load(ctx context.Context) (entity.AppSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrSettingsNotFound) {
			return entity.AppSettings{}, fmt.Errorf("load settings: %w", err)
		}
		settings = entity.AppSettings{ID: entity.DefaultSettingsID}
	}
	if settings.Webhooks == nil {
		settings.Webhooks = map[entity.WebhookKind]string{}
	}
	return settings, nil
}

func parseWebhookKind(raw string) (entity.WebhookKind, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, kind := range entity.WebhookKinds {
		if string(kind) == raw {
			return kind, true
		}
	}
	return "", false
}
