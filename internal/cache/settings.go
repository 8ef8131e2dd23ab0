package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octobees/leadgenius/api/internal/entity"
)

const (
	settingsPrefix = "leadgenius:settings:" + entity.DefaultSettingsID
	// GenerationKey holds the counter bumped by every invalidation.
	GenerationKey = settingsPrefix + ":gen"
)

// EntryKey is the redis key holding the settings cached under a generation.
func EntryKey(generation int64) string {
	return fmt.Sprintf("%s:%d", settingsPrefix, generation)
}

type keyValue interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Settings caches the settings row in redis. Entries are keyed by a
// generation that Invalidate bumps, so a reader that loaded the row before a
// write stores it under a key nobody reads any more. A nil client disables
// caching and every read goes to the database.
type Settings struct {
	client keyValue
	ttl    time.Duration
}

// NewSettings builds a settings cache.
func NewSettings(client keyValue, ttl time.Duration) *Settings {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Settings{client: client, ttl: ttl}
}

// Get returns the cached settings and the generation it looked under.
// Misses and redis errors both report false; a negative generation means
// the result must not be cached.
func (s *Settings) Get(ctx context.Context) (entity.AppSettings, int64, bool) {
	if s == nil || s.client == nil {
		return entity.AppSettings{}, -1, false
	}
	generation, err := s.client.Get(ctx, GenerationKey).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("settings cache read failed", slog.String("error", err.Error()))
			return entity.AppSettings{}, -1, false
		}
		generation = 0
	}

	raw, err := s.client.Get(ctx, EntryKey(generation)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("settings cache read failed", slog.String("error", err.Error()))
			return entity.AppSettings{}, -1, false
		}
		return entity.AppSettings{}, generation, false
	}
	var settings entity.AppSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		slog.Warn("settings cache entry corrupt", slog.String("error", err.Error()))
		return entity.AppSettings{}, generation, false
	}
	return settings, generation, true
}

// Set stores the settings under the generation returned by Get.
func (s *Settings) Set(ctx context.Context, generation int64, settings entity.AppSettings) {
	if s == nil || s.client == nil || generation < 0 {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, EntryKey(generation), raw, s.ttl).Err(); err != nil {
		slog.Warn("settings cache write failed", slog.String("error", err.Error()))
	}
}

// Invalidate starts a new generation and drops the previous entry. It must be
// called after every write.
func (s *Settings) Invalidate(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	generation, err := s.client.Incr(ctx, GenerationKey).Result()
	if err != nil {
		return err
	}
	return s.client.Del(ctx, EntryKey(generation-1)).Err()
}
