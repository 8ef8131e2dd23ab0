package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/leadgenius/api/internal/apify"
	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/leadsearch"
	"github.com/octobees/leadgenius/api/internal/repository"
)

// DefaultActorID is the Google Maps scraper used when settings name no actor.
const DefaultActorID = "compass~crawler-google-places"

// ErrScraperNotConfigured is returned when no Apify token is stored in settings.
var ErrScraperNotConfigured = errors.New("apify api key not configured")

// Scraper runs an actor and returns its dataset.
type Scraper interface {
	Search(ctx context.Context, actorID string, input any) (apify.Run, []byte, error)
}

// ScraperFactory builds a scraper for the token currently stored in settings.
type ScraperFactory func(token string) Scraper

// DatasetArchive stores and loads raw scraper datasets.
type DatasetArchive interface {
	Put(ctx context.Context, searchID uuid.UUID, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// SearchService runs lead searches and records their history.
type SearchService struct {
	settings    *SettingsService
	newScraper  ScraperFactory
	archive     DatasetArchive
	searches    repository.SearchesRepository
	prompts     *PromptService
	transformer *leadsearch.Transformer
	logger      *slog.Logger
}

// NewSearchService builds a SearchService. A nil archive keeps raw datasets in the database.
func NewSearchService(settings *SettingsService, newScraper ScraperFactory, archive DatasetArchive, searches repository.SearchesRepository, prompts *PromptService, transformer *leadsearch.Transformer, logger *slog.Logger) *SearchService {
	if transformer == nil {
		transformer = leadsearch.NewTransformer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		settings:    settings,
		newScraper:  newScraper,
		archive:     archive,
		searches:    searches,
		prompts:     prompts,
		transformer: transformer,
		logger:      logger,
	}
}

// ParsePrompt exposes the prompt interpretation without running a search.
func (s *SearchService) ParsePrompt(req dto.PromptSearchRequest) (PromptResult, error) {
	return s.prompts.Parse(req)
}

// Search runs the scraper, archives the raw dataset, and returns normalised results.
func (s *SearchService) Search(ctx context.Context, req dto.LeadSearchRequest) (dto.LeadSearchResponse, error) {
	query, input, err := s.buildInput(req)
	if err != nil {
		return dto.LeadSearchResponse{}, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.LeadSearchResponse{}, err
	}
	if strings.TrimSpace(settings.ApifyAPIKey) == "" {
		return dto.LeadSearchResponse{}, ErrScraperNotConfigured
	}
	actorID := strings.TrimSpace(settings.ApifyActorID)
	if actorID == "" {
		actorID = DefaultActorID
	}

	history := &entity.SearchHistory{Query: query, Source: "apify"}
	if err := s.searches.Create(ctx, history); err != nil {
		return dto.LeadSearchResponse{}, err
	}
	log := s.logger.With(slog.String("search_id", history.ID.String()), slog.String("actor", actorID))

	run, data, err := s.newScraper(settings.ApifyAPIKey).Search(ctx, actorID, input)
	if run.ID != "" {
		history.RunID = &run.ID
	}
	if err != nil {
		log.Warn("lead search failed", slog.String("error", err.Error()))
		s.finish(ctx, history, entity.SearchFailed, 0, err)
		return dto.LeadSearchResponse{}, fmt.Errorf("run scraper: %w", err)
	}

	s.store(ctx, log, history.ID, data)

	results, err := s.transformer.Transform(data)
	if err != nil {
		s.finish(ctx, history, entity.SearchFailed, 0, err)
		return dto.LeadSearchResponse{}, fmt.Errorf("transform results: %w", err)
	}
	s.finish(ctx, history, entity.SearchSucceeded, len(results), nil)
	log.Info("lead search finished", slog.Int("results", len(results)))

	return dto.LeadSearchResponse{SearchID: history.ID.String(), RunID: run.ID, Results: results}, nil
}

// Transform normalises raw records without persisting anything.
func (s *SearchService) Transform(raw []byte) ([]entity.SearchResult, error) {
	results, err := s.transformer.Transform(raw)
	if err != nil {
		return nil, invalid("records", err.Error())
	}
	return results, nil
}

// History returns recent searches.
func (s *SearchService) History(ctx context.Context, limit int) ([]entity.SearchHistory, error) {
	return s.searches.List(ctx, limit)
}

// Results reloads the archived dataset of a past search and transforms it again.
func (s *SearchService) Results(ctx context.Context, searchID uuid.UUID) ([]entity.SearchResult, error) {
	archived, err := s.searches.GetArchive(ctx, searchID)
	if err != nil {
		return nil, err
	}
	data := archived.Payload
	if archived.ObjectKey != nil && *archived.ObjectKey != "" {
		if s.archive == nil {
			return nil, fmt.Errorf("dataset %s is archived but no archive is configured", *archived.ObjectKey)
		}
		data, err = s.archive.Get(ctx, *archived.ObjectKey)
		if err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return []entity.SearchResult{}, nil
	}
	return s.transformer.Transform(data)
}

func (s *SearchService) buildInput(req dto.LeadSearchRequest) (string, map[string]any, error) {
	if len(req.Input) > 0 {
		query := strings.TrimSpace(req.Query)
		if query == "" {
			query = strings.TrimSpace(req.Prompt)
		}
		if query == "" {
			query = "custom input"
		}
		return query, req.Input, nil
	}

	var parsed PromptResult
	switch {
	case strings.TrimSpace(req.Query) != "":
		parsed = PromptResult{
			Keywords: strings.TrimSpace(req.Query),
			Location: strings.TrimSpace(req.Location),
			Limit:    clampLimit(req.Limit),
		}
	case strings.TrimSpace(req.Prompt) != "":
		var err error
		parsed, err = s.prompts.Parse(dto.PromptSearchRequest{Prompt: req.Prompt, Location: req.Location, Limit: req.Limit})
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, invalid("query", "query or prompt is required")
	}

	input := map[string]any{
		"searchStringsArray":        []string{parsed.Keywords},
		"maxCrawledPlacesPerSearch": parsed.Limit,
		"language":                  "en",
	}
	if parsed.Location != "" {
		input["locationQuery"] = parsed.Location
	}
	return parsed.Query(), input, nil
}

func (s *SearchService) store(ctx context.Context, log *slog.Logger, searchID uuid.UUID, data []byte) {
	record := repository.SearchArchive{SearchID: searchID}
	if s.archive != nil {
		key, err := s.archive.Put(ctx, searchID, data)
		if err == nil {
			record.ObjectKey = &key
		} else {
			log.Warn("archive dataset failed, keeping it inline", slog.String("error", err.Error()))
		}
	}
	if record.ObjectKey == nil {
		record.Payload = data
	}
	if err := s.searches.SaveArchive(ctx, record); err != nil {
		log.Warn("save search archive failed", slog.String("error", err.Error()))
	}
}

func (s *SearchService) finish(ctx context.Context, history *entity.SearchHistory, status entity.SearchStatus, count int, cause error) {
	history.Status = status
	history.ResultCount = count
	if cause != nil {
		msg := cause.Error()
		history.Error = &msg
	}
	if err := s.searches.Finish(context.WithoutCancel(ctx), history); err != nil {
		s.logger.Warn("record search outcome failed",
			slog.String("search_id", history.ID.String()),
			slog.String("error", err.Error()))
	}
}
