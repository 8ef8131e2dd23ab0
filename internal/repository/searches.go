package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leadgenius/api/internal/entity"
)

// ErrSearchNotFound indicates the search history row does not exist.
var ErrSearchNotFound = errors.New("search not found")

// SearchArchive points at the raw dataset of a search, either by object key or inline payload.
type SearchArchive struct {
	SearchID  uuid.UUID `db:"search_id"`
	ObjectKey *string   `db:"object_key"`
	Payload   []byte    `db:"payload"`
}

// SearchesRepository records lead search runs and their raw datasets.
type SearchesRepository interface {
	Create(ctx context.Context, search *entity.SearchHistory) error
	Finish(ctx context.Context, search *entity.SearchHistory) error
	List(ctx context.Context, limit int) ([]entity.SearchHistory, error)
	SaveArchive(ctx context.Context, archive SearchArchive) error
	GetArchive(ctx context.Context, searchID uuid.UUID) (*SearchArchive, error)
}

// PGXSearchesRepository implements SearchesRepository using pgx and scany.
type PGXSearchesRepository struct {
	pool pgxPool
}

// NewPGXSearchesRepository wires a pgx backed repository.
func NewPGXSearchesRepository(pool *pgxpool.Pool) *PGXSearchesRepository {
	return &PGXSearchesRepository{pool: pool}
}

// Create inserts a running search.
func (r *PGXSearchesRepository) Create(ctx context.Context, search *entity.SearchHistory) error {
	if search == nil {
		return fmt.Errorf("search payload is nil")
	}
	if search.Status == "" {
		search.Status = entity.SearchRunning
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO search_history (query, source, status) VALUES ($1, $2, $3) RETURNING id, created_at`,
		search.Query, search.Source, string(search.Status),
	).Scan(&search.ID, &search.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

// Finish stores the outcome of a search.
func (r *PGXSearchesRepository) Finish(ctx context.Context, search *entity.SearchHistory) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE search_history SET status = $2, run_id = $3, result_count = $4, error = $5 WHERE id = $1`,
		search.ID, string(search.Status), stringOrNil(search.RunID), search.ResultCount, stringOrNil(search.Error),
	)
	if err != nil {
		return fmt.Errorf("finish search: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSearchNotFound
	}
	return nil
}

// List returns the most recent searches.
func (r *PGXSearchesRepository) List(ctx context.Context, limit int) ([]entity.SearchHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var searches []entity.SearchHistory
	query := `
        SELECT id, query, source, run_id, status, result_count, error, created_at
        FROM search_history ORDER BY created_at DESC LIMIT $1`
	if err := pgxscan.Select(ctx, r.pool, &searches, query, limit); err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	return searches, nil
}

// SaveArchive records where the raw dataset of a search lives.
func (r *PGXSearchesRepository) SaveArchive(ctx context.Context, archive SearchArchive) error {
	var payload any
	if len(archive.Payload) > 0 {
		payload = string(archive.Payload)
	}
	_, err := r.pool.Exec(ctx, `
        INSERT INTO search_results_archive (search_id, object_key, payload)
        VALUES ($1, $2, $3::jsonb)
        ON CONFLICT (search_id) DO UPDATE SET object_key = EXCLUDED.object_key, payload = EXCLUDED.payload`,
		archive.SearchID, stringOrNil(archive.ObjectKey), payload,
	)
	if err != nil {
		return fmt.Errorf("save search archive: %w", err)
	}
	return nil
}

// GetArchive returns the archive pointer of a search.
func (r *PGXSearchesRepository) GetArchive(ctx context.Context, searchID uuid.UUID) (*SearchArchive, error) {
	var archive SearchArchive
	err := pgxscan.Get(ctx, r.pool, &archive,
		`SELECT search_id, object_key, payload FROM search_results_archive WHERE search_id = $1`, searchID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrSearchNotFound
		}
		return nil, fmt.Errorf("fetch search archive: %w", err)
	}
	return &archive, nil
}
