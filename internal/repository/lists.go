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

// ErrListNotFound indicates the list does not exist.
var ErrListNotFound = errors.New("list not found")

// ListsRepository persists named company lists.
type ListsRepository interface {
	Create(ctx context.Context, list *entity.List) error
	List(ctx context.Context) ([]entity.List, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.List, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddCompany(ctx context.Context, listID, companyID uuid.UUID) error
	RemoveCompany(ctx context.Context, listID, companyID uuid.UUID) error
	Companies(ctx context.Context, listID uuid.UUID) ([]entity.Company, error)
}

// PGXListsRepository implements ListsRepository using pgx and scany.
type PGXListsRepository struct {
	pool pgxPool
}

// NewPGXListsRepository wires a pgx backed repository.
func NewPGXListsRepository(pool *pgxpool.Pool) *PGXListsRepository {
	return &PGXListsRepository{pool: pool}
}

const listSelect = `
        SELECT l.id, l.name, l.description, l.created_at, l.updated_at,
            (SELECT COUNT(*) FROM list_companies lc WHERE lc.list_id = l.id) AS company_count
        FROM lists l`

// Create inserts a list.
func (r *PGXListsRepository) Create(ctx context.Context, list *entity.List) error {
	if list == nil {
		return fmt.Errorf("list payload is nil")
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO lists (name, description) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		list.Name, list.Description,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

// List returns every list with its member count.
func (r *PGXListsRepository) List(ctx context.Context) ([]entity.List, error) {
	var lists []entity.List
	if err := pgxscan.Select(ctx, r.pool, &lists, listSelect+` ORDER BY l.created_at DESC`); err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// Get returns one list.
func (r *PGXListsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.List, error) {
	var list entity.List
	if err := pgxscan.Get(ctx, r.pool, &list, listSelect+` WHERE l.id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("fetch list: %w", err)
	}
	return &list, nil
}

// Delete removes a list; member companies are kept.
func (r *PGXListsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListNotFound
	}
	return nil
}

// AddCompany adds a company to a list. Adding twice is a no-op.
func (r *PGXListsRepository) AddCompany(ctx context.Context, listID, companyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO list_companies (list_id, company_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		listID, companyID,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w or %w", ErrListNotFound, ErrCompanyNotFound)
		}
		return fmt.Errorf("add company to list: %w", err)
	}
	return nil
}

// RemoveCompany removes a company from a list.
func (r *PGXListsRepository) RemoveCompany(ctx context.Context, listID, companyID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM list_companies WHERE list_id = $1 AND company_id = $2`, listID, companyID); err != nil {
		return fmt.Errorf("remove company from list: %w", err)
	}
	return nil
}

// Companies returns the members of a list.
func (r *PGXListsRepository) Companies(ctx context.Context, listID uuid.UUID) ([]entity.Company, error) {
	query := `
        SELECT ` + prefixedCompanyColumns("c") + `
        FROM companies c
        JOIN list_companies lc ON lc.company_id = c.id
        WHERE lc.list_id = $1
        ORDER BY lc.added_at DESC`
	rows, err := r.pool.Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("list companies of list: %w", err)
	}
	defer rows.Close()
	return scanCompanies(rows)
}
