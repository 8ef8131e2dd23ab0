package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leadgenius/api/internal/entity"
)

// InsightsRepository keeps the history of generated company insights.
type InsightsRepository interface {
	Append(ctx context.Context, insight *entity.Insight) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Insight, error)
}

// PGXInsightsRepository implements InsightsRepository using pgx.
type PGXInsightsRepository struct {
	pool pgxPool
}

// NewPGXInsightsRepository wires a pgx backed repository.
func NewPGXInsightsRepository(pool *pgxpool.Pool) *PGXInsightsRepository {
	return &PGXInsightsRepository{pool: pool}
}

// Append records one generated insight.
func (r *PGXInsightsRepository) Append(ctx context.Context, insight *entity.Insight) error {
	if insight == nil {
		return fmt.Errorf("insight payload is nil")
	}
	data := insight.Data
	if len(data) == 0 {
		data = []byte("{}")
	}

	query := `
        INSERT INTO company_insights (company_id, kind, content, data, source, fallback)
        VALUES ($1, $2, $3, $4::jsonb, $5, $6)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		insight.CompanyID,
		string(insight.Kind),
		insight.Content,
		string(data),
		insight.Source,
		insight.Fallback,
	).Scan(&insight.ID, &insight.GeneratedAt)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrCompanyNotFound
		}
		return fmt.Errorf("insert insight: %w", err)
	}
	return nil
}

// ListByCompany returns the insights of a company, newest first.
func (r *PGXInsightsRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Insight, error) {
	var insights []entity.Insight
	query := `
        SELECT id, company_id, kind, content, data, source, fallback, created_at AS generated_at
        FROM company_insights
        WHERE company_id = $1
        ORDER BY created_at DESC
        LIMIT 200`
	if err := pgxscan.Select(ctx, r.pool, &insights, query, companyID); err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	return insights, nil
}
