package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
)

var (
	// ErrCompanyNotFound indicates the company does not exist.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrDuplicateCompany indicates another company already uses the name.
	ErrDuplicateCompany = errors.New("company with this name already exists")
)

// CompaniesRepository describes persistence operations for companies.
type CompaniesRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	FindByName(ctx context.Context, name string) (*entity.Company, error)
	FindOrCreate(ctx context.Context, company *entity.Company) (bool, error)
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateInsights(ctx context.Context, id uuid.UUID, insights entity.CompanyInsights) error
	UpdateScripts(ctx context.Context, id uuid.UUID, scripts entity.OutreachScripts) error
	BulkUpsert(ctx context.Context, companies []entity.Company) (BulkUpsertResult, error)
}

// BulkUpsertResult summarises the number of rows inserted or updated.
type BulkUpsertResult struct {
	Inserted int
	Updated  int
	Total    int
}

// PGXCompaniesRepository implements CompaniesRepository using pgx.
type PGXCompaniesRepository struct {
	pool pgxPool
}

// NewPGXCompaniesRepository wires a pgx backed repository.
func NewPGXCompaniesRepository(pool *pgxpool.Pool) *PGXCompaniesRepository {
	return &PGXCompaniesRepository{pool: pool}
}

const companyColumns = `id, name, industry, size, location, street, city, state, zip, country,
        website, phone, email, description, linkedin_url, facebook_url, twitter_url, instagram_url,
        call_script, email_script, text_script, social_dm_script, insights, created_at, updated_at`

func prefixedCompanyColumns(alias string) string {
	cols := strings.Split(companyColumns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}

// companyScan holds the nullable intermediates for one company row.
type companyScan struct {
	company  entity.Company
	optional [20]sql.NullString
	insights []byte
}

func (s *companyScan) targets() []any {
	dest := []any{&s.company.ID, &s.company.Name}
	for i := range s.optional {
		dest = append(dest, &s.optional[i])
	}
	return append(dest, &s.insights, &s.company.CreatedAt, &s.company.UpdatedAt)
}

func (s *companyScan) result() (entity.Company, error) {
	c := s.company
	fields := optionalCompanyFields(&c)
	for i, field := range fields {
		*field = nullStringToPtr(s.optional[i])
	}
	if len(s.insights) > 0 {
		if err := json.Unmarshal(s.insights, &c.Insights); err != nil {
			return entity.Company{}, fmt.Errorf("decode insights: %w", err)
		}
	}
	return c, nil
}

// optionalCompanyFields lists the nullable columns in companyColumns order.
func optionalCompanyFields(c *entity.Company) []**string {
	return []**string{
		&c.Industry, &c.Size, &c.Location, &c.Street, &c.City, &c.State, &c.Zip, &c.Country,
		&c.Website, &c.Phone, &c.Email, &c.Description, &c.LinkedInURL, &c.FacebookURL,
		&c.TwitterURL, &c.InstagramURL, &c.CallScript, &c.EmailScript, &c.TextScript, &c.SocialDMScript,
	}
}

func companyArgs(c *entity.Company) ([]any, error) {
	insights, err := json.Marshal(c.Insights)
	if err != nil {
		return nil, fmt.Errorf("marshal insights: %w", err)
	}
	args := []any{strings.TrimSpace(c.Name)}
	for _, field := range optionalCompanyFields(c) {
		args = append(args, stringOrNil(*field))
	}
	return append(args, string(insights)), nil
}

const insertCompanyValues = `(name, industry, size, location, street, city, state, zip, country,
            website, phone, email, description, linkedin_url, facebook_url, twitter_url, instagram_url,
            call_script, email_script, text_script, social_dm_script, insights)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22::jsonb)`

// Create inserts a new company and fills in its generated id and timestamps.
func (r *PGXCompaniesRepository) Create(ctx context.Context, company *entity.Company) error {
	if company == nil {
		return fmt.Errorf("company payload is nil")
	}
	args, err := companyArgs(company)
	if err != nil {
		return err
	}

	query := `INSERT INTO companies ` + insertCompanyValues + ` RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, query, args...).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrDuplicateCompany
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// FindOrCreate resolves a company by case-insensitive name, inserting it when
// missing. The company is overwritten with the stored row; the boolean reports an insert.
func (r *PGXCompaniesRepository) FindOrCreate(ctx context.Context, company *entity.Company) (bool, error) {
	if company == nil || strings.TrimSpace(company.Name) == "" {
		return false, fmt.Errorf("company name is required")
	}
	args, err := companyArgs(company)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO companies ` + insertCompanyValues + `
        ON CONFLICT ((LOWER(name))) DO UPDATE SET name = companies.name
        RETURNING ` + companyColumns + `, (xmax = 0) AS inserted`

	var (
		scan     companyScan
		inserted bool
	)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(append(scan.targets(), &inserted)...); err != nil {
		return false, fmt.Errorf("find or create company %q: %w", company.Name, err)
	}
	stored, err := scan.result()
	if err != nil {
		return false, err
	}
	*company = stored
	return inserted, nil
}

// Get returns the company with the given id.
func (r *PGXCompaniesRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

// FindByName matches a company name case-insensitively.
func (r *PGXCompaniesRepository) FindByName(ctx context.Context, name string) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE LOWER(name) = LOWER($1)`, strings.TrimSpace(name))
}

func (r *PGXCompaniesRepository) getOne(ctx context.Context, query string, args ...any) (*entity.Company, error) {
	var scan companyScan
	if err := r.pool.QueryRow(ctx, query, args...).Scan(scan.targets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("fetch company: %w", err)
	}
	company, err := scan.result()
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// List retrieves companies matching the provided filter.
func (r *PGXCompaniesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + companyColumns + ` FROM companies`)

	var (
		clauses []string
		args    []any
		idx     = 1
	)
	if filter.Q != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR industry ILIKE $%d OR city ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+filter.Q+"%")
		idx++
	}
	if filter.Industry != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(industry) = LOWER($%d)", idx))
		args = append(args, filter.Industry)
		idx++
	}
	if filter.City != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(city) = LOWER($%d)", idx))
		args = append(args, filter.City)
		idx++
	}
	if filter.Ideal != nil {
		clauses = append(clauses, fmt.Sprintf("COALESCE((insights->'ideal_client'->>'is_ideal')::boolean, FALSE) = $%d", idx))
		args = append(args, *filter.Ideal)
		idx++
	}
	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}

	switch strings.ToLower(filter.Sort) {
	case "name":
		query.WriteString(" ORDER BY LOWER(name) ASC")
	case "created":
		query.WriteString(" ORDER BY created_at DESC")
	default:
		query.WriteString(" ORDER BY updated_at DESC, LOWER(name) ASC")
	}

	limit, offset := pagination(filter.Pagination)
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// Update overwrites every editable column of the company.
func (r *PGXCompaniesRepository) Update(ctx context.Context, company *entity.Company) error {
	if company == nil {
		return fmt.Errorf("company payload is nil")
	}
	args, err := companyArgs(company)
	if err != nil {
		return err
	}
	args = append(args, company.ID)

	query := `
        UPDATE companies SET
            name = $1, industry = $2, size = $3, location = $4, street = $5, city = $6,
            state = $7, zip = $8, country = $9, website = $10, phone = $11, email = $12,
            description = $13, linkedin_url = $14, facebook_url = $15, twitter_url = $16,
            instagram_url = $17, call_script = $18, email_script = $19, text_script = $20,
            social_dm_script = $21, insights = $22::jsonb, updated_at = NOW()
        WHERE id = $23
        RETURNING updated_at`

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&company.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrCompanyNotFound
		case isPgError(err, pgUniqueViolation):
			return ErrDuplicateCompany
		}
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// Delete removes the company together with its contacts.
func (r *PGXCompaniesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start delete company tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM contacts WHERE company_id = $1`, id); err != nil {
		return fmt.Errorf("delete company contacts: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete company tx: %w", err)
	}
	return nil
}

// UpdateInsights replaces the typed insights document.
func (r *PGXCompaniesRepository) UpdateInsights(ctx context.Context, id uuid.UUID, insights entity.CompanyInsights) error {
	payload, err := json.Marshal(insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET insights = $2::jsonb, updated_at = NOW() WHERE id = $1`, id, string(payload))
	if err != nil {
		return fmt.Errorf("update insights: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// UpdateScripts stores the non-empty outreach scripts, keeping existing ones otherwise.
func (r *PGXCompaniesRepository) UpdateScripts(ctx context.Context, id uuid.UUID, scripts entity.OutreachScripts) error {
	query := `
        UPDATE companies SET
            call_script = COALESCE(NULLIF($2, ''), call_script),
            email_script = COALESCE(NULLIF($3, ''), email_script),
            text_script = COALESCE(NULLIF($4, ''), text_script),
            social_dm_script = COALESCE(NULLIF($5, ''), social_dm_script),
            updated_at = NOW()
        WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, scripts.Call, scripts.Email, scripts.Text, scripts.SocialDM)
	if err != nil {
		return fmt.Errorf("update scripts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

const bulkUpsertSQL = `
        INSERT INTO companies (name, industry, city, state, country, website, phone, email, location, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
        ON CONFLICT ((LOWER(name))) DO UPDATE SET
            industry = COALESCE(EXCLUDED.industry, companies.industry),
            city = COALESCE(EXCLUDED.city, companies.city),
            state = COALESCE(EXCLUDED.state, companies.state),
            country = COALESCE(EXCLUDED.country, companies.country),
            website = COALESCE(EXCLUDED.website, companies.website),
            phone = COALESCE(EXCLUDED.phone, companies.phone),
            email = COALESCE(EXCLUDED.email, companies.email),
            location = COALESCE(EXCLUDED.location, companies.location),
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// BulkUpsert persists a batch of companies keyed by case-insensitive name.
func (r *PGXCompaniesRepository) BulkUpsert(ctx context.Context, companies []entity.Company) (BulkUpsertResult, error) {
	var result BulkUpsertResult
	if len(companies) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start bulk upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range companies {
		var inserted bool
		err := tx.QueryRow(ctx, bulkUpsertSQL,
			strings.TrimSpace(c.Name),
			stringOrNil(c.Industry),
			stringOrNil(c.City),
			stringOrNil(c.State),
			stringOrNil(c.Country),
			stringOrNil(c.Website),
			stringOrNil(c.Phone),
			stringOrNil(c.Email),
			stringOrNil(c.Location),
		).Scan(&inserted)
		if err != nil {
			return result, fmt.Errorf("bulk upsert company %q: %w", c.Name, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit bulk upsert tx: %w", err)
	}
	return result, nil
}

func scanCompanies(rows pgx.Rows) ([]entity.Company, error) {
	var companies []entity.Company
	for rows.Next() {
		var scan companyScan
		if err := rows.Scan(scan.targets()...); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		company, err := scan.result()
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

// timeOrNil keeps zero timestamps out of nullable columns.
func timeOrNil(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}
