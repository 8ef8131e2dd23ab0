package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
)

var (
	// ErrContactNotFound indicates the contact does not exist.
	ErrContactNotFound = errors.New("contact not found")
	// ErrContactCompanyMissing is returned when a contact has no company id.
	ErrContactCompanyMissing = errors.New("contact company id is required")
)

// ContactsRepository describes persistence operations for contacts.
type ContactsRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Contact, error)
	List(ctx context.Context, filter dto.ContactFilter) ([]entity.Contact, error)
	Update(ctx context.Context, contact *entity.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXContactsRepository implements ContactsRepository using pgx.
type PGXContactsRepository struct {
	pool pgxPool
}

// NewPGXContactsRepository wires a pgx backed repository.
func NewPGXContactsRepository(pool *pgxpool.Pool) *PGXContactsRepository {
	return &PGXContactsRepository{pool: pool}
}

const contactColumns = `id, company_id, first_name, last_name, title, email, phone, linkedin_url, notes,
        profile_research, bio, location, skills, education, experience, posts, enriched_at, created_at, updated_at`

type contactScan struct {
	contact    entity.Contact
	optional   [8]sql.NullString
	education  []byte
	experience []byte
	posts      []byte
	enrichedAt sql.NullTime
}

func (s *contactScan) targets() []any {
	dest := []any{&s.contact.ID, &s.contact.CompanyID, &s.contact.FirstName, &s.contact.LastName}
	for i := range s.optional {
		dest = append(dest, &s.optional[i])
	}
	return append(dest, &s.contact.Skills, &s.education, &s.experience, &s.posts, &s.enrichedAt,
		&s.contact.CreatedAt, &s.contact.UpdatedAt)
}

func (s *contactScan) result() entity.Contact {
	c := s.contact
	for i, field := range optionalContactFields(&c) {
		*field = nullStringToPtr(s.optional[i])
	}
	c.Education = rawOrEmptyArray(s.education)
	c.Experience = rawOrEmptyArray(s.experience)
	c.Posts = rawOrEmptyArray(s.posts)
	if s.enrichedAt.Valid {
		ts := s.enrichedAt.Time
		c.EnrichedAt = &ts
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return c
}

func optionalContactFields(c *entity.Contact) []**string {
	return []**string{
		&c.Title, &c.Email, &c.Phone, &c.LinkedInURL, &c.Notes, &c.ProfileResearch, &c.Bio, &c.Location,
	}
}

func rawOrEmptyArray(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("[]")
	}
	return json.RawMessage(raw)
}

func contactArgs(c *entity.Contact) []any {
	args := []any{c.CompanyID, strings.TrimSpace(c.FirstName), strings.TrimSpace(c.LastName)}
	for _, field := range optionalContactFields(c) {
		args = append(args, stringOrNil(*field))
	}
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	return append(args, skills,
		string(rawOrEmptyArray(c.Education)),
		string(rawOrEmptyArray(c.Experience)),
		string(rawOrEmptyArray(c.Posts)),
		timeOrNil(c.EnrichedAt),
	)
}

// Create inserts a contact. The contact must reference a persisted company.
func (r *PGXContactsRepository) Create(ctx context.Context, contact *entity.Contact) error {
	if contact == nil {
		return fmt.Errorf("contact payload is nil")
	}
	if contact.CompanyID == uuid.Nil {
		return ErrContactCompanyMissing
	}

	query := `
        INSERT INTO contacts (company_id, first_name, last_name, title, email, phone, linkedin_url, notes,
            profile_research, bio, location, skills, education, experience, posts, enriched_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13::jsonb,$14::jsonb,$15::jsonb,$16)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, contactArgs(contact)...).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrCompanyNotFound
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// Get returns the contact with the given id.
func (r *PGXContactsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	var scan contactScan
	err := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id).Scan(scan.targets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("fetch contact: %w", err)
	}
	contact := scan.result()
	return &contact, nil
}

// List returns contacts, optionally restricted to a company.
func (r *PGXContactsRepository) List(ctx context.Context, filter dto.ContactFilter) ([]entity.Contact, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + contactColumns + ` FROM contacts`)

	var (
		clauses []string
		args    []any
		idx     = 1
	)
	if filter.CompanyID != nil {
		clauses = append(clauses, fmt.Sprintf("company_id = $%d", idx))
		args = append(args, *filter.CompanyID)
		idx++
	}
	if filter.Q != "" {
		clauses = append(clauses, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR title ILIKE $%d)", idx, idx, idx, idx))
		args = append(args, "%"+filter.Q+"%")
		idx++
	}
	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}
	query.WriteString(" ORDER BY created_at DESC")

	limit, offset := pagination(filter.Pagination)
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []entity.Contact
	for rows.Next() {
		var scan contactScan
		if err := rows.Scan(scan.targets()...); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, scan.result())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// Update overwrites every editable column of the contact.
func (r *PGXContactsRepository) Update(ctx context.Context, contact *entity.Contact) error {
	if contact == nil {
		return fmt.Errorf("contact payload is nil")
	}
	if contact.CompanyID == uuid.Nil {
		return ErrContactCompanyMissing
	}

	query := `
        UPDATE contacts SET
            company_id = $1, first_name = $2, last_name = $3, title = $4, email = $5, phone = $6,
            linkedin_url = $7, notes = $8, profile_research = $9, bio = $10, location = $11,
            skills = $12, education = $13::jsonb, experience = $14::jsonb, posts = $15::jsonb,
            enriched_at = $16, updated_at = NOW()
        WHERE id = $17
        RETURNING updated_at`

	args := append(contactArgs(contact), contact.ID)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&contact.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrContactNotFound
		case isPgError(err, pgForeignKeyViolation):
			return ErrCompanyNotFound
		}
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// Delete removes a contact.
func (r *PGXContactsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}
