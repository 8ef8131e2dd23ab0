package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/leadgenius/api/internal/dto"
	"github.com/octobees/leadgenius/api/internal/entity"
)

var testContactID = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

func fillContactRow(dest []any) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	*dest[0].(*uuid.UUID) = testContactID
	*dest[1].(*uuid.UUID) = testCompanyID
	*dest[2].(*string) = "Jane"
	*dest[3].(*string) = "Doe"
	for i := 4; i < 12; i++ {
		*dest[i].(*sql.NullString) = sql.NullString{}
	}
	*dest[4].(*sql.NullString) = sql.NullString{String: "CTO", Valid: true}
	*dest[5].(*sql.NullString) = sql.NullString{String: "jane@acme.example", Valid: true}
	*dest[12].(*[]string) = []string{"go"}
	*dest[13].(*[]byte) = nil
	*dest[14].(*[]byte) = []byte(`[{"company":"Acme"}]`)
	*dest[15].(*[]byte) = nil
	*dest[16].(*sql.NullTime) = sql.NullTime{Time: now, Valid: true}
	*dest[17].(*time.Time) = now
	*dest[18].(*time.Time) = now
}

func TestPGXContactsRepository_Get(t *testing.T) {
	repo := &PGXContactsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				if len(dest) != 19 {
					t.Fatalf("expected 19 scan targets, got %d", len(dest))
				}
				fillContactRow(dest)
				return nil
			}}
		},
	}}

	contact, err := repo.Get(context.Background(), testContactID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contact.Name() != "Jane Doe" || entity.Value(contact.Title) != "CTO" || entity.Value(contact.Email) != "jane@acme.example" {
		t.Fatalf("unexpected contact: %+v", contact)
	}
	if contact.Phone != nil {
		t.Fatalf("expected nil phone")
	}
	if string(contact.Education) != "[]" || string(contact.Experience) != `[{"company":"Acme"}]` {
		t.Fatalf("unexpected json columns: %s %s", contact.Education, contact.Experience)
	}
	if contact.EnrichedAt == nil {
		t.Fatalf("expected enriched_at to be set")
	}
}

func TestPGXContactsRepository_GetNotFound(t *testing.T) {
	repo := &PGXContactsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}}
	if _, err := repo.Get(context.Background(), testContactID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestPGXContactsRepository_Create(t *testing.T) {
	repo := &PGXContactsRepository{pool: &stubPool{}}
	if err := repo.Create(context.Background(), &entity.Contact{FirstName: "Jane"}); !errors.Is(err, ErrContactCompanyMissing) {
		t.Fatalf("expected ErrContactCompanyMissing, got %v", err)
	}

	var args []any
	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, a ...any) pgx.Row {
			args = a
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*uuid.UUID) = testContactID
				return nil
			}}
		},
	}
	contact := &entity.Contact{CompanyID: testCompanyID, FirstName: " Jane ", LastName: "Doe"}
	if err := repo.Create(context.Background(), contact); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contact.ID != testContactID {
		t.Fatalf("expected id to be assigned")
	}
	if len(args) != 16 || args[1] != "Jane" || args[3] != nil {
		t.Fatalf("unexpected args: %v", args)
	}
	if args[12] != "[]" {
		t.Fatalf("expected empty education array, got %v", args[12])
	}
}

func TestPGXContactsRepository_CreateUnknownCompany(t *testing.T) {
	repo := &PGXContactsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: pgForeignKeyViolation}
			}}
		},
	}}
	err := repo.Create(context.Background(), &entity.Contact{CompanyID: testCompanyID, FirstName: "Jane"})
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestPGXContactsRepository_List(t *testing.T) {
	var (
		gotQuery string
		gotArgs  []any
	)
	repo := &PGXContactsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			gotQuery, gotArgs = query, args
			return &stubRows{scans: []func(dest ...any) error{
				func(dest ...any) error { fillContactRow(dest); return nil },
			}}, nil
		},
	}}

	companyID := testCompanyID
	contacts, err := repo.List(context.Background(), dto.ContactFilter{CompanyID: &companyID, Q: "jan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("expected one contact, got %d", len(contacts))
	}
	if !strings.Contains(gotQuery, "company_id = $1") || !strings.Contains(gotQuery, "first_name ILIKE $2") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if gotArgs[0] != testCompanyID || gotArgs[1] != "%jan%" || gotArgs[2] != 20 {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
}

func TestPGXContactsRepository_UpdateAndDelete(t *testing.T) {
	repo := &PGXContactsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			if args[16] != testContactID {
				t.Fatalf("expected contact id as last arg, got %v", args[16])
			}
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}}

	err := repo.Update(context.Background(), &entity.Contact{ID: testContactID, CompanyID: testCompanyID})
	if !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), testContactID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}
