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

var testCompanyID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

// fillCompanyRow writes a company row into the scan targets in companyColumns order.
func fillCompanyRow(dest []any, name string) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	*dest[0].(*uuid.UUID) = testCompanyID
	*dest[1].(*string) = name
	for i := 2; i < 22; i++ {
		*dest[i].(*sql.NullString) = sql.NullString{}
	}
	*dest[2].(*sql.NullString) = sql.NullString{String: "Software", Valid: true}
	*dest[6].(*sql.NullString) = sql.NullString{String: "Austin", Valid: true}
	*dest[10].(*sql.NullString) = sql.NullString{String: "https://acme.example", Valid: true}
	*dest[22].(*[]byte) = []byte(`{"ideal_client":{"is_ideal":true,"score":82,"reasoning":"fits","source":"local","generated_at":"2024-01-02T03:04:05Z"}}`)
	*dest[23].(*time.Time) = created
	*dest[24].(*time.Time) = created
}

func TestPGXCompaniesRepository_Get(t *testing.T) {
	var gotQuery string
	repo := &PGXCompaniesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery = query
			return &stubRow{scan: func(dest ...any) error {
				if len(dest) != 25 {
					t.Fatalf("expected 25 scan targets, got %d", len(dest))
				}
				fillCompanyRow(dest, "Acme")
				return nil
			}}
		},
	}}

	company, err := repo.Get(context.Background(), testCompanyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "WHERE id = $1") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if company.Name != "Acme" || entity.Value(company.Industry) != "Software" || entity.Value(company.City) != "Austin" {
		t.Fatalf("unexpected company: %+v", company)
	}
	if entity.Value(company.Website) != "https://acme.example" || company.Phone != nil {
		t.Fatalf("unexpected optional fields: %+v", company)
	}
	if company.Insights.IdealClient == nil || company.Insights.IdealClient.Score != 82 {
		t.Fatalf("expected insights to be decoded, got %+v", company.Insights)
	}
}

func TestPGXCompaniesRepository_GetNotFound(t *testing.T) {
	repo := &PGXCompaniesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}}
	if _, err := repo.FindByName(context.Background(), "missing"); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestPGXCompaniesRepository_CreateDuplicate(t *testing.T) {
	repo := &PGXCompaniesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: pgUniqueViolation}
			}}
		},
	}}
	err := repo.Create(context.Background(), &entity.Company{Name: "Acme"})
	if !errors.Is(err, ErrDuplicateCompany) {
		t.Fatalf("expected ErrDuplicateCompany, got %v", err)
	}
	if err := repo.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil company")
	}
}

func TestPGXCompaniesRepository_CreateArgs(t *testing.T) {
	city := "Austin"
	empty := ""
	var args []any
	repo := &PGXCompaniesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, a ...any) pgx.Row {
			args = a
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*uuid.UUID) = testCompanyID
				return nil
			}}
		},
	}}

	company := &entity.Company{Name: "  Acme ", City: &city, Phone: &empty}
	if err := repo.Create(context.Background(), company); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if company.ID != testCompanyID {
		t.Fatalf("expected generated id to be set")
	}
	if len(args) != 22 {
		t.Fatalf("expected 22 args, got %d", len(args))
	}
	if args[0] != "Acme" || args[5] != "Austin" || args[10] != nil {
		t.Fatalf("unexpected args: %v", args)
	}
	if args[21] != "{}" {
		t.Fatalf("expected empty insights document, got %v", args[21])
	}
}

func TestPGXCompaniesRepository_FindOrCreate(t *testing.T) {
	repo := &PGXCompaniesRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			if !strings.Contains(query, "ON CONFLICT ((LOWER(name)))") {
				t.Fatalf("expected case-insensitive upsert, got %s", query)
			}
			return &stubRow{scan: func(dest ...any) error {
				fillCompanyRow(dest, "ACME")
				*dest[25].(*bool) = false
				return nil
			}}
		},
	}}

	company := &entity.Company{Name: "acme"}
	inserted, err := repo.FindOrCreate(context.Background(), company)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Fatalf("expected existing company to be matched")
	}
	if company.ID != testCompanyID || company.Name != "ACME" {
		t.Fatalf("expected stored company, got %+v", company)
	}

	if _, err := repo.FindOrCreate(context.Background(), &entity.Company{Name: " "}); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestPGXCompaniesRepository_List(t *testing.T) {
	ideal := true
	var (
		gotQuery string
		gotArgs  []any
	)
	repo := &PGXCompaniesRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			gotQuery, gotArgs = query, args
			return &stubRows{scans: []func(dest ...any) error{
				func(dest ...any) error { fillCompanyRow(dest, "Acme"); return nil },
				func(dest ...any) error { fillCompanyRow(dest, "Globex"); return nil },
			}}, nil
		},
	}}

	companies, err := repo.List(context.Background(), dto.ListFilter{Q: "ac", City: "austin", Ideal: &ideal, Sort: "name", Pagination: dto.Pagination{Page: 2, PerPage: 500}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(companies) != 2 || companies[1].Name != "Globex" {
		t.Fatalf("unexpected companies: %+v", companies)
	}
	for _, fragment := range []string{"name ILIKE $1", "LOWER(city) = LOWER($2)", "is_ideal", "ORDER BY LOWER(name) ASC", "LIMIT $4 OFFSET $5"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("expected %q in query: %s", fragment, gotQuery)
		}
	}
	if gotArgs[0] != "%ac%" || gotArgs[3] != 100 || gotArgs[4] != 100 {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
}

func TestPGXCompaniesRepository_Delete(t *testing.T) {
	var statements []string
	tx := &stubTx{execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
		statements = append(statements, query)
		if strings.Contains(query, "FROM companies") {
			return pgconn.NewCommandTag("DELETE 1"), nil
		}
		return pgconn.NewCommandTag("DELETE 3"), nil
	}}
	repo := &PGXCompaniesRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	if err := repo.Delete(context.Background(), testCompanyID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statements) != 2 || !strings.Contains(statements[0], "FROM contacts") {
		t.Fatalf("expected contacts to be deleted first, got %v", statements)
	}
	if !tx.committed {
		t.Fatalf("expected commit")
	}
}

func TestPGXCompaniesRepository_DeleteNotFound(t *testing.T) {
	tx := &stubTx{execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("DELETE 0"), nil
	}}
	repo := &PGXCompaniesRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}
	if err := repo.Delete(context.Background(), testCompanyID); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("expected rollback without commit")
	}
}

func TestPGXCompaniesRepository_UpdateScripts(t *testing.T) {
	var gotArgs []any
	repo := &PGXCompaniesRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			gotArgs = args
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}}
	err := repo.UpdateScripts(context.Background(), testCompanyID, entity.OutreachScripts{Call: "call", Email: "email"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotArgs[1] != "call" || gotArgs[3] != "" {
		t.Fatalf("unexpected args: %v", gotArgs)
	}

	repo.pool = &stubPool{execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}}
	if err := repo.UpdateInsights(context.Background(), testCompanyID, entity.CompanyInsights{}); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestPGXCompaniesRepository_BulkUpsert(t *testing.T) {
	calls := 0
	tx := &stubTx{queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
		calls++
		inserted := calls == 1
		return &stubRow{scan: func(dest ...any) error {
			*dest[0].(*bool) = inserted
			return nil
		}}
	}}
	repo := &PGXCompaniesRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	result, err := repo.BulkUpsert(context.Background(), []entity.Company{{Name: "Acme"}, {Name: "acme"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inserted != 1 || result.Updated != 1 || result.Total != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !tx.committed {
		t.Fatalf("expected commit")
	}

	empty, err := (&PGXCompaniesRepository{pool: &stubPool{}}).BulkUpsert(context.Background(), nil)
	if err != nil || empty.Total != 0 {
		t.Fatalf("expected empty result, got %+v %v", empty, err)
	}
}

func TestHelperConversions(t *testing.T) {
	if stringOrNil(nil) != nil {
		t.Fatalf("expected nil for nil pointer")
	}
	blank := ""
	if stringOrNil(&blank) != nil {
		t.Fatalf("expected nil for blank string")
	}
	val := "x"
	if stringOrNil(&val) != "x" {
		t.Fatalf("expected value")
	}
	if nullStringToPtr(sql.NullString{}) != nil {
		t.Fatalf("expected nil for invalid null string")
	}
	if timeOrNil(&time.Time{}) != nil {
		t.Fatalf("expected nil for zero time")
	}
	if limit, offset := pagination(dto.Pagination{}); limit != 20 || offset != 0 {
		t.Fatalf("unexpected defaults: %d %d", limit, offset)
	}
	if got := prefixedCompanyColumns("c"); !strings.HasPrefix(got, "c.id, c.name") || !strings.HasSuffix(got, "c.updated_at") {
		t.Fatalf("unexpected prefixed columns: %s", got)
	}
}
