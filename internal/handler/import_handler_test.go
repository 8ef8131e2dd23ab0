package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/repository"
	"github.com/octobees/leadgenius/api/internal/service"
)

func newImportHandler(repo *stubCompaniesRepository) *CompanyImportHandler {
	return NewCompanyImportHandler(service.NewCompaniesService(repo, newStubContacts(), &stubInsightsRepository{}))
}

func TestCompanyImportHandler_MissingFile(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/companies/import-csv", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newImportHandler(newStubCompanies())
	_ = handler.UploadCSV(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCompanyImportHandler_InvalidCSV(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "test.csv", "industry,city\nDentist,Austin\n")
	c := e.NewContext(req, rec)

	handler := newImportHandler(newStubCompanies())
	_ = handler.UploadCSV(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid csv, got %d", rec.Code)
	}
}

func TestCompanyImportHandler_RepositoryError(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "test.csv", validCSV())
	c := e.NewContext(req, rec)

	repo := newStubCompanies()
	repo.bulk = func(ctx context.Context, companies []entity.Company) (repository.BulkUpsertResult, error) {
		return repository.BulkUpsertResult{}, context.DeadlineExceeded
	}

	_ = newImportHandler(repo).UploadCSV(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCompanyImportHandler_Success(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "test.csv", validCSV())
	c := e.NewContext(req, rec)

	repo := newStubCompanies()
	repo.bulk = func(ctx context.Context, companies []entity.Company) (repository.BulkUpsertResult, error) {
		if len(companies) != 1 {
			t.Fatalf("expected 1 record, got %d", len(companies))
		}
		if companies[0].Name != "Acme Dental" || entity.Value(companies[0].Industry) != "Dentist" {
			t.Fatalf("unexpected record: %+v", companies[0])
		}
		return repository.BulkUpsertResult{Inserted: 1, Total: 1}, nil
	}

	_ = newImportHandler(repo).UploadCSV(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary service.UploadSummary
	decodeEnvelope(t, rec, &summary)
	if summary.Inserted != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCompanyImportHandler_RejectsOtherFiles(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "leads.xlsx", validCSV())
	c := e.NewContext(req, rec)

	_ = newImportHandler(newStubCompanies()).UploadCSV(c)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestCompanyImportHandler_AcceptsUppercaseExtension(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "LEADS.CSV", validCSV())
	c := e.NewContext(req, rec)

	_ = newImportHandler(newStubCompanies()).UploadCSV(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func multipartRequest(t *testing.T, field, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/companies/import-csv", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

func validCSV() string {
	return "company,type_business,city,website\nAcme Dental,Dentist,Austin,https://acme.example\n,Plumber,Dallas,\n"
}
