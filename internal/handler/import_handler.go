package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/service"
)

// maxImportBytes caps uploaded CSV files.
const maxImportBytes = 10 << 20

// CompanyImportHandler ingests company spreadsheets exported from Google Maps
// scrapes or other CRMs.
type CompanyImportHandler struct {
	companies *service.CompaniesService
}

// NewCompanyImportHandler wires a handler backed by the companies service.
func NewCompanyImportHandler(companies *service.CompaniesService) *CompanyImportHandler {
	return &CompanyImportHandler{companies: companies}
}

// UploadCSV handles POST /companies/import-csv. The file goes in the "file"
// multipart field; rows without a company name are skipped and counted.
func (h *CompanyImportHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return Error(c, http.StatusUnsupportedMediaType, "only .csv files are accepted")
	}
	if fileHeader.Size > maxImportBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "csv file exceeds 10MB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.companies.ImportCompaniesCSV(c.Request().Context(), file)
	if err != nil {
		return respondError(c, err, "failed to process csv")
	}

	return Success(c, http.StatusOK, "companies CSV processed", summary)
}
