package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Meta    *PageMeta `json:"meta,omitempty"`
}

// PageMeta describes the page returned by list endpoints. Count is the number
// of items on this page; HasMore is set when the page was full.
type PageMeta struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// NewPageMeta builds the meta block for a page of count items.
func NewPageMeta(page, perPage, count int) *PageMeta {
	return &PageMeta{Page: page, PerPage: perPage, Count: count, HasMore: perPage > 0 && count >= perPage}
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	return SuccessPage(c, status, message, data, nil)
}

// SuccessPage is Success with a pagination block.
func SuccessPage(c echo.Context, status int, message string, data any, meta *PageMeta) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:  "error",
		Message: message,
	})
}
