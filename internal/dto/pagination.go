package dto

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Pagination is the page window shared by list endpoints.
type Pagination struct {
	Page    int
	PerPage int
}

// Normalized clamps the window to page >= 1 and 1..100 items per page.
func (p Pagination) Normalized() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p Pagination) Offset() int {
	p = p.Normalized()
	return (p.Page - 1) * p.PerPage
}
