package dto

import "testing"

func TestPaginationNormalized(t *testing.T) {
	tests := map[string]struct {
		in     Pagination
		want   Pagination
		offset int
	}{
		"defaults":     {in: Pagination{}, want: Pagination{Page: 1, PerPage: 20}, offset: 0},
		"third page":   {in: Pagination{Page: 3, PerPage: 10}, want: Pagination{Page: 3, PerPage: 10}, offset: 20},
		"capped":       {in: Pagination{Page: 2, PerPage: 500}, want: Pagination{Page: 2, PerPage: 100}, offset: 100},
		"negative in":  {in: Pagination{Page: -1, PerPage: -5}, want: Pagination{Page: 1, PerPage: 20}, offset: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.in.Normalized(); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
			if got := tt.in.Offset(); got != tt.offset {
				t.Fatalf("expected offset %d, got %d", tt.offset, got)
			}
		})
	}
}
