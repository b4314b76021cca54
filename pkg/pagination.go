package pkg

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 15
	MinPerPage     = 5
	MaxPerPage     = 100
)

// PageParams is a parsed page/per_page pair.
type PageParams struct {
	Page    int
	PerPage int
}

// Offset returns the SQL OFFSET for the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is the paginated list payload.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// NewPage wraps one page of items. Data is never null in JSON.
func NewPage[T any](items []T, total int, p PageParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if p.PerPage > 0 && total > 0 {
		last = (total + p.PerPage - 1) / p.PerPage
	}
	return Page[T]{
		Data:        items,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       total,
		LastPage:    last,
	}
}

// ParsePageParams reads page and per_page. per_page outside [MinPerPage,
// MaxPerPage] or a non-numeric value is rejected.
func ParsePageParams(q url.Values, defaultPerPage int) (PageParams, error) {
	p := PageParams{Page: 1, PerPage: defaultPerPage}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: page must be a positive integer", ErrUnprocessable)
		}
		p.Page = n
	}

	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < MinPerPage || n > MaxPerPage {
			return p, fmt.Errorf("%w: per_page must be between %d and %d", ErrUnprocessable, MinPerPage, MaxPerPage)
		}
		p.PerPage = n
	}

	return p, nil
}
