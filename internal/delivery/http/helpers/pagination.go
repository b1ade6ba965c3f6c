package helpers

import (
	"fmt"
	"net/url"
	"strconv"

	"roombooking/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from q. ok is false when neither is
// present, which leaves a listing unpaginated. A value that is not a positive
// integer is an error naming the parameter; page_size is capped at MaxPageSize.
func ParsePagination(q url.Values) (p domain.PaginationParams, ok bool, err error) {
	if !q.Has("page") && !q.Has("page_size") {
		return domain.PaginationParams{}, false, nil
	}
	p = domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}
	if q.Has("page") {
		if p.Page, err = positiveInt(q, "page"); err != nil {
			return domain.PaginationParams{}, false, err
		}
	}
	if q.Has("page_size") {
		if p.PageSize, err = positiveInt(q, "page_size"); err != nil {
			return domain.PaginationParams{}, false, err
		}
		p.PageSize = min(p.PageSize, MaxPageSize)
	}
	return p, true, nil
}

func positiveInt(q url.Values, key string) (int, error) {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return v, nil
}

// PaginationMeta describes the page returned by a paginated booking listing.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta reports p against total matching bookings.
func NewPaginationMeta(p domain.PaginationParams, total int) PaginationMeta {
	meta := PaginationMeta{Page: p.Page, PageSize: p.PageSize, Total: total}
	if p.PageSize > 0 {
		meta.TotalPages = (total + p.PageSize - 1) / p.PageSize
	}
	return meta
}
