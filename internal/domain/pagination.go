package domain

// PaginationParams holds offset-based pagination parameters for list queries.
// A zero PageSize means "no limit".
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Window returns the [lo, hi) slice bounds of the current page within n items.
func (p PaginationParams) Window(n int) (lo, hi int) {
	if p.PageSize <= 0 {
		return 0, n
	}
	lo = min(p.Offset(), n)
	hi = min(lo+p.PageSize, n)
	return lo, hi
}
