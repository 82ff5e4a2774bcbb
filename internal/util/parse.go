package util

import (
	"strconv"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// Pagination is a 1-based page window
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the row offset for the window
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads page/limit query values, falling back to
// page 1 and defaultLimit and capping limit at maxLimit.
func ParsePagination(page, limit string, defaultLimit, maxLimit int) Pagination {
	p := Pagination{Page: ParseInt(page, 1), Limit: ParseInt(limit, defaultLimit)}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
