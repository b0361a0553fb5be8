package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

// FilterCriteria is the caller's request to the interaction retrieval engine
type FilterCriteria struct {
	// Date selects a single civil day (UTC); empty means any day
	Date          string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	// Page is 1-based
	Page     int
	PageSize int
}

// InteractionPage is one window of the ordered result plus the size of the whole result
type InteractionPage struct {
	Rows     []*entities.FlatInteractionRow `json:"rows"`
	Total    int64                          `json:"total"`
	Page     int                            `json:"page"`
	PageSize int                            `json:"limit"`
}

// TotalPages returns the number of pages of PageSize rows needed for Total
func (p *InteractionPage) TotalPages() int64 {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return (p.Total + size - 1) / size
}

// validCriteria is FilterCriteria after validation
type validCriteria struct {
	day      *time.Time
	customer repositories.CustomerFilter
	page     int
	pageSize int
}

func (c FilterCriteria) validate() (*validCriteria, error) {
	if c.PageSize <= 0 {
		return nil, apperrors.NewInvalidCriteriaError(fmt.Sprintf("page size must be positive, got %d", c.PageSize))
	}

	v := &validCriteria{
		customer: repositories.NewCustomerFilter(c.CustomerName, c.CustomerEmail, c.CustomerPhone),
		page:     c.Page,
		pageSize: c.PageSize,
	}

	if date := strings.TrimSpace(c.Date); date != "" {
		t, ok := entities.ParseInteractionDate(date)
		if !ok {
			return nil, apperrors.NewInvalidCriteriaError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", c.Date))
		}
		day := entities.CivilDay(t)
		v.day = &day
	}

	return v, nil
}

// ApplyWindow returns the rows of an ordered slice selected by window
func ApplyWindow[T any](rows []T, window repositories.Window) []T {
	if window.Offset >= len(rows) || window.Limit <= 0 || window.Offset < 0 {
		return []T{}
	}
	end := window.Offset + window.Limit
	if end > len(rows) || end < window.Offset {
		end = len(rows)
	}
	return rows[window.Offset:end]
}
