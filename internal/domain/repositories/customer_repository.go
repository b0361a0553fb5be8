package repositories

import (
	"context"
	"strings"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
)

// CustomerRepository defines the read operations on the customer store
type CustomerRepository interface {
	// FindMatching returns every customer satisfying all fragments of the filter
	FindMatching(ctx context.Context, filter CustomerFilter) ([]*entities.Customer, error)

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id string) (*entities.Customer, error)

	// GetByIDs retrieves the customers that exist among ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Customer, error)

	// List retrieves a page of customers ordered by last then first name
	List(ctx context.Context, limit, offset int) ([]*entities.Customer, error)

	// Count returns the number of customers
	Count(ctx context.Context) (int64, error)
}

// CustomerFilter holds the customer-side fragments of a query
type CustomerFilter struct {
	NameTokens []string
	Email      string
	Phone      string
}

// NewCustomerFilter splits the name fragment into tokens and trims the rest
func NewCustomerFilter(name, email, phone string) CustomerFilter {
	return CustomerFilter{
		NameTokens: strings.Fields(name),
		Email:      strings.TrimSpace(email),
		Phone:      strings.TrimSpace(phone),
	}
}

// IsEmpty reports whether no fragment was supplied
func (f CustomerFilter) IsEmpty() bool {
	return len(f.NameTokens) == 0 && f.Email == "" && f.Phone == ""
}

// Matches evaluates the filter against a single customer
func (f CustomerFilter) Matches(c *entities.Customer) bool {
	return c.MatchesFragments(f.NameTokens, f.Email, f.Phone)
}
