package services

import (
	"context"

	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// CustomerMatch is the outcome of resolving customer fragments
type CustomerMatch struct {
	// Restricted is false when no fragment was supplied; IDs and Names are then nil
	Restricted bool
	IDs        []string
	Names      map[string]string
}

// Empty reports whether fragments were supplied and nothing matched
func (m *CustomerMatch) Empty() bool {
	return m.Restricted && len(m.IDs) == 0
}

// CustomerMatcher resolves name, email and phone fragments to a set of customers
type CustomerMatcher struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerMatcher creates a new customer matcher
func NewCustomerMatcher(customerRepo repositories.CustomerRepository) *CustomerMatcher {
	return &CustomerMatcher{customerRepo: customerRepo}
}

// Match returns the matching customers. Without fragments the store is not queried.
func (m *CustomerMatcher) Match(ctx context.Context, filter repositories.CustomerFilter) (*CustomerMatch, error) {
	if filter.IsEmpty() {
		return &CustomerMatch{}, nil
	}

	ctx, span := observability.StartSpan(ctx, "CustomerMatcher.Match")
	defer span.End()

	customers, err := m.customerRepo.FindMatching(ctx, filter)
	if err != nil {
		observability.RecordError(span, err)
		return nil, asStoreError("failed to match customers", err)
	}

	match := &CustomerMatch{
		Restricted: true,
		IDs:        make([]string, 0, len(customers)),
		Names:      make(map[string]string, len(customers)),
	}
	for _, c := range customers {
		if _, seen := match.Names[c.ID]; seen {
			continue
		}
		match.IDs = append(match.IDs, c.ID)
		match.Names[c.ID] = c.DisplayName()
	}

	span.SetAttributes(attribute.Int("customers.matched", len(match.IDs)))
	observability.LoggerFromContext(ctx).Debug().
		Strs("name_tokens", filter.NameTokens).
		Bool("email", filter.Email != "").
		Bool("phone", filter.Phone != "").
		Int("matched", len(match.IDs)).
		Msg("Resolved customer fragments")

	return match, nil
}

// asStoreError keeps typed application errors and wraps everything else as StoreUnavailable
func asStoreError(msg string, err error) error {
	if apperrors.TypeOf(err) != "" {
		return err
	}
	return apperrors.NewStoreUnavailableError(msg, err)
}
