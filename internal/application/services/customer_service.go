package services

import (
	"context"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// lastContactLookups bounds concurrent per-customer lookups of a directory page
const lastContactLookups = 8

// CustomerSummary is a customer with the time of their most recent interaction
type CustomerSummary struct {
	*entities.Customer
	LastContactedOn   string `json:"last_contacted_on,omitempty"`
	LastContactedDate string `json:"last_contacted_date,omitempty"`
}

// CustomerPage is one page of the customer directory
type CustomerPage struct {
	Customers []*CustomerSummary `json:"customers"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

// CustomerService serves the customer directory.
type CustomerService struct {
	repo     repositories.CustomerRepository
	executor repositories.InteractionJoinExecutor
}

// NewCustomerService creates a new customer service.
func NewCustomerService(repo repositories.CustomerRepository, executor repositories.InteractionJoinExecutor) *CustomerService {
	return &CustomerService{repo: repo, executor: executor}
}

// List returns a page of customers with their last contact.
func (s *CustomerService) List(ctx context.Context, page, limit int) (*CustomerPage, error) {
	if limit <= 0 {
		return nil, apperrors.NewValidationError("limit must be positive")
	}

	result := &CustomerPage{Customers: []*CustomerSummary{}, Page: page, Limit: limit}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	result.Total = total

	window, inRange := repositories.PageWindow(page, limit)
	if !inRange {
		return result, nil
	}

	customers, err := s.repo.List(ctx, window.Limit, window.Offset)
	if err != nil {
		return nil, err
	}

	summaries := make([]*CustomerSummary, len(customers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lastContactLookups)
	for i, c := range customers {
		g.Go(func() error {
			summary, err := s.summarize(gctx, c)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Customers = summaries
	return result, nil
}

// Get returns one customer with their last contact.
func (s *CustomerService) Get(ctx context.Context, id string) (*CustomerSummary, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.NewNotFoundError("customer " + id + " not found")
	}
	return s.summarize(ctx, customer)
}

// summarize reads the customer's newest interaction through the same ordering as the
// interaction list, as a one-row window
func (s *CustomerService) summarize(ctx context.Context, c *entities.Customer) (*CustomerSummary, error) {
	scope := repositories.InteractionScope{
		Restricted:    true,
		CustomerIDs:   []string{c.ID},
		CustomerNames: map[string]string{c.ID: c.DisplayName()},
	}

	rows, err := s.executor.FlattenedRows(ctx, scope, repositories.Window{Limit: 1})
	if err != nil {
		return nil, err
	}

	summary := &CustomerSummary{Customer: c}
	if len(rows) > 0 {
		summary.LastContactedOn = rows[0].StartTime
		summary.LastContactedDate = rows[0].InteractionDate
	}
	return summary, nil
}
