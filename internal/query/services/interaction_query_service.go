package services

import (
	"context"
	"errors"
	"time"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"github.com/zatekoja/collectionsdesk/internal/query/loaders"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// InteractionQueryService answers filtered, paginated interaction queries
type InteractionQueryService struct {
	matcher      *CustomerMatcher
	executor     repositories.InteractionJoinExecutor
	customerRepo repositories.CustomerRepository
	timeout      time.Duration
	metrics      *observability.Metrics
}

// NewInteractionQueryService creates a new interaction query service.
// A zero timeout leaves the caller's deadline in charge.
func NewInteractionQueryService(
	customerRepo repositories.CustomerRepository,
	executor repositories.InteractionJoinExecutor,
	timeout time.Duration,
	metrics *observability.Metrics,
) *InteractionQueryService {
	return &InteractionQueryService{
		matcher:      NewCustomerMatcher(customerRepo),
		executor:     executor,
		customerRepo: customerRepo,
		timeout:      timeout,
		metrics:      metrics,
	}
}

// QueryInteractions returns one page of flattened interaction rows and the size of the
// whole filtered set. Rows and total are read concurrently once the scope is compiled.
func (s *InteractionQueryService) QueryInteractions(ctx context.Context, criteria FilterCriteria) (*InteractionPage, error) {
	ctx, span := observability.StartSpan(ctx, "InteractionQueryService.QueryInteractions")
	defer span.End()

	logger := observability.LoggerFromContext(ctx)

	valid, err := criteria.validate()
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx = loaders.WithLoaders(ctx, loaders.NewLoaders(s.customerRepo))

	page := &InteractionPage{
		Rows:     []*entities.FlatInteractionRow{},
		Page:     valid.page,
		PageSize: valid.pageSize,
	}

	match, err := s.matcher.Match(ctx, valid.customer)
	if err != nil {
		observability.RecordError(span, err)
		return nil, timeoutAware(ctx, err)
	}
	if match.Empty() {
		observability.RecordShortCircuit(ctx, s.metrics)
		logger.Debug().Msg("No customer matched the supplied fragments, skipping interaction store")
		return page, nil
	}

	scope := CompileScope(match, valid.day)
	window, inRange := repositories.PageWindow(valid.page, valid.pageSize)

	span.SetAttributes(
		attribute.Bool("scope.restricted", scope.Restricted),
		attribute.Int("scope.customers", len(scope.CustomerIDs)),
		attribute.Bool("scope.date", scope.HasDateRange()),
		attribute.Int("page", valid.page),
		attribute.Int("page_size", valid.pageSize),
	)

	g, gctx := errgroup.WithContext(ctx)

	if inRange {
		g.Go(func() error {
			rows, err := s.executor.FlattenedRows(gctx, scope, window)
			if err != nil {
				return err
			}
			if rows != nil {
				page.Rows = rows
			}
			return nil
		})
	}

	g.Go(func() error {
		total, err := s.executor.CountRows(gctx, scope)
		if err != nil {
			return err
		}
		page.Total = total
		return nil
	})

	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Msg("Interaction query failed")
		return nil, timeoutAware(ctx, err)
	}

	span.SetAttributes(
		attribute.Int("rows.returned", len(page.Rows)),
		attribute.Int64("rows.total", page.Total),
	)
	logger.Debug().
		Int("rows", len(page.Rows)).
		Int64("total", page.Total).
		Msg("Interaction query completed")

	return page, nil
}

// timeoutAware reports an expired query deadline as StoreUnavailable
func timeoutAware(ctx context.Context, err error) error {
	if apperrors.IsType(err, apperrors.ErrorTypeStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewStoreUnavailableError("interaction query timed out", err)
	}
	if apperrors.TypeOf(err) == "" {
		return apperrors.NewStoreUnavailableError("interaction query failed", err)
	}
	return err
}
