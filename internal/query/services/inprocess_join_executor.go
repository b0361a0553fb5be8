package services

import (
	"context"
	"time"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"github.com/zatekoja/collectionsdesk/internal/query/loaders"
	"go.opentelemetry.io/otel/attribute"
)

// InProcessJoinExecutor reads interaction logs and joins them with customers in memory.
// It suits stores without server-side aggregation and is the reference behaviour the
// store-pushed executors are tested against.
type InProcessJoinExecutor struct {
	logRepo      repositories.InteractionLogRepository
	customerRepo repositories.CustomerRepository
	metrics      *observability.Metrics
}

// NewInProcessJoinExecutor creates a new in-process join executor
func NewInProcessJoinExecutor(
	logRepo repositories.InteractionLogRepository,
	customerRepo repositories.CustomerRepository,
	metrics *observability.Metrics,
) *InProcessJoinExecutor {
	return &InProcessJoinExecutor{
		logRepo:      logRepo,
		customerRepo: customerRepo,
		metrics:      metrics,
	}
}

// FlattenedRows implements repositories.InteractionJoinExecutor
func (e *InProcessJoinExecutor) FlattenedRows(ctx context.Context, scope repositories.InteractionScope, window repositories.Window) ([]*entities.FlatInteractionRow, error) {
	ctx, span := observability.StartSpan(ctx, "InProcessJoinExecutor.FlattenedRows")
	defer span.End()

	logs, err := e.listLogs(ctx, scope)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	names := scope.CustomerNames
	if !scope.Restricted {
		names, err = e.resolveNames(ctx, logs)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
	}

	var rows []*entities.FlatInteractionRow
	for _, log := range logs {
		rows = append(rows, log.Flatten(names[log.CustomerID], eventFilter(scope))...)
	}
	entities.SortRows(rows)

	span.SetAttributes(attribute.Int("rows.universe", len(rows)))
	return ApplyWindow(rows, window), nil
}

// CountRows implements repositories.InteractionJoinExecutor
func (e *InProcessJoinExecutor) CountRows(ctx context.Context, scope repositories.InteractionScope) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "InProcessJoinExecutor.CountRows")
	defer span.End()

	logs, err := e.listLogs(ctx, scope)
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}

	keep := eventFilter(scope)
	var total int64
	for _, log := range logs {
		for _, event := range log.Events {
			if keep(event) {
				total++
			}
		}
	}
	return total, nil
}

func (e *InProcessJoinExecutor) listLogs(ctx context.Context, scope repositories.InteractionScope) ([]*entities.InteractionLog, error) {
	var ids []string
	if scope.Restricted {
		if len(scope.CustomerIDs) == 0 {
			return nil, nil
		}
		ids = scope.CustomerIDs
	}

	start := time.Now()
	logs, err := e.logRepo.List(ctx, ids)
	observability.RecordStoreMetric(ctx, e.metrics, "interaction_logs.list", time.Since(start))
	if err != nil {
		return nil, asStoreError("failed to list interaction logs", err)
	}
	return logs, nil
}

// resolveNames looks up owners of the given logs through the request's customer loader
func (e *InProcessJoinExecutor) resolveNames(ctx context.Context, logs []*entities.InteractionLog) (map[string]string, error) {
	seen := make(map[string]struct{}, len(logs))
	ids := make([]string, 0, len(logs))
	for _, log := range logs {
		if _, ok := seen[log.CustomerID]; ok || log.CustomerID == "" {
			continue
		}
		seen[log.CustomerID] = struct{}{}
		ids = append(ids, log.CustomerID)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(e.customerRepo)
	}
	names, err := l.DisplayNames(ctx, ids)
	if err != nil {
		return nil, asStoreError("failed to resolve customer names", err)
	}
	return names, nil
}

func eventFilter(scope repositories.InteractionScope) func(entities.InteractionEvent) bool {
	return func(event entities.InteractionEvent) bool {
		return scope.AcceptsDate(event.InteractionDate)
	}
}
