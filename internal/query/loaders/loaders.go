package loaders

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains the request-scoped dataloaders
type Loaders struct {
	// CustomerLoader resolves customer ids; an id with no customer yields nil data, not an error
	CustomerLoader *dataloader.Loader[string, *entities.Customer]
}

// NewLoaders creates a new instance of Loaders. Loaders cache results, so create one per request.
func NewLoaders(customerRepo repositories.CustomerRepository) *Loaders {
	return &Loaders{
		CustomerLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Customer] {
			results := make([]*dataloader.Result[*entities.Customer], len(keys))
			customers, err := customerRepo.GetByIDs(ctx, keys)

			customerMap := make(map[string]*entities.Customer, len(customers))
			if err == nil {
				for _, c := range customers {
					customerMap[c.ID] = c
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Customer]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Customer]{Data: customerMap[key]}
				}
			}
			return results
		}, dataloader.WithBatchCapacity[string, *entities.Customer](500)),
	}
}

// DisplayNames resolves ids to display names. Ids without a customer are absent from the map.
func (l *Loaders) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	customers, errs := l.CustomerLoader.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	names := make(map[string]string, len(customers))
	for i, c := range customers {
		if c != nil && i < len(ids) {
			names[ids[i]] = c.DisplayName()
		}
	}
	return names, nil
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
