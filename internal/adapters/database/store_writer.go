package database

import (
	"context"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

// StoreWriter implements repositories.StoreWriter over the relational layout
type StoreWriter struct {
	client       *postgres.Client
	db           *goqu.Database
	interactions *InteractionAdapter
}

// NewStoreWriter creates a new relational store writer
func NewStoreWriter(client *postgres.Client) repositories.StoreWriter {
	return &StoreWriter{
		client:       client,
		db:           client.Goqu(),
		interactions: NewInteractionAdapter(client, nil),
	}
}

// SaveCustomer implements repositories.StoreWriter
func (w *StoreWriter) SaveCustomer(ctx context.Context, c *entities.Customer) error {
	var plan interface{}
	if c.PaymentPlan != nil {
		encoded, err := json.Marshal(c.PaymentPlan)
		if err != nil {
			return apperrors.NewInternalError("failed to encode payment plan", err)
		}
		plan = string(encoded)
	}

	record := goqu.Record{
		"first_name":        c.FirstName,
		"middle_name":       c.MiddleName,
		"last_name":         c.LastName,
		"email":             c.Email,
		"mob_number":        c.Phone,
		"house_number":      c.Address.HouseNumber,
		"street_name":       c.Address.StreetName,
		"suburb":            c.Address.Suburb,
		"state":             c.Address.State,
		"post_code":         c.Address.PostCode,
		"total_outstanding": c.DebtDetails.TotalOutstanding,
		"payment_plan":      plan,
	}
	insert := goqu.Record{"id": c.ID}
	for k, v := range record {
		insert[k] = v
	}

	query, args, err := w.db.Insert("customers").
		Rows(insert).
		OnConflict(goqu.DoUpdate("id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build customer upsert", err)
	}

	if _, err := w.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStoreUnavailableError("failed to save customer", err)
	}
	return nil
}

// SaveInteractionLog implements repositories.StoreWriter
func (w *StoreWriter) SaveInteractionLog(ctx context.Context, log *entities.InteractionLog) error {
	return w.interactions.InsertLog(ctx, log)
}

// Reset implements repositories.StoreWriter
func (w *StoreWriter) Reset(ctx context.Context) error {
	_, err := w.client.DB().ExecContext(ctx, `TRUNCATE TABLE interaction_events, interaction_logs, customers`)
	if err != nil {
		return apperrors.NewStoreUnavailableError("failed to reset store", err)
	}
	return nil
}
