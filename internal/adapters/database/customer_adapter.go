package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

var customerColumns = []interface{}{
	"id", "first_name", "middle_name", "last_name", "email", "mob_number",
	"house_number", "street_name", "suburb", "state", "post_code",
	"total_outstanding", "payment_plan",
}

// CustomerAdapter implements the CustomerRepository interface
type CustomerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCustomerAdapter creates a new customer adapter
func NewCustomerAdapter(client *postgres.Client) repositories.CustomerRepository {
	return &CustomerAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// CustomerConditions translates fragments into ILIKE conditions, one per fragment
func CustomerConditions(filter repositories.CustomerFilter) []exp.Expression {
	var conds []exp.Expression
	for _, token := range filter.NameTokens {
		pattern := containsPattern(token)
		conds = append(conds, goqu.Or(
			goqu.I("first_name").ILike(pattern),
			goqu.I("last_name").ILike(pattern),
		))
	}
	if filter.Email != "" {
		conds = append(conds, goqu.I("email").ILike(containsPattern(filter.Email)))
	}
	if filter.Phone != "" {
		conds = append(conds, goqu.I("mob_number").ILike(containsPattern(filter.Phone)))
	}
	return conds
}

// FindMatching returns every customer satisfying all fragments
func (a *CustomerAdapter) FindMatching(ctx context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error) {
	ds := a.db.Select(customerColumns...).From("customers").
		Where(CustomerConditions(filter)...).
		Order(goqu.I("id").Asc())
	return a.query(ctx, ds, "failed to match customers")
}

// GetByID retrieves a customer by ID
func (a *CustomerAdapter) GetByID(ctx context.Context, id string) (*entities.Customer, error) {
	query, args, err := a.db.Select(customerColumns...).From("customers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	customer, err := scanCustomer(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, readError(fmt.Sprintf("customer with id %s not found", id), err)
	}
	return customer, nil
}

// GetByIDs retrieves the customers that exist among ids
func (a *CustomerAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Customer, error) {
	if len(ids) == 0 {
		return []*entities.Customer{}, nil
	}
	ds := a.db.Select(customerColumns...).From("customers").
		Where(goqu.I("id").In(ids))
	return a.query(ctx, ds, "failed to get customers")
}

// List retrieves a page of customers ordered by name
func (a *CustomerAdapter) List(ctx context.Context, limit, offset int) ([]*entities.Customer, error) {
	ds := a.db.Select(customerColumns...).From("customers").
		Order(goqu.I("last_name").Asc(), goqu.I("first_name").Asc(), goqu.I("id").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	return a.query(ctx, ds, "failed to list customers")
}

// Count returns the number of customers
func (a *CustomerAdapter) Count(ctx context.Context) (int64, error) {
	query, args, err := a.db.Select(goqu.COUNT(goqu.Star())).From("customers").ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.NewStoreUnavailableError("failed to count customers", err)
	}
	return total, nil
}

func (a *CustomerAdapter) query(ctx context.Context, ds *goqu.SelectDataset, msg string) ([]*entities.Customer, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(msg, err)
	}
	defer rows.Close()

	customers := []*entities.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("failed to scan customer", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError(msg, err)
	}
	return customers, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row scanner) (*entities.Customer, error) {
	c := &entities.Customer{}
	var plan []byte

	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.MiddleName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Address.HouseNumber,
		&c.Address.StreetName,
		&c.Address.Suburb,
		&c.Address.State,
		&c.Address.PostCode,
		&c.DebtDetails.TotalOutstanding,
		&plan,
	)
	if err != nil {
		return nil, err
	}

	if len(plan) > 0 {
		c.PaymentPlan = &entities.PaymentPlan{}
		if err := json.Unmarshal(plan, c.PaymentPlan); err != nil {
			return nil, err
		}
	}
	return c, nil
}
