package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/internal/adapters/database"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

func TestStoreWriter_SaveCustomer(t *testing.T) {
	client, mock := newMockClient(t)
	writer := database.NewStoreWriter(client)

	mock.ExpectExec(`INSERT INTO "customers" .* ON CONFLICT \(id\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := writer.SaveCustomer(context.Background(), &entities.Customer{
		ID:          "c1",
		FirstName:   "Jane",
		LastName:    "Doe",
		PaymentPlan: &entities.PaymentPlan{PaymentReferenceNumber: "PRN-1"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWriter_Reset(t *testing.T) {
	client, mock := newMockClient(t)
	writer := database.NewStoreWriter(client)

	mock.ExpectExec(`TRUNCATE TABLE interaction_events, interaction_logs, customers`).
		WillReturnError(errors.New("connection reset"))

	err := writer.Reset(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStoreUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}
