package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/collectionsdesk/internal/adapters/database"
	"github.com/zatekoja/collectionsdesk/internal/adapters/document"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"github.com/zatekoja/collectionsdesk/pkg/config"
)

// Sample ids. The last log references a customer that does not exist.
const (
	janeID  = "65f1a2b3c4d5e6f708192a01"
	johnID  = "65f1a2b3c4d5e6f708192a02"
	priyaID = "65f1a2b3c4d5e6f708192a03"
	ghostID = "65f1a2b3c4d5e6f708192aff"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("seed", "development")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	writer, closeStore := openWriter(ctx, cfg)
	defer closeStore()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, clearing customers and interaction logs before seeding")
		if err := writer.Reset(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset store")
		}
	}

	for _, c := range sampleCustomers() {
		if err := writer.SaveCustomer(ctx, c); err != nil {
			log.Fatal().Err(err).Str("customer", c.ID).Msg("Failed to save customer")
		}
	}

	events := 0
	for _, l := range sampleLogs() {
		if err := writer.SaveInteractionLog(ctx, l); err != nil {
			log.Fatal().Err(err).Str("log", l.ID).Msg("Failed to save interaction log")
		}
		events += len(l.Events)
	}

	log.Info().
		Str("backend", cfg.Engine.StoreBackend).
		Int("customers", len(sampleCustomers())).
		Int("logs", len(sampleLogs())).
		Int("events", events).
		Msg("Database seeded")
}

func openWriter(ctx context.Context, cfg *config.Config) (repositories.StoreWriter, func()) {
	if cfg.Engine.StoreBackend == config.StoreBackendPostgres {
		client, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		if err := database.ApplySchema(ctx, client); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		return database.NewStoreWriter(client), func() { client.Close() }
	}

	client, err := mongo.NewClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	return document.NewStoreWriter(client.Customers(), client.Interactions()), func() {
		client.Close(context.Background())
	}
}

func sampleCustomers() []*entities.Customer {
	return []*entities.Customer{
		{
			ID:        janeID,
			FirstName: "Jane",
			LastName:  "Smith",
			Email:     "jane.smith@example.com",
			Phone:     "098-765-4321",
			Address: entities.Address{
				HouseNumber: "456",
				StreetName:  "Oak Ave",
				Suburb:      "Anytown",
				State:       "NSW",
				PostCode:    "2000",
			},
			DebtDetails: entities.DebtDetails{TotalOutstanding: 1500},
			PaymentPlan: &entities.PaymentPlan{
				PaymentReferenceNumber: "PRN-1001",
				PaymentSchedule: []entities.ScheduledPayment{
					{PaymentDate: "2024-04-01", Amount: 250, PaymentStatus: "pending"},
					{PaymentDate: "2024-05-01", Amount: 250, PaymentStatus: "pending"},
				},
			},
		},
		{
			ID:        johnID,
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john.doe@example.com",
			Phone:     "123-456-7890",
			Address: entities.Address{
				HouseNumber: "123",
				StreetName:  "Main St",
				Suburb:      "Anytown",
				State:       "VIC",
				PostCode:    "3000",
			},
			DebtDetails: entities.DebtDetails{TotalOutstanding: 1000},
		},
		{
			ID:          priyaID,
			FirstName:   "Priya",
			MiddleName:  "K",
			LastName:    "Doe-Smith",
			Email:       "priya_ds@example.org",
			Phone:       "+61 400 100 200",
			DebtDetails: entities.DebtDetails{TotalOutstanding: 320.5},
		},
	}
}

func sampleLogs() []*entities.InteractionLog {
	cost := func(v float64) *float64 { return &v }
	transcript := func(lines ...string) entities.Transcript {
		t := entities.Transcript{}
		for i, line := range lines {
			role := entities.RoleAgent
			if i%2 == 1 {
				role = entities.RoleCustomer
			}
			t.Items = append(t.Items, entities.TranscriptTurn{Type: "message", Role: role, Content: []string{line}, TranscriptConfidence: 0.93})
		}
		return t
	}

	return []*entities.InteractionLog{
		{
			ID:         "log-jane",
			CustomerID: janeID,
			Events: []entities.InteractionEvent{
				{
					// first instant of the day
					InteractionDate: "2024-03-01T00:00:00.000Z",
					StartTime:       "00:00:00",
					EndTime:         "00:04:10",
					AgentID:         "agent-7",
					AgentName:       "Sam Carter",
					Sentiment:       "neutral",
					AgentNotes:      "Left voicemail",
					Cost:            cost(0.42),
					Transcript:      transcript("Hello, this is Sam from the collections desk."),
				},
				{
					// last instant of the day
					InteractionDate:  "2024-03-01T23:59:59.999Z",
					StartTime:        "23:59:59",
					EndTime:          "23:59:59",
					AgentID:          "agent-7",
					AgentName:        "Sam Carter",
					Sentiment:        "positive",
					AgentNotes:       "Agreed to payment plan",
					FollowupRequired: true,
					FollowupDate:     "2024-03-08",
					Cost:             cost(1.10),
					Transcript:       transcript("Can we set up a plan?", "Yes, two payments works for me."),
				},
				{
					// just past the day, must not appear for 2024-03-01
					InteractionDate: "2024-03-02T00:00:00.000Z",
					StartTime:       "00:00:00",
					EndTime:         "00:01:00",
					AgentID:         "agent-3",
					AgentName:       "Lee Park",
					Sentiment:       "negative",
				},
			},
		},
		{
			ID:         "log-john",
			CustomerID: johnID,
			Events: []entities.InteractionEvent{
				{
					ID:              "evt-john-1",
					InteractionDate: "2024-03-01",
					StartTime:       "14:30:00",
					EndTime:         "14:41:00",
					AgentID:         "agent-3",
					AgentName:       "Lee Park",
					JobID:           "job-88",
					AudioFile:       "calls/job-88.wav",
					Sentiment:       "negative",
					AgentNotes:      "Disputes balance",
					Transcript:      transcript("I already paid this.", "Let me check the account."),
				},
				{
					InteractionDate: "2024-02-28T09:15:00Z",
					StartTime:       "09:15:00",
					EndTime:         "09:20:00",
					AgentID:         "agent-7",
					AgentName:       "Sam Carter",
					Sentiment:       "neutral",
					Cost:            cost(0.35),
				},
			},
		},
		{
			ID:         "log-priya",
			CustomerID: priyaID,
		},
		{
			ID:         "log-orphan",
			CustomerID: ghostID,
			Events: []entities.InteractionEvent{
				{
					InteractionDate: "2024-03-01T11:00:00Z",
					StartTime:       "11:00:00",
					EndTime:         "11:02:00",
					AgentID:         "agent-3",
					AgentName:       "Lee Park",
					Sentiment:       "neutral",
					AgentNotes:      "Number disconnected",
				},
			},
		},
	}
}
