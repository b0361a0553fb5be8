package entities

import (
	"fmt"

	"github.com/google/uuid"
)

// Transcript roles
const (
	RoleAgent    = "agent"
	RoleCustomer = "customer"
)

// rowNamespace seeds the deterministic ids of rows whose event carries no id of its own
var rowNamespace = uuid.MustParse("6f1c9a52-3c1e-4c0f-9a43-0d3b9e6a7c21")

// TranscriptTurn is one utterance of a call transcript
type TranscriptTurn struct {
	ID                   string   `json:"id" bson:"id"`
	Type                 string   `json:"type" bson:"type"`
	Role                 string   `json:"role" bson:"role"`
	Content              []string `json:"content" bson:"content"`
	Interrupted          bool     `json:"interrupted" bson:"interrupted"`
	TranscriptConfidence float64  `json:"transcript_confidence" bson:"transcript_confidence"`
}

// Transcript wraps the ordered turns of a call
type Transcript struct {
	Items []TranscriptTurn `json:"items" bson:"items"`
}

// InteractionEvent is a single call or contact attempt with a customer
type InteractionEvent struct {
	ID               string     `json:"id,omitempty" bson:"id,omitempty"`
	InteractionDate  string     `json:"interaction_date" bson:"interaction_date"`
	StartTime        string     `json:"start_time" bson:"start_time"`
	EndTime          string     `json:"end_time" bson:"end_time"`
	AgentID          string     `json:"agent_id" bson:"agent_id"`
	AgentName        string     `json:"agent_name" bson:"agent_name"`
	JobID            string     `json:"job_id" bson:"job_id"`
	AudioFile        string     `json:"audio_file" bson:"audio_file"`
	Sentiment        string     `json:"interaction_sentiment_analysis" bson:"interaction_sentiment_analysis"`
	AgentNotes       string     `json:"agent_notes" bson:"agent_notes"`
	FollowupRequired bool       `json:"followup_required" bson:"followup_required"`
	FollowupDate     string     `json:"followup_date" bson:"followup_date"`
	Cost             *float64   `json:"cost,omitempty" bson:"cost,omitempty"`
	Transcript       Transcript `json:"interaction" bson:"interaction"`
}

// InteractionLog is the per-customer container of interaction events
type InteractionLog struct {
	ID         string             `json:"id" bson:"-"`
	CustomerID string             `json:"customer_id" bson:"customer_id"`
	Events     []InteractionEvent `json:"interactions" bson:"interactions"`
}

// FlatInteractionRow is one interaction event merged with its owner's display name
type FlatInteractionRow struct {
	ID               string           `json:"id"`
	LogID            string           `json:"log_id"`
	EventIndex       int              `json:"event_index"`
	CustomerID       string           `json:"customer_id"`
	CustomerName     string           `json:"customer_name"`
	InteractionDate  string           `json:"interaction_date"`
	StartTime        string           `json:"start_time"`
	EndTime          string           `json:"end_time"`
	AgentID          string           `json:"agent_id"`
	AgentName        string           `json:"agent_name"`
	JobID            string           `json:"job_id"`
	AudioFile        string           `json:"audio_file"`
	Sentiment        string           `json:"interaction_sentiment_analysis"`
	AgentNotes       string           `json:"agent_notes"`
	FollowupRequired bool             `json:"followup_required"`
	FollowupDate     string           `json:"followup_date"`
	Cost             float64          `json:"cost"`
	Transcript       []TranscriptTurn `json:"transcript"`
}

// RowID returns the event's own id, or a stable id derived from its parent log and position.
func RowID(logID string, index int, eventID string) string {
	if eventID != "" {
		return eventID
	}
	return uuid.NewSHA1(rowNamespace, []byte(fmt.Sprintf("%s/%d", logID, index))).String()
}

// NewFlatInteractionRow flattens the event at position index of log logID
func NewFlatInteractionRow(logID, customerID string, index int, event InteractionEvent, customerName string) *FlatInteractionRow {
	if customerName == "" {
		customerName = UnknownCustomerName
	}

	var cost float64
	if event.Cost != nil {
		cost = *event.Cost
	}

	transcript := event.Transcript.Items
	if transcript == nil {
		transcript = []TranscriptTurn{}
	}

	return &FlatInteractionRow{
		ID:               RowID(logID, index, event.ID),
		LogID:            logID,
		EventIndex:       index,
		CustomerID:       customerID,
		CustomerName:     customerName,
		InteractionDate:  event.InteractionDate,
		StartTime:        event.StartTime,
		EndTime:          event.EndTime,
		AgentID:          event.AgentID,
		AgentName:        event.AgentName,
		JobID:            event.JobID,
		AudioFile:        event.AudioFile,
		Sentiment:        event.Sentiment,
		AgentNotes:       event.AgentNotes,
		FollowupRequired: event.FollowupRequired,
		FollowupDate:     event.FollowupDate,
		Cost:             cost,
		Transcript:       transcript,
	}
}

// Flatten produces one row per event of the log that keep accepts.
// A nil keep accepts every event.
func (l *InteractionLog) Flatten(customerName string, keep func(InteractionEvent) bool) []*FlatInteractionRow {
	rows := make([]*FlatInteractionRow, 0, len(l.Events))
	for i, event := range l.Events {
		if keep != nil && !keep(event) {
			continue
		}
		rows = append(rows, NewFlatInteractionRow(l.ID, l.CustomerID, i, event, customerName))
	}
	return rows
}
