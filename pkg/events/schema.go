package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/trellis/pkg/models"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// EventType defines the type of event
type EventType string

const (
	// EventTypeSuggestionsRefreshed fires after a feed recompute lands
	EventTypeSuggestionsRefreshed EventType = "suggestions.refreshed"
	// EventTypeAccessMapRebuilt fires after the access map is swapped
	EventTypeAccessMapRebuilt EventType = "accessmap.rebuilt"
	// EventTypeForecastCompleted fires after a scenario run is recorded
	EventTypeForecastCompleted EventType = "forecast.completed"
	// EventTypeInteractionRecorded fires for every event-log append
	EventTypeInteractionRecorded EventType = "interaction.recorded"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	CompanyID     int64     `json:"company_id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// SuggestionsRefreshedEvent is emitted when the suggested feed is recomputed
type SuggestionsRefreshedEvent struct {
	BaseEvent
	CandidateCount int     `json:"candidate_count"`
	TopScore       float64 `json:"top_score"`
}

// AccessMapRebuiltEvent is emitted when a company's graph is swapped
type AccessMapRebuiltEvent struct {
	BaseEvent
	Stats models.AccessMapStats `json:"stats"`
}

// ForecastCompletedEvent is emitted when a scenario run is recorded
type ForecastCompletedEvent struct {
	BaseEvent
	ScenarioID      int64               `json:"scenario_id"`
	RunID           int64               `json:"run_id"`
	ScenarioType    models.ScenarioType `json:"scenario_type"`
	InvestorCount   int                 `json:"investor_count"`
	ConfidenceScore float64             `json:"confidence_score"`
	ModelVersion    string              `json:"model_version"`
}

// InteractionRecordedEvent is emitted for every appended interaction
type InteractionRecordedEvent struct {
	BaseEvent
	InteractionID int64                       `json:"interaction_id"`
	Entity        models.EntityRef            `json:"entity"`
	EventType     models.InteractionEventType `json:"interaction_event_type"`
	EventTS       time.Time                   `json:"event_ts"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType, companyID int64) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		CompanyID:     companyID,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
