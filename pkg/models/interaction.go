package models

import (
	"time"
)

// InteractionEventType classifies one logged touchpoint with an entity
type InteractionEventType string

const (
	EventIntroSent         InteractionEventType = "intro_sent"
	EventEmailSent         InteractionEventType = "email_sent"
	EventEmailReply        InteractionEventType = "email_reply"
	EventMeetingScheduled  InteractionEventType = "meeting_scheduled"
	EventMeetingCompleted  InteractionEventType = "meeting_completed"
	EventDocShared         InteractionEventType = "doc_shared"
	EventTermSheetReceived InteractionEventType = "term_sheet_received"
	EventTermSheetSigned   InteractionEventType = "term_sheet_signed"
	EventCommitmentMade    InteractionEventType = "commitment_made"
	EventInvestmentClosed  InteractionEventType = "investment_closed"
	EventDeclined          InteractionEventType = "declined"
	EventGhosted           InteractionEventType = "ghosted"
)

// ValidEventTypes lists every event type accepted by the intake surfaces
var ValidEventTypes = []InteractionEventType{
	EventIntroSent,
	EventEmailSent,
	EventEmailReply,
	EventMeetingScheduled,
	EventMeetingCompleted,
	EventDocShared,
	EventTermSheetReceived,
	EventTermSheetSigned,
	EventCommitmentMade,
	EventInvestmentClosed,
	EventDeclined,
	EventGhosted,
}

// IsValid reports whether the event type is part of the known vocabulary
func (t InteractionEventType) IsValid() bool {
	for _, v := range ValidEventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ActorType identifies who recorded an interaction
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// Interaction is one event-log row: something happened between the company
// and an investor, candidate, or org at a point in time
type Interaction struct {
	ID        int64                `json:"id" db:"id"`
	CompanyID int64                `json:"company_id" db:"company_id"`
	ActorType ActorType            `json:"actor_type" db:"actor_type"`
	Entity    EntityRef            `json:"entity"`
	EventType InteractionEventType `json:"event_type" db:"event_type"`
	EventTS   time.Time            `json:"event_ts" db:"event_ts"`
	Meta      map[string]any       `json:"meta,omitempty"`
	CreatedAt time.Time            `json:"created_at" db:"created_at"`
}

// CreateInteractionRequest logs a new interaction event
type CreateInteractionRequest struct {
	ActorType ActorType            `json:"actor_type,omitempty"`
	Entity    EntityRef            `json:"entity" validate:"required"`
	EventType InteractionEventType `json:"event_type" validate:"required"`
	EventTS   *time.Time           `json:"event_ts,omitempty"`
	Meta      map[string]any       `json:"meta,omitempty"`
}

// InteractionListResponse is the response for listing interactions
type InteractionListResponse struct {
	Items      []Interaction `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}
