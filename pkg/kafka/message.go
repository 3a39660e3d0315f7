package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Ramsey-B/trellis/pkg/models"
)

// InteractionMessage is the intake envelope on the interactions topic.
// Integrations publish these instead of calling the HTTP surface; the
// consumer appends them to the same event log.
type InteractionMessage struct {
	CompanyID int64                       `json:"company_id"`
	ActorType models.ActorType            `json:"actor_type,omitempty"`
	Entity    models.EntityRef            `json:"entity"`
	EventType models.InteractionEventType `json:"event_type"`
	EventTS   *time.Time                  `json:"event_ts,omitempty"`
	Meta      map[string]any              `json:"meta,omitempty"`
}

// Validate checks the envelope carries everything intake requires
func (m *InteractionMessage) Validate() error {
	if m.CompanyID <= 0 {
		return fmt.Errorf("company_id is required")
	}
	if err := m.Entity.Validate(); err != nil {
		return err
	}
	if !m.EventType.IsValid() {
		return fmt.Errorf("unknown event_type %q", m.EventType)
	}
	return nil
}

// ToCreateRequest converts the envelope into the intake request shape.
// Messages default to the system actor since no user is on the hook.
func (m *InteractionMessage) ToCreateRequest() models.CreateInteractionRequest {
	actorType := m.ActorType
	if actorType == "" {
		actorType = models.ActorTypeSystem
	}
	return models.CreateInteractionRequest{
		ActorType: actorType,
		Entity:    m.Entity,
		EventType: m.EventType,
		EventTS:   m.EventTS,
		Meta:      m.Meta,
	}
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	Interaction *InteractionMessage
}

// ParseInteraction parses the message value as an interaction envelope
func (m *IncomingMessage) ParseInteraction() error {
	var msg InteractionMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	m.Interaction = &msg
	return nil
}

// GetCompanyID returns the company scope of the message, falling back to the
// company_id header for envelopes that omit it from the body
func (m *IncomingMessage) GetCompanyID() int64 {
	if m.Interaction != nil && m.Interaction.CompanyID > 0 {
		return m.Interaction.CompanyID
	}
	if raw, ok := m.Headers["company_id"]; ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return id
		}
	}
	return 0
}
