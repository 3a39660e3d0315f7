// Package events handles domain event emission for feed, graph, and forecast changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/trellis/pkg/kafka"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Emitter handles event emission for Trellis
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter. A nil producer disables emission
// so write paths keep working when Kafka is not configured.
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// Enabled reports whether events will actually be published
func (e *Emitter) Enabled() bool {
	return e != nil && e.producer != nil
}

// EmitSuggestionsRefreshed emits a suggestions.refreshed event after a feed recompute
func (e *Emitter) EmitSuggestionsRefreshed(ctx context.Context, companyID int64, candidateCount int, topScore float64) error {
	if !e.Enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitSuggestionsRefreshed")
	defer span.End()

	event := SuggestionsRefreshedEvent{
		BaseEvent:      NewBaseEvent(EventTypeSuggestionsRefreshed, companyID),
		CandidateCount: candidateCount,
		TopScore:       topScore,
	}

	if err := e.publish(ctx, event.BaseEvent, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit suggestions.refreshed event")
		return err
	}

	return nil
}

// EmitAccessMapRebuilt emits an accessmap.rebuilt event after a graph swap
func (e *Emitter) EmitAccessMapRebuilt(ctx context.Context, companyID int64, stats models.AccessMapStats) error {
	if !e.Enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitAccessMapRebuilt")
	defer span.End()

	event := AccessMapRebuiltEvent{
		BaseEvent: NewBaseEvent(EventTypeAccessMapRebuilt, companyID),
		Stats:     stats,
	}

	if err := e.publish(ctx, event.BaseEvent, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit accessmap.rebuilt event")
		return err
	}

	return nil
}

// EmitForecastCompleted emits a forecast.completed event after a scenario run is recorded
func (e *Emitter) EmitForecastCompleted(ctx context.Context, companyID int64, run *models.ScenarioRun, scenarioType models.ScenarioType, investorCount int) error {
	if !e.Enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitForecastCompleted")
	defer span.End()

	event := ForecastCompletedEvent{
		BaseEvent:       NewBaseEvent(EventTypeForecastCompleted, companyID),
		ScenarioID:      run.ScenarioID,
		RunID:           run.ID,
		ScenarioType:    scenarioType,
		InvestorCount:   investorCount,
		ConfidenceScore: run.ConfidenceScore,
		ModelVersion:    run.ModelVersion,
	}

	if err := e.publish(ctx, event.BaseEvent, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit forecast.completed event")
		return err
	}

	return nil
}

// EmitInteractionRecorded emits an interaction.recorded event for an appended interaction
func (e *Emitter) EmitInteractionRecorded(ctx context.Context, interaction *models.Interaction) error {
	if !e.Enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitInteractionRecorded")
	defer span.End()

	event := InteractionRecordedEvent{
		BaseEvent:     NewBaseEvent(EventTypeInteractionRecorded, interaction.CompanyID),
		InteractionID: interaction.ID,
		Entity:        interaction.Entity,
		EventType:     interaction.EventType,
		EventTS:       interaction.EventTS,
	}

	if err := e.publish(ctx, event.BaseEvent, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit interaction.recorded event")
		return err
	}

	return nil
}

func (e *Emitter) publish(ctx context.Context, base BaseEvent, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return e.producer.PublishDomainEvent(ctx, &kafka.DomainEvent{
		EventType:     string(base.EventType),
		SchemaVersion: base.SchemaVersion,
		CompanyID:     base.CompanyID,
		Timestamp:     base.Timestamp,
		CorrelationID: base.CorrelationID,
		Payload:       payload,
	})
}
