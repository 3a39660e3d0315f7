// Package interactions is the single intake path for the event log. The HTTP
// route and the Kafka consumer both feed Record, so validation and metrics
// live here instead of at either boundary.
package interactions

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/interaction"
	"github.com/Ramsey-B/trellis/pkg/events"
	"github.com/Ramsey-B/trellis/pkg/metrics"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Intake surfaces, used as the metric source label
const (
	SourceAPI   = "api"
	SourceKafka = "kafka"
)

// Service appends interactions to the event log
type Service struct {
	logger  ectologger.Logger
	repo    *interaction.Repository
	emitter *events.Emitter
}

// NewService creates an interaction intake service
func NewService(logger ectologger.Logger, repo *interaction.Repository, emitter *events.Emitter) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		emitter: emitter,
	}
}

// Record validates and appends one interaction. Validation failures surface
// as 400 httperrors so the Kafka path can tell poison input from outages.
func (s *Service) Record(ctx context.Context, companyID int64, req models.CreateInteractionRequest, source string) (*models.Interaction, error) {
	ctx, span := tracing.StartSpan(ctx, "interactions.Service.Record")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id": companyID,
		"event_type": req.EventType,
		"source":     source,
	})

	if err := req.Entity.Validate(); err != nil {
		metrics.RecordInteractionIngested(source, "invalid")
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.EventType == "" {
		metrics.RecordInteractionIngested(source, "invalid")
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "event_type is required")
	}
	if !req.EventType.IsValid() {
		metrics.RecordInteractionIngested(source, "invalid")
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "unknown event_type: "+string(req.EventType))
	}

	created, err := s.repo.Create(ctx, companyID, req)
	if err != nil {
		metrics.RecordInteractionIngested(source, "error")
		return nil, err
	}
	metrics.RecordInteractionIngested(source, "success")

	// Kafka-sourced interactions came from the bus already; only re-announce
	// the ones that entered over HTTP.
	if source == SourceAPI {
		_ = s.emitter.EmitInteractionRecorded(ctx, created)
	}

	log.WithFields(map[string]any{
		"interaction_id": created.ID,
		"entity":         created.Entity.String(),
	}).Debug("Recorded interaction")

	return created, nil
}

// List returns a page of interactions for an entity, newest first
func (s *Service) List(ctx context.Context, companyID int64, entity models.EntityRef, page, pageSize int) (*models.InteractionListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "interactions.Service.List")
	defer span.End()

	if err := entity.Validate(); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	items, total, err := s.repo.ListForEntity(ctx, companyID, entity, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &models.InteractionListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
