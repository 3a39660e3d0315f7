package accessmap

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/connection"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/networkmap"
	"github.com/Ramsey-B/trellis/pkg/events"
	"github.com/Ramsey-B/trellis/pkg/graph"
	"github.com/Ramsey-B/trellis/pkg/metrics"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Service rebuilds and persists company access maps. The Postgres copy is
// authoritative; the graph mirror is best effort.
type Service struct {
	logger         ectologger.Logger
	engine         *Engine
	investorRepo   *investor.Repository
	connectionRepo *connection.Repository
	networkRepo    *networkmap.Repository
	mirror         *graph.Mirror
	emitter        *events.Emitter
}

// NewService creates an access map service
func NewService(
	logger ectologger.Logger,
	investorRepo *investor.Repository,
	connectionRepo *connection.Repository,
	networkRepo *networkmap.Repository,
	mirror *graph.Mirror,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:         logger,
		engine:         NewEngine(),
		investorRepo:   investorRepo,
		connectionRepo: connectionRepo,
		networkRepo:    networkRepo,
		mirror:         mirror,
		emitter:        emitter,
	}
}

// Rebuild recomputes the company's access map from its investors and
// connections and swaps the persisted graph in one transaction
func (s *Service) Rebuild(ctx context.Context, companyID int64) (*models.AccessMap, error) {
	ctx, span := tracing.StartSpan(ctx, "accessmap.Service.Rebuild")
	defer span.End()

	start := time.Now()

	investors, err := s.investorRepo.ListAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	connections, err := s.connectionRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	built := s.engine.Build(companyID, investors, connections)

	persisted, err := s.networkRepo.Rebuild(ctx, companyID, built)
	if err != nil {
		metrics.RecordAccessMapRebuild("error", 0, time.Since(start).Seconds())
		return nil, err
	}

	// Mirror failures are logged by the mirror itself; the rebuild succeeded
	_ = s.mirror.SyncAccessMap(ctx, companyID, persisted)

	_ = s.emitter.EmitAccessMapRebuilt(ctx, companyID, persisted.Metrics)
	metrics.RecordAccessMapRebuild("success", len(persisted.Nodes), time.Since(start).Seconds())

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":  companyID,
		"nodes":       persisted.Metrics.NodeCount,
		"edges":       persisted.Metrics.EdgeCount,
		"investors":   persisted.Metrics.InvestorCount,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Rebuilt access map")

	return persisted, nil
}
