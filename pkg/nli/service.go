package nli

import (
	"context"
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/company"
	"github.com/Ramsey-B/trellis/internal/repositories/connection"
	"github.com/Ramsey-B/trellis/internal/repositories/interaction"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/networkmap"
	"github.com/Ramsey-B/trellis/internal/repositories/snapshot"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/overlap"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Service computes and stores monthly NLI snapshots. The index reads the
// persisted access map as-is; callers rebuild it first if they want the
// snapshot to reflect the latest orbit data.
type Service struct {
	logger          ectologger.Logger
	engine          *Engine
	overlapEngine   *overlap.Engine
	companyRepo     *company.Repository
	investorRepo    *investor.Repository
	connectionRepo  *connection.Repository
	interactionRepo *interaction.Repository
	networkRepo     *networkmap.Repository
	snapshotRepo    *snapshot.Repository
}

// NewService creates an NLI service
func NewService(
	logger ectologger.Logger,
	companyRepo *company.Repository,
	investorRepo *investor.Repository,
	connectionRepo *connection.Repository,
	interactionRepo *interaction.Repository,
	networkRepo *networkmap.Repository,
	snapshotRepo *snapshot.Repository,
) *Service {
	return &Service{
		logger:          logger,
		engine:          NewEngine(),
		overlapEngine:   overlap.NewEngine(),
		companyRepo:     companyRepo,
		investorRepo:    investorRepo,
		connectionRepo:  connectionRepo,
		interactionRepo: interactionRepo,
		networkRepo:     networkRepo,
		snapshotRepo:    snapshotRepo,
	}
}

// Compute builds the NLI metrics for the company's month and upserts the
// snapshot row
func (s *Service) Compute(ctx context.Context, companyID int64, month time.Time) (*models.NetworkSnapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "nli.Service.Compute")
	defer span.End()

	if _, err := s.companyRepo.Get(ctx, companyID); err != nil {
		return nil, err
	}

	accessMap, err := s.networkRepo.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	investors, err := s.investorRepo.ListAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	connections, err := s.connectionRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	intelligence := s.overlapEngine.ComputeIntelligence(investors, connections)

	// The engine bounds the window itself; loading since month start is enough
	interactions, err := s.interactionRepo.ListByCompanySince(ctx, companyID, MonthStart(month))
	if err != nil {
		return nil, err
	}

	metrics := s.engine.Compute(Inputs{
		AccessMap:      *accessMap,
		OverlapDensity: intelligence.OverlapPercentage,
		Interactions:   interactions,
		Month:          month,
	})

	snap, err := s.snapshotRepo.Upsert(ctx, companyID, MonthStart(month), metrics)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id": companyID,
		"month":      MonthKey(month),
		"nli_score":  metrics.NLIScore,
	}).Info("Computed NLI snapshot")

	return snap, nil
}

// History returns the recent snapshots, newest month first
func (s *Service) History(ctx context.Context, companyID int64, limit int) (*models.NLIHistoryResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "nli.Service.History")
	defer span.End()

	snapshots, err := s.snapshotRepo.History(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}

	return &models.NLIHistoryResponse{
		History: ectolinq.Map(snapshots, func(snap models.NetworkSnapshot) models.NLIHistoryEntry {
			return models.NLIHistoryEntry{
				Month:   snap.SnapshotMonth,
				Metrics: snap.Metrics,
			}
		}),
	}, nil
}
