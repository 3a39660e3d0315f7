package behavior

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/behaviorprofile"
	"github.com/Ramsey-B/trellis/internal/repositories/interaction"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Service recomputes and stores behavior profiles. Every profile read is a
// recompute over the current interaction log, so stored rows never go stale.
type Service struct {
	logger          ectologger.Logger
	engine          *Engine
	investorRepo    *investor.Repository
	interactionRepo *interaction.Repository
	profileRepo     *behaviorprofile.Repository
}

// NewService creates a behavior profile service
func NewService(
	logger ectologger.Logger,
	investorRepo *investor.Repository,
	interactionRepo *interaction.Repository,
	profileRepo *behaviorprofile.Repository,
) *Service {
	return &Service{
		logger:          logger,
		engine:          NewEngine(),
		investorRepo:    investorRepo,
		interactionRepo: interactionRepo,
		profileRepo:     profileRepo,
	}
}

// Profile recomputes the investor's behavior profile from its interaction
// history and upserts the stored row
func (s *Service) Profile(ctx context.Context, companyID, investorID int64) (*models.BehaviorProfile, error) {
	ctx, span := tracing.StartSpan(ctx, "behavior.Service.Profile")
	defer span.End()

	if _, err := s.investorRepo.GetForCompany(ctx, companyID, investorID); err != nil {
		return nil, err
	}

	rows, err := s.interactionRepo.ListAllForEntity(ctx, companyID, models.InvestorRef(investorID))
	if err != nil {
		return nil, err
	}

	result := s.engine.ComputeProfile(rows)

	profile, err := s.profileRepo.Upsert(ctx, companyID, investorID, result)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":  companyID,
		"investor_id": investorID,
		"episodes":    result.Metrics.EpisodesCount,
		"events":      result.Metrics.EventsCount,
	}).Debug("Recomputed behavior profile")

	return profile, nil
}
