package negotiation

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/termsheet"
	"github.com/Ramsey-B/trellis/pkg/behavior"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Service aggregates term sheets into clause profiles and joins them with
// behavior profiles for side-by-side investor comparison
type Service struct {
	logger        ectologger.Logger
	engine        *Engine
	investorRepo  *investor.Repository
	termsheetRepo *termsheet.Repository
	behavior      *behavior.Service
}

// NewService creates a negotiation intelligence service
func NewService(
	logger ectologger.Logger,
	config EngineConfig,
	investorRepo *investor.Repository,
	termsheetRepo *termsheet.Repository,
	behaviorService *behavior.Service,
) *Service {
	return &Service{
		logger:        logger,
		engine:        NewEngine(config),
		investorRepo:  investorRepo,
		termsheetRepo: termsheetRepo,
		behavior:      behaviorService,
	}
}

// ClauseProfile recomputes the investor's clause pattern from its term
// sheets and upserts the stored row
func (s *Service) ClauseProfile(ctx context.Context, companyID, investorID int64) (*models.InvestorClausePattern, error) {
	ctx, span := tracing.StartSpan(ctx, "negotiation.Service.ClauseProfile")
	defer span.End()

	if _, err := s.investorRepo.GetForCompany(ctx, companyID, investorID); err != nil {
		return nil, err
	}

	sheets, err := s.termsheetRepo.ListAllByInvestor(ctx, companyID, investorID)
	if err != nil {
		return nil, err
	}

	profile := s.engine.BuildProfile(sheets)

	pattern, err := s.termsheetRepo.UpsertClausePattern(ctx, companyID, investorID, profile)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":  companyID,
		"investor_id": investorID,
		"sheets":      len(sheets),
	}).Debug("Recomputed clause profile")

	return pattern, nil
}

// CompareInvestors joins behavior and clause profiles for the requested
// investors. Ids that do not belong to the company are skipped, not errors.
// Behavior is recomputed per investor; clause patterns are read from the
// stored rows and computed only when absent.
func (s *Service) CompareInvestors(ctx context.Context, companyID int64, investorIDs []int64) ([]models.InvestorComparison, error) {
	ctx, span := tracing.StartSpan(ctx, "negotiation.Service.CompareInvestors")
	defer span.End()

	results := make([]models.InvestorComparison, 0, len(investorIDs))
	for _, id := range investorIDs {
		inv, err := s.investorRepo.GetForCompany(ctx, companyID, id)
		if err != nil {
			if httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusNotFound {
				continue
			}
			return nil, err
		}

		profile, err := s.behavior.Profile(ctx, companyID, id)
		if err != nil {
			return nil, err
		}

		pattern, err := s.termsheetRepo.GetClausePattern(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		if pattern == nil {
			pattern, err = s.ClauseProfile(ctx, companyID, id)
			if err != nil {
				return nil, err
			}
		}

		results = append(results, models.InvestorComparison{
			InvestorID:               id,
			InvestorName:             inv.FullName,
			BehaviorAxes:             profile.AxisScores,
			BehaviorConfidence:       profile.Confidence,
			BehaviorMetrics:          profile.Metrics,
			FounderFriendlinessScore: pattern.FounderFriendlinessScore,
			ControlRiskScore:         pattern.ControlRiskScore,
			ClauseStats:              pattern.ClauseStats,
		})
	}
	return results, nil
}
