package strength

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/interaction"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/relationship"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/normalize"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Service assembles strength inputs from the event log and status history,
// runs the engine, and persists the result
type Service struct {
	logger           ectologger.Logger
	engine           *Engine
	interactionRepo  *interaction.Repository
	investorRepo     *investor.Repository
	relationshipRepo *relationship.Repository
}

// NewService creates a relationship strength service
func NewService(
	logger ectologger.Logger,
	interactionRepo *interaction.Repository,
	investorRepo *investor.Repository,
	relationshipRepo *relationship.Repository,
) *Service {
	return &Service{
		logger:           logger,
		engine:           NewEngine(),
		interactionRepo:  interactionRepo,
		investorRepo:     investorRepo,
		relationshipRepo: relationshipRepo,
	}
}

// ComputePair computes strength between two entities and upserts the cached
// relationship row. The counterpart status is read from the "to" side.
func (s *Service) ComputePair(ctx context.Context, companyID int64, req models.ComputeRelationshipRequest) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "strength.Service.ComputePair")
	defer span.End()

	if err := req.From.Validate(); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "from: "+err.Error())
	}
	if err := req.To.Validate(); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "to: "+err.Error())
	}

	events, lastTS, err := s.interactionRepo.EventCountsForPair(ctx, companyID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	counterpartStatus := ""
	status, err := s.investorRepo.CurrentStatus(ctx, companyID, req.To)
	if err != nil {
		return nil, err
	}
	if status != nil {
		counterpartStatus = string(*status)
	}

	result := s.engine.Compute(Inputs{
		SharedInvestorsCount: req.SharedInvestorsCount,
		SharedOrgCount:       req.SharedOrgCount,
		EventCounts:          events,
		LastInteractionTS:    lastTS,
		CounterpartStatus:    counterpartStatus,
	}, time.Now().UTC())

	rel, err := s.relationshipRepo.Upsert(ctx, companyID, req.From, req.To, result)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id": companyID,
		"from":       req.From.String(),
		"to":         req.To.String(),
		"strength":   result.Strength,
	}).Debug("Computed relationship strength")

	return rel, nil
}

// ComputeInvestorCandidate scores the investor against a feed candidate that
// is not an investor yet. Candidates are addressed by their stable key.
func (s *Service) ComputeInvestorCandidate(ctx context.Context, companyID, investorID int64, candidateName, candidateLinkedinURL string, sharedInvestorsCount, sharedOrgCount int) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "strength.Service.ComputeInvestorCandidate")
	defer span.End()

	req := models.ComputeRelationshipRequest{
		From:                 models.InvestorRef(investorID),
		To:                   models.CandidateRef(normalize.CandidateKey(candidateName, candidateLinkedinURL)),
		SharedInvestorsCount: sharedInvestorsCount,
		SharedOrgCount:       sharedOrgCount,
	}
	return s.ComputePair(ctx, companyID, req)
}

// List returns the company's cached relationship rows, strongest first
func (s *Service) List(ctx context.Context, companyID int64, limit int) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "strength.Service.List")
	defer span.End()

	return s.relationshipRepo.ListByCompany(ctx, companyID, limit)
}
