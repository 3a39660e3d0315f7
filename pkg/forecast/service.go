package forecast

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/scenario"
	"github.com/Ramsey-B/trellis/internal/repositories/termsheet"
	"github.com/Ramsey-B/trellis/pkg/behavior"
	"github.com/Ramsey-B/trellis/pkg/events"
	"github.com/Ramsey-B/trellis/pkg/metrics"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/strength"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Service runs forecast scenarios. Behavior profiles and the
// investor-to-company relationship strength are recomputed per run, so a
// forecast always reflects the current event log.
type Service struct {
	logger        ectologger.Logger
	engine        *Engine
	investorRepo  *investor.Repository
	scenarioRepo  *scenario.Repository
	termsheetRepo *termsheet.Repository
	behavior      *behavior.Service
	strength      *strength.Service
	emitter       *events.Emitter
}

// NewService creates a forecast service
func NewService(
	logger ectologger.Logger,
	investorRepo *investor.Repository,
	scenarioRepo *scenario.Repository,
	termsheetRepo *termsheet.Repository,
	behaviorService *behavior.Service,
	strengthService *strength.Service,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:        logger,
		engine:        NewEngine(),
		investorRepo:  investorRepo,
		scenarioRepo:  scenarioRepo,
		termsheetRepo: termsheetRepo,
		behavior:      behaviorService,
		strength:      strengthService,
		emitter:       emitter,
	}
}

// Run executes the scenario against every investor of the company and appends
// an immutable run row
func (s *Service) Run(ctx context.Context, companyID, scenarioID int64) (*models.ScenarioRun, error) {
	ctx, span := tracing.StartSpan(ctx, "forecast.Service.Run")
	defer span.End()

	scen, err := s.scenarioRepo.Get(ctx, companyID, scenarioID)
	if err != nil {
		return nil, err
	}

	investors, err := s.investorRepo.ListAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	inputs, err := s.collectInputs(ctx, companyID, investors)
	if err != nil {
		return nil, err
	}

	result, confidence := s.engine.RunScenario(scen.Type, inputs)

	run, err := s.scenarioRepo.AddRun(ctx, companyID, scenarioID, result, confidence, ModelVersion)
	if err != nil {
		return nil, err
	}

	_ = s.emitter.EmitForecastCompleted(ctx, companyID, run, result.ScenarioType, len(result.Investors))
	metrics.RecordScenarioRun(string(result.ScenarioType))

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":  companyID,
		"scenario_id": scenarioID,
		"type":        result.ScenarioType,
		"investors":   len(result.Investors),
		"confidence":  confidence,
	}).Info("Ran forecast scenario")

	return run, nil
}

// collectInputs recomputes each investor's behavior profile and strength
// toward the company, the two signals the forecast rules read
func (s *Service) collectInputs(ctx context.Context, companyID int64, investors []models.Investor) ([]Inputs, error) {
	if len(investors) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(investors))
	for i, inv := range investors {
		ids[i] = inv.ID
	}
	sheetCounts, err := s.termsheetRepo.CountByInvestorIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}

	inputs := make([]Inputs, 0, len(investors))
	for _, inv := range investors {
		profile, err := s.behavior.Profile(ctx, companyID, inv.ID)
		if err != nil {
			return nil, err
		}

		rel, err := s.strength.ComputePair(ctx, companyID, models.ComputeRelationshipRequest{
			From: models.InvestorRef(inv.ID),
			To:   models.CompanyOrgRef(companyID),
		})
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, Inputs{
			InvestorID:   inv.ID,
			InvestorName: inv.FullName,
			Behavior: models.BehaviorProfileResult{
				AxisScores: profile.AxisScores,
				Confidence: profile.Confidence,
				Metrics:    profile.Metrics,
			},
			RelationshipStrength: rel.Strength,
			HasTermSheet:         sheetCounts[inv.ID] > 0,
		})
	}
	return inputs, nil
}
