// Package forecast turns behavior profiles and relationship strength into
// probabilistic investor-reaction forecasts for hypothetical scenarios.
package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/trellis/pkg/models"
)

// ModelVersion tags persisted scenario runs with the rule set that produced them
const ModelVersion = "rules_v1"

// Per-investor explanation lists are capped at this many factors
const maxFactors = 6

// Guidance lines name at most this many investors
const maxGuidanceNames = 5

// Inputs carries one investor's signals into the forecast rules
type Inputs struct {
	InvestorID           int64
	InvestorName         string
	Behavior             models.BehaviorProfileResult
	RelationshipStrength int
	HasTermSheet         bool
}

// Engine applies the reaction-forecast rules. It is stateless and safe for
// concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// RunScenario forecasts every investor's reaction and assembles company
// guidance. The second return value is the run's confidence score, the
// average of the per-investor confidences, or 0.1 when there are no
// investors to forecast.
func (e *Engine) RunScenario(scenarioType models.ScenarioType, investors []Inputs) (models.ForecastResult, float64) {
	if !scenarioType.IsValid() {
		scenarioType = models.ScenarioTypeCustom
	}

	result := models.ForecastResult{
		ScenarioType: scenarioType,
		Investors:    make([]models.InvestorForecast, 0, len(investors)),
		Guidance:     []string{},
	}
	if len(investors) == 0 {
		return result, 0.1
	}

	var confidenceSum float64
	for _, in := range investors {
		forecast := e.ForecastInvestor(scenarioType, in)
		confidenceSum += forecast.Confidence
		result.Investors = append(result.Investors, forecast)
	}

	result.Guidance = buildGuidance(result.Investors)
	return result, confidenceSum / float64(len(result.Investors))
}

// ForecastInvestor applies the scenario rules to a single investor and
// returns the normalized reaction distribution with its confidence and the
// factors that fired.
func (e *Engine) ForecastInvestor(scenarioType models.ScenarioType, in Inputs) models.InvestorForecast {
	if !scenarioType.IsValid() {
		scenarioType = models.ScenarioTypeCustom
	}

	probs := baseProbabilities()
	factors := adjustForBehaviorAndScenario(scenarioType, in.Behavior.AxisScores, in.RelationshipStrength, &probs)
	if len(factors) > maxFactors {
		factors = factors[:maxFactors]
	}

	return models.InvestorForecast{
		InvestorID:           in.InvestorID,
		InvestorName:         in.InvestorName,
		Probabilities:        normalizeProbabilities(probs),
		RelationshipStrength: in.RelationshipStrength,
		BehaviorAxes:         in.Behavior.AxisScores,
		Confidence:           confidenceFrom(in.Behavior.Confidence, in.Behavior.Metrics, in.HasTermSheet),
		Factors:              factors,
	}
}

// baseProbabilities is the prior before any behavior or scenario adjustment
func baseProbabilities() models.ReactionProbabilities {
	return models.ReactionProbabilities{
		Supportive:  0.3,
		Neutral:     0.4,
		Pressure:    0.15,
		ControlPush: 0.05,
		ExitPush:    0.05,
		Ghost:       0.05,
	}
}

// adjustForBehaviorAndScenario applies the rules in order and returns the
// factors that fired. Downside scenarios amplify control and stress traits,
// delayed exits hinge on patience, and a strong relationship dampens every
// negative category.
func adjustForBehaviorAndScenario(
	scenarioType models.ScenarioType,
	axes models.BehaviorAxes,
	relationshipStrength int,
	probs *models.ReactionProbabilities,
) []string {
	factors := []string{}

	if scenarioType == models.ScenarioTypeMissedRevenue || scenarioType == models.ScenarioTypeDownRound {
		if axes.ControlOrientation >= 60 {
			probs.ControlPush += 0.1
			probs.Pressure += 0.05
			factors = append(factors, "High control_orientation in downside scenario (+control_push, +pressure)")
		}
		if axes.StressBehavior >= 60 {
			probs.Pressure += 0.1
			factors = append(factors, "High stress_behavior in negative scenario (+pressure)")
		}
		if axes.ConvictionStrength >= 65 && axes.RiskAppetite >= 60 {
			probs.Supportive += 0.1
			factors = append(factors, "High conviction & risk appetite (+supportive)")
		}
	}
	if scenarioType == models.ScenarioTypeDelayedExit {
		if axes.Patience < 45 {
			probs.ExitPush += 0.1
			probs.Pressure += 0.05
			factors = append(factors, "Low patience in delayed exit scenario (+exit_push, +pressure)")
		} else {
			probs.Neutral += 0.05
			factors = append(factors, "Higher patience dampens negative reactions (+neutral)")
		}
	}

	if relationshipStrength >= 70 {
		probs.Supportive += 0.1
		probs.Pressure *= 0.7
		probs.ControlPush *= 0.7
		probs.ExitPush *= 0.7
		factors = append(factors, "Strong relationship reduces negative reactions (+supportive)")
	}

	return factors
}

// normalizeProbabilities rescales the distribution so the six categories sum to 1
func normalizeProbabilities(probs models.ReactionProbabilities) models.ReactionProbabilities {
	total := probs.Sum()
	if total == 0 {
		total = 1.0
	}
	return models.ReactionProbabilities{
		Supportive:  math.Max(0.0, probs.Supportive/total),
		Neutral:     math.Max(0.0, probs.Neutral/total),
		Pressure:    math.Max(0.0, probs.Pressure/total),
		ControlPush: math.Max(0.0, probs.ControlPush/total),
		ExitPush:    math.Max(0.0, probs.ExitPush/total),
		Ghost:       math.Max(0.0, probs.Ghost/total),
	}
}

// confidenceFrom scores how much data backs a forecast. The base is the
// average per-axis confidence, with bonuses for repeated decision episodes,
// a deep event log, and observed term sheets, clamped to [0.1, 1.0].
func confidenceFrom(axisConfidence models.BehaviorAxes, metrics models.BehaviorMetrics, hasTermSheet bool) float64 {
	base := (axisConfidence.RiskAppetite +
		axisConfidence.ControlOrientation +
		axisConfidence.Patience +
		axisConfidence.StressBehavior +
		axisConfidence.RelationshipStyle +
		axisConfidence.ConvictionStrength) / 6.0

	if metrics.EpisodesCount >= 2 {
		base += 0.1
	}
	if metrics.EventsCount >= 10 {
		base += 0.1
	}
	if hasTermSheet {
		base += 0.1
	}

	return math.Max(0.1, math.Min(1.0, base))
}

// buildGuidance surfaces the investors most likely to push for control
// terms and the most supportive profiles in this scenario.
func buildGuidance(forecasts []models.InvestorForecast) []string {
	guidance := []string{}

	risky := ectolinq.Map(
		ectolinq.Filter(forecasts, func(f models.InvestorForecast) bool {
			return f.Probabilities.ControlPush >= 0.2
		}),
		func(f models.InvestorForecast) string { return f.InvestorName },
	)
	if len(risky) > 0 {
		if len(risky) > maxGuidanceNames {
			risky = risky[:maxGuidanceNames]
		}
		guidance = append(guidance, fmt.Sprintf("Investors likely to push for control terms: %s.", strings.Join(risky, ", ")))
	}

	supportive := ectolinq.Map(
		ectolinq.Filter(forecasts, func(f models.InvestorForecast) bool {
			return f.Probabilities.Supportive >= 0.4
		}),
		func(f models.InvestorForecast) string { return f.InvestorName },
	)
	if len(supportive) > 0 {
		if len(supportive) > maxGuidanceNames {
			supportive = supportive[:maxGuidanceNames]
		}
		guidance = append(guidance, fmt.Sprintf("Most supportive profiles in this scenario: %s.", strings.Join(supportive, ", ")))
	}

	return guidance
}
