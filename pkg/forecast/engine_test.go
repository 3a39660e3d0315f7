package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func neutralBehavior() models.BehaviorProfileResult {
	return models.BehaviorProfileResult{
		AxisScores: models.BehaviorAxes{
			RiskAppetite:       50,
			ControlOrientation: 50,
			Patience:           50,
			StressBehavior:     50,
			RelationshipStyle:  50,
			ConvictionStrength: 50,
		},
		Confidence: models.BehaviorAxes{
			RiskAppetite:       0.4,
			ControlOrientation: 0.4,
			Patience:           0.4,
			StressBehavior:     0.4,
			RelationshipStyle:  0.4,
			ConvictionStrength: 0.4,
		},
		Metrics: models.BehaviorMetrics{EpisodesCount: 1, EventsCount: 5},
	}
}

func TestEngine_ForecastInvestor(t *testing.T) {
	engine := NewEngine()

	t.Run("neutral profile in custom scenario keeps the prior", func(t *testing.T) {
		forecast := engine.ForecastInvestor(models.ScenarioTypeCustom, Inputs{
			InvestorID:   1,
			InvestorName: "Alice Adams",
			Behavior:     neutralBehavior(),
		})

		assert.Empty(t, forecast.Factors)
		assert.InDelta(t, 0.3, forecast.Probabilities.Supportive, 0.0001)
		assert.InDelta(t, 0.4, forecast.Probabilities.Neutral, 0.0001)
		assert.InDelta(t, 0.15, forecast.Probabilities.Pressure, 0.0001)
		assert.InDelta(t, 0.05, forecast.Probabilities.ControlPush, 0.0001)
		assert.InDelta(t, 0.05, forecast.Probabilities.ExitPush, 0.0001)
		assert.InDelta(t, 0.05, forecast.Probabilities.Ghost, 0.0001)
		assert.InDelta(t, 1.0, forecast.Probabilities.Sum(), 0.0001)
		assert.InDelta(t, 0.4, forecast.Confidence, 0.0001)
	})

	t.Run("controlling stressed investor in a down round", func(t *testing.T) {
		behavior := neutralBehavior()
		behavior.AxisScores.ControlOrientation = 65
		behavior.AxisScores.StressBehavior = 70
		behavior.AxisScores.ConvictionStrength = 70
		behavior.AxisScores.RiskAppetite = 65

		forecast := engine.ForecastInvestor(models.ScenarioTypeDownRound, Inputs{
			InvestorID:   2,
			InvestorName: "Bob Brown",
			Behavior:     behavior,
		})

		// Raw mass: supportive 0.4, neutral 0.4, pressure 0.3,
		// control_push 0.15, exit_push 0.05, ghost 0.05, total 1.35.
		assert.Equal(t, []string{
			"High control_orientation in downside scenario (+control_push, +pressure)",
			"High stress_behavior in negative scenario (+pressure)",
			"High conviction & risk appetite (+supportive)",
		}, forecast.Factors)
		assert.InDelta(t, 0.2963, forecast.Probabilities.Supportive, 0.0001)
		assert.InDelta(t, 0.2963, forecast.Probabilities.Neutral, 0.0001)
		assert.InDelta(t, 0.2222, forecast.Probabilities.Pressure, 0.0001)
		assert.InDelta(t, 0.1111, forecast.Probabilities.ControlPush, 0.0001)
		assert.InDelta(t, 0.0370, forecast.Probabilities.ExitPush, 0.0001)
		assert.InDelta(t, 0.0370, forecast.Probabilities.Ghost, 0.0001)
		assert.InDelta(t, 1.0, forecast.Probabilities.Sum(), 0.0001)
	})

	t.Run("strong relationship dampens negative reactions", func(t *testing.T) {
		forecast := engine.ForecastInvestor(models.ScenarioTypeCustom, Inputs{
			InvestorID:           3,
			InvestorName:         "Cara Diaz",
			Behavior:             neutralBehavior(),
			RelationshipStrength: 85,
		})

		// Raw mass: supportive 0.4, neutral 0.4, pressure 0.105,
		// control_push 0.035, exit_push 0.035, ghost 0.05, total 1.025.
		assert.Equal(t, []string{"Strong relationship reduces negative reactions (+supportive)"}, forecast.Factors)
		assert.InDelta(t, 0.3902, forecast.Probabilities.Supportive, 0.0001)
		assert.InDelta(t, 0.1024, forecast.Probabilities.Pressure, 0.0001)
		assert.InDelta(t, 0.0341, forecast.Probabilities.ControlPush, 0.0001)
		assert.InDelta(t, 0.0488, forecast.Probabilities.Ghost, 0.0001)
		assert.Equal(t, 85, forecast.RelationshipStrength)
	})

	t.Run("impatient investor in delayed exit", func(t *testing.T) {
		behavior := neutralBehavior()
		behavior.AxisScores.Patience = 35

		forecast := engine.ForecastInvestor(models.ScenarioTypeDelayedExit, Inputs{
			InvestorID:   4,
			InvestorName: "Dion Frey",
			Behavior:     behavior,
		})

		// Raw mass: pressure 0.2, exit_push 0.15, total 1.15.
		assert.Equal(t, []string{"Low patience in delayed exit scenario (+exit_push, +pressure)"}, forecast.Factors)
		assert.InDelta(t, 0.1304, forecast.Probabilities.ExitPush, 0.0001)
		assert.InDelta(t, 0.1739, forecast.Probabilities.Pressure, 0.0001)
	})

	t.Run("patient investor in delayed exit leans neutral", func(t *testing.T) {
		behavior := neutralBehavior()
		behavior.AxisScores.Patience = 60

		forecast := engine.ForecastInvestor(models.ScenarioTypeDelayedExit, Inputs{
			InvestorID:   5,
			InvestorName: "Elle Gray",
			Behavior:     behavior,
		})

		// Raw mass: neutral 0.45, total 1.05.
		assert.Equal(t, []string{"Higher patience dampens negative reactions (+neutral)"}, forecast.Factors)
		assert.InDelta(t, 0.4286, forecast.Probabilities.Neutral, 0.0001)
	})

	t.Run("confidence is clamped to the floor without data", func(t *testing.T) {
		forecast := engine.ForecastInvestor(models.ScenarioTypeCustom, Inputs{
			InvestorID:   6,
			InvestorName: "Finn Hale",
		})

		assert.InDelta(t, 0.1, forecast.Confidence, 0.0001)
	})

	t.Run("a term sheet lifts confidence", func(t *testing.T) {
		without := engine.ForecastInvestor(models.ScenarioTypeCustom, Inputs{
			InvestorID:   8,
			InvestorName: "Hana Ito",
			Behavior:     neutralBehavior(),
		})
		with := engine.ForecastInvestor(models.ScenarioTypeCustom, Inputs{
			InvestorID:   8,
			InvestorName: "Hana Ito",
			Behavior:     neutralBehavior(),
			HasTermSheet: true,
		})

		assert.InDelta(t, 0.4, without.Confidence, 0.0001)
		assert.InDelta(t, 0.5, with.Confidence, 0.0001)
	})

	t.Run("confidence bonuses cap at one", func(t *testing.T) {
		behavior := neutralBehavior()
		behavior.Confidence = models.BehaviorAxes{
			RiskAppetite:       1.0,
			ControlOrientation: 1.0,
			Patience:           1.0,
			StressBehavior:     1.0,
			RelationshipStyle:  1.0,
			ConvictionStrength: 1.0,
		}
		behavior.Metrics.EpisodesCount = 3
		behavior.Metrics.EventsCount = 12

		forecast := engine.ForecastInvestor(models.ScenarioTypeCustom, Inputs{
			InvestorID:   7,
			InvestorName: "Gwen Idris",
			Behavior:     behavior,
			HasTermSheet: true,
		})

		assert.InDelta(t, 1.0, forecast.Confidence, 0.0001)
	})
}

func TestEngine_RunScenario(t *testing.T) {
	engine := NewEngine()

	t.Run("no investors", func(t *testing.T) {
		result, confidence := engine.RunScenario(models.ScenarioTypeDownRound, nil)

		assert.Equal(t, models.ScenarioTypeDownRound, result.ScenarioType)
		assert.Empty(t, result.Investors)
		assert.Empty(t, result.Guidance)
		assert.InDelta(t, 0.1, confidence, 0.0001)
	})

	t.Run("unknown scenario falls back to custom", func(t *testing.T) {
		result, _ := engine.RunScenario(models.ScenarioType("surprise_round"), []Inputs{
			{InvestorID: 1, InvestorName: "Alice Adams", Behavior: neutralBehavior()},
		})

		assert.Equal(t, models.ScenarioTypeCustom, result.ScenarioType)
	})

	t.Run("guidance names supportive profiles", func(t *testing.T) {
		committed := neutralBehavior()
		committed.AxisScores.ConvictionStrength = 70
		committed.AxisScores.RiskAppetite = 65

		// Ivy hits supportive 0.5/1.125, clearing the 0.4 guidance bar.
		result, _ := engine.RunScenario(models.ScenarioTypeDownRound, []Inputs{
			{InvestorID: 1, InvestorName: "Ivy Chen", Behavior: committed, RelationshipStrength: 80},
			{InvestorID: 2, InvestorName: "Joel Kim", Behavior: neutralBehavior()},
		})

		require.Len(t, result.Guidance, 1)
		assert.Equal(t, "Most supportive profiles in this scenario: Ivy Chen.", result.Guidance[0])
	})

	t.Run("control push stays below the guidance bar", func(t *testing.T) {
		// Even a maximally controlling profile lands at 0.15/1.15 after
		// normalization, so the control-terms warning cannot fire under
		// the current rule weights.
		controlling := neutralBehavior()
		controlling.AxisScores.ControlOrientation = 95
		controlling.AxisScores.StressBehavior = 95

		result, _ := engine.RunScenario(models.ScenarioTypeMissedRevenue, []Inputs{
			{InvestorID: 1, InvestorName: "Kai Lowe", Behavior: controlling},
		})

		require.Len(t, result.Investors, 1)
		assert.Less(t, result.Investors[0].Probabilities.ControlPush, 0.2)
		assert.Empty(t, result.Guidance)
	})

	t.Run("averages confidence across investors", func(t *testing.T) {
		confident := neutralBehavior()
		confident.Confidence = models.BehaviorAxes{
			RiskAppetite:       1.0,
			ControlOrientation: 1.0,
			Patience:           1.0,
			StressBehavior:     1.0,
			RelationshipStyle:  1.0,
			ConvictionStrength: 1.0,
		}
		confident.Metrics.EpisodesCount = 3
		confident.Metrics.EventsCount = 12

		_, confidence := engine.RunScenario(models.ScenarioTypeCustom, []Inputs{
			{InvestorID: 1, InvestorName: "Alice Adams", Behavior: neutralBehavior()},
			{InvestorID: 2, InvestorName: "Bob Brown", Behavior: confident, HasTermSheet: true},
		})

		assert.InDelta(t, 0.7, confidence, 0.0001)
	})
}
