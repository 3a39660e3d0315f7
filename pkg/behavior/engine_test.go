package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

var base = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func evt(et models.InteractionEventType, day int) models.Interaction {
	return models.Interaction{
		EventType: et,
		EventTS:   base.AddDate(0, 0, day),
	}
}

func TestEngine_ComputeProfile(t *testing.T) {
	engine := NewEngine()

	t.Run("fast decisive investor", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventIntroSent, 0),
			evt(models.EventEmailSent, 2),
			evt(models.EventEmailReply, 3),
			evt(models.EventMeetingCompleted, 5),
			evt(models.EventCommitmentMade, 10),
			evt(models.EventIntroSent, 20),
			evt(models.EventMeetingCompleted, 21),
			evt(models.EventInvestmentClosed, 28),
		}

		result := engine.ComputeProfile(interactions)
		metrics := result.Metrics

		assert.Equal(t, 2, metrics.EpisodesCount)
		assert.Equal(t, 8, metrics.EventsCount)
		require.NotNil(t, metrics.AvgTimeToDecisionDays)
		assert.Equal(t, 9.0, *metrics.AvgTimeToDecisionDays)
		require.NotNil(t, metrics.AvgMeetingsToDecision)
		assert.Equal(t, 1.0, *metrics.AvgMeetingsToDecision)
		require.NotNil(t, metrics.ResponseRate)
		assert.Equal(t, 1.0, *metrics.ResponseRate)
		assert.Nil(t, metrics.FollowupLatencyHours)
		assert.Equal(t, models.PriorityStyleFastDecisive, metrics.PriorityStyle)
		assert.Equal(t, models.ReliabilityHigh, metrics.Reliability)

		assert.Equal(t, 75.0, result.AxisScores.RiskAppetite)
		assert.Equal(t, 50.0, result.AxisScores.ControlOrientation)
		assert.Equal(t, 50.0, result.AxisScores.Patience)
		assert.Equal(t, 70.0, result.AxisScores.StressBehavior)
		assert.Equal(t, 75.0, result.AxisScores.RelationshipStyle)
		assert.Equal(t, 75.0, result.AxisScores.ConvictionStrength)

		// episode axes read the episode count, event axes the event count
		assert.Equal(t, 0.4, result.Confidence.RiskAppetite)
		assert.Equal(t, 1.0, result.Confidence.ControlOrientation)
		assert.Equal(t, 0.4, result.Confidence.ConvictionStrength)
	})

	t.Run("slow deliberate investor", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventIntroSent, 0),
			evt(models.EventMeetingCompleted, 5),
			evt(models.EventMeetingCompleted, 10),
			evt(models.EventMeetingCompleted, 15),
			evt(models.EventDeclined, 40),
		}

		result := engine.ComputeProfile(interactions)
		metrics := result.Metrics

		assert.Equal(t, 1, metrics.EpisodesCount)
		require.NotNil(t, metrics.AvgTimeToDecisionDays)
		assert.Equal(t, 40.0, *metrics.AvgTimeToDecisionDays)
		assert.Equal(t, models.PriorityStyleSlowDeliberate, metrics.PriorityStyle)
		// no email events, so reliability cannot be judged
		assert.Nil(t, metrics.ResponseRate)
		assert.Equal(t, models.ReliabilityUnknown, metrics.Reliability)

		assert.Equal(t, 50.0, result.AxisScores.RiskAppetite)
		assert.Equal(t, 0.1, result.Confidence.RiskAppetite)
		assert.Equal(t, 0.7, result.Confidence.ControlOrientation)
	})

	t.Run("ghosting drags down stress and reliability", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventEmailSent, 0),
			evt(models.EventEmailSent, 2),
			evt(models.EventEmailSent, 4),
			evt(models.EventEmailSent, 6),
			evt(models.EventEmailReply, 7),
			evt(models.EventGhosted, 20),
			evt(models.EventGhosted, 40),
		}

		result := engine.ComputeProfile(interactions)
		metrics := result.Metrics

		assert.Equal(t, 0, metrics.EpisodesCount)
		assert.Equal(t, 2, metrics.GhostedCount)
		require.NotNil(t, metrics.ResponseRate)
		assert.Equal(t, 0.25, *metrics.ResponseRate)
		assert.Equal(t, models.PriorityStyleUnknown, metrics.PriorityStyle)
		assert.Equal(t, models.ReliabilityLow, metrics.Reliability)

		assert.Equal(t, 40.0, result.AxisScores.StressBehavior)
		assert.Equal(t, 35.0, result.AxisScores.RelationshipStyle)
		assert.Equal(t, 50.0, result.AxisScores.RiskAppetite)
	})

	t.Run("open episode is dropped", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventIntroSent, 0),
			evt(models.EventMeetingCompleted, 5),
		}

		result := engine.ComputeProfile(interactions)

		assert.Equal(t, 0, result.Metrics.EpisodesCount)
		assert.Nil(t, result.Metrics.AvgTimeToDecisionDays)
		assert.Equal(t, 2, result.Metrics.EventsCount)
	})

	t.Run("decision without open episode is ignored", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventDeclined, 0),
		}

		result := engine.ComputeProfile(interactions)

		assert.Equal(t, 0, result.Metrics.EpisodesCount)
		assert.Equal(t, 1, result.Metrics.EventsCount)
	})

	t.Run("repeated intro inside an open episode is ignored", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventIntroSent, 0),
			evt(models.EventMeetingCompleted, 1),
			evt(models.EventIntroSent, 2),
			evt(models.EventDeclined, 3),
		}

		result := engine.ComputeProfile(interactions)

		assert.Equal(t, 1, result.Metrics.EpisodesCount)
		require.NotNil(t, result.Metrics.AvgTimeToDecisionDays)
		assert.Equal(t, 3.0, *result.Metrics.AvgTimeToDecisionDays)
		require.NotNil(t, result.Metrics.AvgMeetingsToDecision)
		assert.Equal(t, 1.0, *result.Metrics.AvgMeetingsToDecision)
	})

	t.Run("input order does not matter", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventCommitmentMade, 10),
			evt(models.EventMeetingCompleted, 5),
			evt(models.EventIntroSent, 0),
		}

		result := engine.ComputeProfile(interactions)

		assert.Equal(t, 1, result.Metrics.EpisodesCount)
		require.NotNil(t, result.Metrics.AvgTimeToDecisionDays)
		assert.Equal(t, 10.0, *result.Metrics.AvgTimeToDecisionDays)
		require.NotNil(t, result.Metrics.AvgMeetingsToDecision)
		assert.Equal(t, 1.0, *result.Metrics.AvgMeetingsToDecision)
	})

	t.Run("long patient episode without ghosting", func(t *testing.T) {
		interactions := []models.Interaction{
			evt(models.EventIntroSent, 0),
			evt(models.EventDeclined, 50),
		}

		result := engine.ComputeProfile(interactions)

		assert.Equal(t, 75.0, result.AxisScores.Patience)
		assert.Equal(t, 35.0, result.AxisScores.RiskAppetite)
		assert.Equal(t, 50.0, result.AxisScores.ConvictionStrength)
		assert.Equal(t, models.PriorityStyleUnknown, result.Metrics.PriorityStyle)
	})

	t.Run("no interactions", func(t *testing.T) {
		result := engine.ComputeProfile(nil)

		assert.Equal(t, 0, result.Metrics.EventsCount)
		assert.Equal(t, models.PriorityStyleUnknown, result.Metrics.PriorityStyle)
		assert.Equal(t, models.ReliabilityUnknown, result.Metrics.Reliability)
		assert.Equal(t, 50.0, result.AxisScores.RiskAppetite)
		assert.Equal(t, 70.0, result.AxisScores.StressBehavior)
		assert.Equal(t, 0.1, result.Confidence.RiskAppetite)
	})
}
