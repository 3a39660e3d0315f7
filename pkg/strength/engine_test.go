package strength

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func TestEngine_Compute(t *testing.T) {
	engine := NewEngine()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active pair with deep pipeline", func(t *testing.T) {
		lastTS := now.Add(-3 * 24 * time.Hour)
		inputs := Inputs{
			SharedInvestorsCount: 3,
			SharedOrgCount:       2,
			EventCounts: map[models.InteractionEventType]int{
				models.EventMeetingCompleted: 2,
				models.EventEmailReply:       3,
				models.EventDocShared:        1,
				models.EventCommitmentMade:   1,
			},
			LastInteractionTS: &lastTS,
			CounterpartStatus: "interested",
		}

		result := engine.Compute(inputs, now)

		// network 25 (capped) + intensity 30.5 + recency 20 + progression 12
		assert.Equal(t, 88, result.Strength)
		require.NotNil(t, result.LastInteractionTS)
		assert.Equal(t, lastTS, *result.LastInteractionTS)
		assert.Equal(t, []string{
			"Seen in 3 investor networks (+18)",
			"Common org across networks (+7)",
			"2 meeting(s) completed (+12)",
			"3 reply event(s) (+6)",
			"1 doc/term-sheet event(s) (+2)",
			"1 commitment/closing event(s) (+10)",
			"Last touch within 7 days (+20)",
			"Pipeline stage: interested (+12)",
		}, result.Factors)
	})

	t.Run("no data at all", func(t *testing.T) {
		result := engine.Compute(Inputs{}, now)

		assert.Equal(t, 0, result.Strength)
		assert.Empty(t, result.Factors)
		assert.Nil(t, result.LastInteractionTS)
	})

	t.Run("meeting points cap at 20", func(t *testing.T) {
		inputs := Inputs{
			EventCounts: map[models.InteractionEventType]int{
				models.EventMeetingCompleted: 5,
			},
		}

		result := engine.Compute(inputs, now)

		assert.Equal(t, 20, result.Strength)
		assert.Contains(t, result.Factors, "5 meeting(s) completed (+20)")
	})

	t.Run("term sheet events count as docs", func(t *testing.T) {
		inputs := Inputs{
			EventCounts: map[models.InteractionEventType]int{
				models.EventDocShared:         1,
				models.EventTermSheetReceived: 1,
				models.EventTermSheetSigned:   1,
			},
		}

		result := engine.Compute(inputs, now)

		// 3 docs at 2.5 each, capped at 5
		assert.Equal(t, 5, result.Strength)
		assert.Contains(t, result.Factors, "3 doc/term-sheet event(s) (+5)")
	})

	t.Run("recency tiers", func(t *testing.T) {
		cases := []struct {
			name     string
			daysAgo  int
			strength int
			factor   string
		}{
			{"within 30 days", 20, 12, "Last touch within 30 days (+12)"},
			{"within 90 days", 60, 6, "Last touch within 90 days (+6)"},
			{"stale", 200, 0, "Last touch over 90 days ago (+0)"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				ts := now.Add(-time.Duration(tc.daysAgo) * 24 * time.Hour)
				result := engine.Compute(Inputs{LastInteractionTS: &ts}, now)

				assert.Equal(t, tc.strength, result.Strength)
				assert.Equal(t, []string{tc.factor}, result.Factors)
			})
		}
	})

	t.Run("progression status", func(t *testing.T) {
		result := engine.Compute(Inputs{CounterpartStatus: "Invested"}, now)
		assert.Equal(t, 20, result.Strength)
		assert.Equal(t, []string{"Pipeline stage: invested (+20)"}, result.Factors)

		result = engine.Compute(Inputs{CounterpartStatus: "prospect"}, now)
		assert.Equal(t, 0, result.Strength)
		assert.Empty(t, result.Factors)

		result = engine.Compute(Inputs{CounterpartStatus: "board member"}, now)
		assert.Equal(t, 0, result.Strength)
		assert.Empty(t, result.Factors)
	})
}
