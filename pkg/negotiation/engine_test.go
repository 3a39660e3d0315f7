package negotiation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func sheet(terms string) models.TermSheet {
	return models.TermSheet{ParsedTerms: json.RawMessage(terms)}
}

func TestExtractor_ClausePresent(t *testing.T) {
	extractor := NewExtractor(nil)

	tests := []struct {
		name    string
		doc     map[string]any
		key     string
		present bool
	}{
		{"string value", map[string]any{"liquidation_pref": "1x"}, "liquidation_pref", true},
		{"boolean true", map[string]any{"board_seat": true}, "board_seat", true},
		{"boolean false still counts", map[string]any{"participation": false}, "participation", true},
		{"numeric zero still counts", map[string]any{"redemption": float64(0)}, "redemption", true},
		{"empty string opts out", map[string]any{"liquidation_pref": ""}, "liquidation_pref", false},
		{"none opts out", map[string]any{"protective_provisions": "none"}, "protective_provisions", false},
		{"off opts out", map[string]any{"pro_rata": "off"}, "pro_rata", false},
		{"opt-outs are case sensitive", map[string]any{"pro_rata": "OFF"}, "pro_rata", true},
		{"missing key", map[string]any{"board_seat": true}, "veto_rights", false},
		{"explicit null", map[string]any{"veto_rights": nil}, "veto_rights", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.present, extractor.ClausePresent(tt.key, tt.doc))
		})
	}
}

func TestExtractor_ClauseValue(t *testing.T) {
	t.Run("reads nested paths", func(t *testing.T) {
		extractor := NewExtractor(map[string]string{
			"liquidation_pref": "economics.liquidation_pref",
		})

		doc := map[string]any{
			"economics": map[string]any{"liquidation_pref": "2x"},
		}

		value, err := extractor.ClauseValue("liquidation_pref", doc)
		require.NoError(t, err)
		assert.Equal(t, "2x", value)
	})

	t.Run("unmapped clauses read the bare key", func(t *testing.T) {
		extractor := NewExtractor(map[string]string{
			"liquidation_pref": "economics.liquidation_pref",
		})

		value, err := extractor.ClauseValue("board_seat", map[string]any{"board_seat": true})
		require.NoError(t, err)
		assert.Equal(t, true, value)
	})
}

func TestExtractor_Validate(t *testing.T) {
	t.Run("accepts valid paths", func(t *testing.T) {
		extractor := NewExtractor(map[string]string{
			"board_seat": "governance.board_seat",
		})
		assert.NoError(t, extractor.Validate())
	})

	t.Run("rejects malformed expressions", func(t *testing.T) {
		extractor := NewExtractor(map[string]string{
			"board_seat": "governance.[invalid",
		})
		err := extractor.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "board_seat")
	})
}

func TestEngine_ParseTermDocs(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	sheets := []models.TermSheet{
		sheet(`{"board_seat": true}`),
		sheet(`{bad json`),
		sheet(`null`),
		sheet(`"not an object"`),
		{},
		sheet(`{"liquidation_pref": "1x"}`),
	}

	docs := engine.ParseTermDocs(sheets)
	require.Len(t, docs, 2)
	assert.Equal(t, map[string]any{"board_seat": true}, docs[0])
	assert.Equal(t, map[string]any{"liquidation_pref": "1x"}, docs[1])
}

func TestEngine_AggregateClauseStats(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	t.Run("counts presence across documents", func(t *testing.T) {
		docs := engine.ParseTermDocs([]models.TermSheet{
			sheet(`{"liquidation_pref": "1x", "participation": true, "board_seat": true, "protective_provisions": "standard", "pro_rata": true}`),
			sheet(`{"liquidation_pref": "1x", "board_seat": true, "veto_rights": "budget approvals", "drag_along": true}`),
			sheet(`{"liquidation_pref": "2x participating", "participation": false, "board_seat": true, "redemption": "after year 5"}`),
			sheet(`{"liquidation_pref": "", "board_seat": true, "protective_provisions": "none", "pro_rata": "off"}`),
		})

		stats := engine.AggregateClauseStats(docs)

		assert.Equal(t, map[string]int{
			"liquidation_pref":      3,
			"participation":         2,
			"board_seat":            4,
			"protective_provisions": 1,
			"drag_along":            1,
			"pro_rata":              1,
			"redemption":            1,
			"veto_rights":           1,
		}, stats.Frequency)

		assert.Equal(t, map[string]float64{
			"liquidation_pref":      0.75,
			"participation":         0.5,
			"board_seat":            1.0,
			"protective_provisions": 0.25,
			"drag_along":            0.25,
			"pro_rata":              0.25,
			"redemption":            0.25,
			"veto_rights":           0.25,
		}, stats.Likelihood)
	})

	t.Run("no documents reads zero everywhere", func(t *testing.T) {
		stats := engine.AggregateClauseStats(nil)

		require.Len(t, stats.Frequency, len(models.ClauseKeys))
		require.Len(t, stats.Likelihood, len(models.ClauseKeys))
		for _, key := range models.ClauseKeys {
			assert.Equal(t, 0, stats.Frequency[key])
			assert.Equal(t, 0.0, stats.Likelihood[key])
		}
	})
}

func TestEngine_ScoresFromClauseStats(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	t.Run("mixed clause mix", func(t *testing.T) {
		stats := models.ClauseStats{Likelihood: map[string]float64{
			"liquidation_pref":      0.75,
			"participation":         0.5,
			"board_seat":            1.0,
			"protective_provisions": 0.25,
			"drag_along":            0.25,
			"pro_rata":              0.25,
			"redemption":            0.25,
			"veto_rights":           0.25,
		}}

		founder, control := engine.ScoresFromClauseStats(stats)
		assert.Equal(t, 50, founder)
		assert.Equal(t, 44, control)
	})

	t.Run("no clauses reads founder friendly", func(t *testing.T) {
		founder, control := engine.ScoresFromClauseStats(models.ClauseStats{})
		assert.Equal(t, 100, founder)
		assert.Equal(t, 0, control)
	})

	t.Run("every clause on every sheet saturates", func(t *testing.T) {
		likelihood := make(map[string]float64, len(models.ClauseKeys))
		for _, key := range models.ClauseKeys {
			likelihood[key] = 1.0
		}

		founder, control := engine.ScoresFromClauseStats(models.ClauseStats{Likelihood: likelihood})
		assert.Equal(t, 0, founder)
		assert.Equal(t, 100, control)
	})

	t.Run("half points round to even", func(t *testing.T) {
		// board_seat on one of two sheets: control 12.5 rounds down to 12,
		// founder 87.5 rounds up to 88.
		stats := models.ClauseStats{Likelihood: map[string]float64{"board_seat": 0.5}}

		founder, control := engine.ScoresFromClauseStats(stats)
		assert.Equal(t, 88, founder)
		assert.Equal(t, 12, control)
	})
}

func TestEngine_BuildProfile(t *testing.T) {
	t.Run("skips malformed sheets", func(t *testing.T) {
		engine := NewEngine(DefaultConfig())

		profile := engine.BuildProfile([]models.TermSheet{
			sheet(`{"board_seat": true}`),
			sheet(`{bad json`),
			{},
		})

		assert.Equal(t, 1, profile.ClauseStats.Frequency["board_seat"])
		assert.Equal(t, 1.0, profile.ClauseStats.Likelihood["board_seat"])
		assert.Equal(t, 25, profile.ControlRiskScore)
		assert.Equal(t, 75, profile.FounderFriendlinessScore)
	})

	t.Run("clause paths map nested documents", func(t *testing.T) {
		engine := NewEngine(EngineConfig{ClausePaths: map[string]string{
			"liquidation_pref": "economics.liquidation_pref",
			"board_seat":       "governance.board_seat",
		}})
		require.NoError(t, engine.Validate())

		profile := engine.BuildProfile([]models.TermSheet{
			sheet(`{"economics": {"liquidation_pref": "1x"}, "governance": {"board_seat": true}, "pro_rata": true}`),
		})

		assert.Equal(t, 1, profile.ClauseStats.Frequency["liquidation_pref"])
		assert.Equal(t, 1, profile.ClauseStats.Frequency["board_seat"])
		assert.Equal(t, 1, profile.ClauseStats.Frequency["pro_rata"])
		assert.Equal(t, 0, profile.ClauseStats.Frequency["veto_rights"])
	})

	t.Run("no sheets reads fully founder friendly", func(t *testing.T) {
		engine := NewEngine(DefaultConfig())

		profile := engine.BuildProfile(nil)
		assert.Equal(t, 100, profile.FounderFriendlinessScore)
		assert.Equal(t, 0, profile.ControlRiskScore)
	})
}
