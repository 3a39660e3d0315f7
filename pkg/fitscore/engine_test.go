package fitscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func testProfile() models.CompanyProfile {
	return models.CompanyProfile{
		IndustryTokens: map[string]bool{"fintech": true},
		LocationTokens: map[string]bool{"san francisco, ca": true, "san francisco": true, "ca": true},
		FirmTypeTokens: map[string]bool{"capital": true},
		TitlePatterns:  map[string]bool{"partner": true},
		InvestorFirms:  map[string]bool{"sequoia capital": true, "benchmark": true},
	}
}

func TestEngine_Compute(t *testing.T) {
	engine := NewEngine()

	t.Run("strong candidate", func(t *testing.T) {
		cand := Candidate{
			Company:  "Acme Capital",
			Position: "Partner",
			Location: "San Francisco, CA",
		}

		fit := engine.Compute(cand, testProfile(), 3, 2)

		// similarity 15 (title 10 + firm 5) + network 35 + location 20 + recency 7.5
		assert.Equal(t, 78, fit.Score)
		assert.Equal(t, 15.0, fit.Breakdown.Similarity)
		assert.Equal(t, 35.0, fit.Breakdown.Network)
		assert.Equal(t, 20.0, fit.Breakdown.Location)
		assert.Equal(t, 7.5, fit.Breakdown.Recency)
		assert.Contains(t, fit.Factors, "Investor-like title")
		assert.Contains(t, fit.Factors, "Seen in 3 investor networks")
		assert.Contains(t, fit.Factors, "Company appears across network")
		assert.Contains(t, fit.Factors, "Location match with your investors")
	})

	t.Run("no signals keeps only neutral recency", func(t *testing.T) {
		cand := Candidate{Position: "Student"}

		fit := engine.Compute(cand, testProfile(), 0, 0)

		assert.Equal(t, 8, fit.Score)
		assert.Empty(t, fit.Factors)
		assert.Equal(t, 0.0, fit.Breakdown.Similarity)
		assert.Equal(t, 0.0, fit.Breakdown.Network)
		assert.Equal(t, 0.0, fit.Breakdown.Location)
		assert.Equal(t, 7.5, fit.Breakdown.Recency)
	})

	t.Run("mid network tier", func(t *testing.T) {
		cand := Candidate{Company: "Acme Capital", Position: "Partner"}

		fit := engine.Compute(cand, testProfile(), 2, 1)

		// similarity 15 + network 19 + recency 7.5
		assert.Equal(t, 42, fit.Score)
		assert.Contains(t, fit.Factors, "Seen in 2 investor networks")
		assert.Contains(t, fit.Factors, "Company in network")
	})

	t.Run("single shared investor", func(t *testing.T) {
		cand := Candidate{Company: "Acme Capital", Position: "Partner"}

		fit := engine.Compute(cand, testProfile(), 1, 0)

		// similarity 15 + network 5 + recency 7.5
		assert.Equal(t, 28, fit.Score)
		assert.Contains(t, fit.Factors, "In 1 investor's network")
	})

	t.Run("industry matches scale with token count", func(t *testing.T) {
		profile := testProfile()
		profile.IndustryTokens = map[string]bool{
			"fintech": true, "payments": true, "data": true, "cloud": true,
		}
		cand := Candidate{Company: "Stripe", Position: "Fintech Payments Lead"}

		fit := engine.Compute(cand, profile, 0, 0)

		// two industry tokens match: 3 + 2*2 = 7 similarity points
		assert.Equal(t, 7.0, fit.Breakdown.Similarity)
		require.Len(t, fit.Factors, 1)
		assert.Equal(t, "Industry overlap with your investors", fit.Factors[0])
	})

	t.Run("half scores round to even", func(t *testing.T) {
		profile := testProfile()
		profile.IndustryTokens = map[string]bool{
			"fintech": true, "payments": true, "data": true, "cloud": true,
		}
		cand := Candidate{
			Company:  "Sequoia Capital",
			Position: "Head of Fintech Payments Data Cloud",
			Location: "San Francisco, CA",
		}

		fit := engine.Compute(cand, profile, 2, 1)

		// similarity 30 + network 19 + location 20 + recency 7.5 = 76.5
		assert.Equal(t, 30.0, fit.Breakdown.Similarity)
		assert.Equal(t, 76, fit.Score)
		assert.Len(t, fit.Factors, 6)
	})
}
