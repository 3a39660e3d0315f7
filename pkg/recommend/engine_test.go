package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func testInvestors() []models.Investor {
	return []models.Investor{
		{
			ID:          1,
			CompanyID:   10,
			FullName:    "Alice Adams",
			Firm:        strPtr("Sequoia Capital"),
			Title:       strPtr("Partner"),
			Location:    strPtr("San Francisco, CA"),
			Industry:    strPtr("Fintech"),
			LinkedinURL: strPtr("https://linkedin.com/in/alice-adams"),
		},
		{
			ID:        2,
			CompanyID: 10,
			FullName:  "Bob Brown",
			Firm:      strPtr("Benchmark"),
			Title:     strPtr("Principal"),
			Location:  strPtr("New York, NY"),
		},
	}
}

func conn(investorID int64, name, company, position, location string) models.Connection {
	c := models.Connection{InvestorID: investorID, FullName: strPtr(name)}
	if company != "" {
		c.Company = strPtr(company)
	}
	if position != "" {
		c.Position = strPtr(position)
	}
	if location != "" {
		c.Location = strPtr(location)
	}
	return c
}

func TestEngine_BuildProfile(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	profile := engine.BuildProfile(testInvestors())

	assert.True(t, profile.IndustryTokens["fintech"])
	assert.True(t, profile.LocationTokens["san francisco"])
	assert.True(t, profile.LocationTokens["new york, ny"])
	assert.True(t, profile.FirmTypeTokens["capital"])
	assert.True(t, profile.InvestorFirms["sequoia capital"])
	assert.True(t, profile.InvestorFirms["benchmark"])
	assert.True(t, profile.TitlePatterns["partner"])
	assert.True(t, profile.TitlePatterns["principal"])
}

func TestEngine_RunPipeline(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	investors := testInvestors()

	t.Run("merges the same person seen through two investors", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Jane Doe", "Acme Capital", "Partner", "San Francisco, CA"),
			conn(2, "Jane Doe", "Acme Capital", "Partner", "San Francisco, CA"),
		}

		items, _ := engine.RunPipeline(investors, connections, 0)
		require.Len(t, items, 1)

		item := items[0]
		assert.Equal(t, "Jane Doe", item.Name)
		assert.Equal(t, 2, item.SharedInvestorsCount)
		// "acme capital" appears on two connection rows, so it counts as a
		// shared org and fires the company-in-network signal
		assert.Equal(t, 1, item.SharedOrgCount)
		assert.True(t, item.Signals[models.SignalLocation])
		assert.True(t, item.Signals[models.SignalFirmType])
		assert.True(t, item.Signals[models.SignalTitlePattern])
		assert.True(t, item.Signals[models.SignalCompanyInNetwork])
		// location 3 + firm type 3 + title 3 + company in network 5
		assert.Equal(t, 14.0, item.Score)
		assert.Contains(t, item.Reasons, "Firm type: capital")
		assert.Contains(t, item.Reasons, "Company in network (2 connections)")
		require.NotNil(t, item.SourceInvestorID)
		assert.Equal(t, int64(1), *item.SourceInvestorID)
	})

	t.Run("single signal candidates are gated out", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Carl Cole", "Walmart", "Cashier", "San Francisco, CA"),
		}

		items, _ := engine.RunPipeline(investors, connections, 0)
		assert.Empty(t, items)
	})

	t.Run("existing investor excluded by linkedin url", func(t *testing.T) {
		c := conn(1, "Alicia Cooper", "Acme Capital", "Partner", "")
		c.LinkedinURL = strPtr("HTTPS://LinkedIn.com/in/Alice-Adams")

		items, _ := engine.RunPipeline(investors, []models.Connection{c}, 0)
		assert.Empty(t, items)
	})

	t.Run("existing investor excluded by normalized name", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "alice ADAMS", "Acme Capital", "Partner", ""),
		}

		items, _ := engine.RunPipeline(investors, connections, 0)
		assert.Empty(t, items)
	})

	t.Run("existing investor excluded by firm title and fuzzy name", func(t *testing.T) {
		// same firm and title as Alice Adams, name one letter off
		connections := []models.Connection{
			conn(1, "Alice Adems", "Sequoia Capital", "Partner", ""),
		}

		items, _ := engine.RunPipeline(investors, connections, 0)
		assert.Empty(t, items)
	})

	t.Run("different firm keeps the fuzzy name", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Alice Adems", "Acme Capital", "Partner", ""),
		}

		items, _ := engine.RunPipeline(investors, connections, 0)
		require.Len(t, items, 1)
		assert.Equal(t, "Alice Adems", items[0].Name)
	})

	t.Run("sorts by score desc then name asc", func(t *testing.T) {
		connections := []models.Connection{
			// firm type + title = 6
			conn(1, "Zed Zane", "Acme Ventures", "Principal", ""),
			// location + firm type + title = 9
			conn(1, "Amy Low", "Beta Capital", "Partner", "New York, NY"),
			// firm type + title = 6, ties with Zed on score
			conn(2, "Ben King", "Gamma Fund", "Associate", ""),
		}

		items, _ := engine.RunPipeline(investors, connections, 0)
		require.Len(t, items, 3)
		assert.Equal(t, "Amy Low", items[0].Name)
		assert.Equal(t, "Ben King", items[1].Name)
		assert.Equal(t, "Zed Zane", items[2].Name)
	})

	t.Run("topN limits the feed after ranking", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Zed Zane", "Acme Ventures", "Principal", ""),
			conn(1, "Amy Low", "Beta Capital", "Partner", "New York, NY"),
		}

		items, _ := engine.RunPipeline(investors, connections, 1)
		require.Len(t, items, 1)
		assert.Equal(t, "Amy Low", items[0].Name)
	})

	t.Run("keeps max score and unions reasons across sources", func(t *testing.T) {
		weak := conn(1, "Dana Reed", "Delta Fund", "Analyst", "")
		strong := conn(2, "Dana Reed", "Delta Fund", "Analyst", "New York, NY")

		items, _ := engine.RunPipeline(investors, []models.Connection{weak, strong}, 0)
		require.Len(t, items, 1)

		item := items[0]
		// firm type 3 + title 3 + location 3 from the stronger sighting
		assert.Equal(t, 9.0, item.Score)
		assert.Contains(t, item.Reasons, "Location match")
		assert.Equal(t, 2, item.SharedInvestorsCount)
	})

	t.Run("no investors yields empty feed", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Jane Doe", "Acme Capital", "Partner", "San Francisco, CA"),
		}

		items, profile := engine.RunPipeline(nil, connections, 0)
		// firm type and title still fire off the global vocabulary
		require.Len(t, items, 1)
		assert.Empty(t, profile.IndustryTokens)
		assert.Empty(t, profile.LocationTokens)
	})

	t.Run("rows without names are skipped", func(t *testing.T) {
		blank := models.Connection{InvestorID: 1, FullName: strPtr("   ")}

		items, _ := engine.RunPipeline(investors, []models.Connection{blank}, 0)
		assert.Empty(t, items)
	})
}

func TestEngine_RunPipeline_DefaultTopN(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	investors := testInvestors()

	connections := make([]models.Connection, 0, 120)
	for i := 0; i < 120; i++ {
		connections = append(connections, conn(1, fmt.Sprintf("Person %03d", i), "Acme Capital", "Partner", ""))
	}

	items, _ := engine.RunPipeline(investors, connections, 0)
	assert.Len(t, items, 100)
}
