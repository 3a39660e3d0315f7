package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func investor(id int64, name, firm string) models.Investor {
	inv := models.Investor{ID: id, FullName: name}
	if firm != "" {
		inv.Firm = &firm
	}
	return inv
}

func conn(investorID int64, fullName, company, position string) models.Connection {
	c := models.Connection{InvestorID: investorID}
	if fullName != "" {
		c.FullName = &fullName
	}
	if company != "" {
		c.Company = &company
	}
	if position != "" {
		c.Position = &position
	}
	return c
}

func strPtr(s string) *string { return &s }

func testInvestors() []models.Investor {
	return []models.Investor{
		investor(1, "Alice Adams", "Sequoia Capital"),
		investor(2, "Bob Brown", ""),
		investor(3, "Cara Diaz", ""),
	}
}

func TestEngine_ComputeIntelligence(t *testing.T) {
	engine := NewEngine()

	t.Run("no investors", func(t *testing.T) {
		result := engine.ComputeIntelligence(nil, nil)

		assert.Equal(t, 0, result.TotalNodes)
		assert.Equal(t, 0.0, result.OverlapPercentage)
		assert.Empty(t, result.TopOverlappingPeople)
		assert.NotNil(t, result.TopOverlappingPeople)
		assert.NotNil(t, result.PersonToInvestors)
	})

	t.Run("counts shared people and orgs across investors", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Jane Doe", "Acme Corp", "VP Engineering"),
			conn(2, "jane doe", "ACME CORP", ""),
			conn(1, "John Smith", "Beta LLC", ""),
			conn(3, "John Smith", "Gamma Inc", ""),
			conn(2, "Zoe Park", "Beta LLC", ""),
			conn(3, "Solo Person", "", ""),
			// No full name: the row is excluded entirely.
			{InvestorID: 2, FirstName: strPtr("Ann"), LastName: strPtr("Lee")},
			// Whitespace full name still passes the column filter and the
			// display name falls back to first plus last.
			{InvestorID: 2, FullName: strPtr("   "), FirstName: strPtr("Pat"), LastName: strPtr("Lee")},
		}

		result := engine.ComputeIntelligence(testInvestors(), connections)

		assert.Equal(t, 11, result.TotalNodes)
		assert.Equal(t, 7, result.TotalEdges)
		assert.Equal(t, 5, result.UniquePeopleCount)
		assert.Equal(t, 3, result.UniqueOrgCount)
		assert.Equal(t, 2, result.OverlapPeopleCount)
		assert.Equal(t, 2, result.OverlapOrgCount)
		assert.Equal(t, 50.0, result.OverlapPercentage)
		assert.Equal(t, 2, result.CollapseCount)
		assert.Equal(t, 40.0, result.CollapseRate)

		assert.Equal(t, []models.OverlapEntry{
			{Label: "Jane Doe", Count: 2},
			{Label: "John Smith", Count: 2},
		}, result.TopOverlappingPeople)
		assert.Equal(t, []models.OverlapEntry{
			{Label: "acme corp", Count: 2},
			{Label: "beta llc", Count: 2},
		}, result.TopOverlappingOrgs)

		assert.Equal(t, map[string][]int64{
			"janedoe":    {1, 2},
			"johnsmith":  {1, 3},
			"zoepark":    {2},
			"soloperson": {3},
			"patlee":     {2},
		}, result.PersonToInvestors)
		assert.Equal(t, map[string][]int64{
			"acme corp": {1, 2},
			"beta llc":  {1, 2},
			"gamma inc": {3},
		}, result.OrgToInvestors)
	})

	t.Run("name keys fold accents and spacing", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "José García", "", ""),
			conn(2, "Jose Garcia", "", ""),
		}

		result := engine.ComputeIntelligence(testInvestors(), connections)

		assert.Equal(t, 1, result.UniquePeopleCount)
		assert.Equal(t, 1, result.OverlapPeopleCount)
		require.Len(t, result.TopOverlappingPeople, 1)
		assert.Equal(t, "José García", result.TopOverlappingPeople[0].Label)
	})

	t.Run("ranks by investor count", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Pair Person", "", ""),
			conn(2, "Pair Person", "", ""),
			conn(1, "Trio Person", "", ""),
			conn(2, "Trio Person", "", ""),
			conn(3, "Trio Person", "", ""),
		}

		result := engine.ComputeIntelligence(testInvestors(), connections)

		assert.Equal(t, []models.OverlapEntry{
			{Label: "Trio Person", Count: 3},
			{Label: "Pair Person", Count: 2},
		}, result.TopOverlappingPeople)
	})
}

func TestEngine_ComputeMatrix(t *testing.T) {
	engine := NewEngine()

	t.Run("fewer than two investors", func(t *testing.T) {
		result := engine.ComputeMatrix([]models.Investor{investor(1, "Alice Adams", "")}, []models.Connection{
			conn(1, "Jane Doe", "", ""),
		})

		require.Len(t, result.Investors, 1)
		assert.Equal(t, 0, result.Investors[0].ConnectionCount)
		assert.Empty(t, result.Matrix)
		assert.Empty(t, result.SharedConnections)
	})

	t.Run("symmetric counts with pair details", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Jane Doe", "Acme Corp", "VP Engineering"),
			conn(2, "Jane Doe", "Acme", ""),
			conn(1, "John Smith", "Beta LLC", ""),
			conn(3, "John Smith", "Gamma Inc", ""),
			conn(2, "Zoe Park", "Beta LLC", ""),
			{InvestorID: 2, FirstName: strPtr("Ann"), LastName: strPtr("Lee")},
		}

		result := engine.ComputeMatrix(testInvestors(), connections)

		require.Len(t, result.Investors, 3)
		assert.Equal(t, "Alice Adams", result.Investors[0].FullName)
		require.NotNil(t, result.Investors[0].Firm)
		assert.Equal(t, "Sequoia Capital", *result.Investors[0].Firm)
		assert.Equal(t, 2, result.Investors[0].ConnectionCount)
		assert.Equal(t, 2, result.Investors[1].ConnectionCount)
		assert.Equal(t, 1, result.Investors[2].ConnectionCount)

		assert.Equal(t, [][]int{
			{0, 1, 1},
			{1, 0, 0},
			{1, 0, 0},
		}, result.Matrix)

		require.Len(t, result.SharedConnections, 2)
		assert.Equal(t, []models.SharedConnection{
			{Name: "Jane Doe", Company: "Acme Corp", Position: "VP Engineering"},
		}, result.SharedConnections["0-1"])
		assert.Equal(t, []models.SharedConnection{
			{Name: "John Smith", Company: "Beta LLC", Position: ""},
		}, result.SharedConnections["0-2"])
	})

	t.Run("ignores connections of unknown investors", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Jane Doe", "", ""),
			conn(99, "Jane Doe", "", ""),
		}

		result := engine.ComputeMatrix(testInvestors(), connections)

		assert.Equal(t, [][]int{
			{0, 0, 0},
			{0, 0, 0},
			{0, 0, 0},
		}, result.Matrix)
		assert.Empty(t, result.SharedConnections)
	})
}
