package accessmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func newInvestor(id int64, name string) models.Investor {
	return models.Investor{ID: id, CompanyID: 10, FullName: name}
}

func conn(investorID int64, fullName, company string) models.Connection {
	c := models.Connection{InvestorID: investorID}
	if fullName != "" {
		c.FullName = &fullName
	}
	if company != "" {
		c.Company = &company
	}
	return c
}

func TestEngine_Build(t *testing.T) {
	engine := NewEngine()

	t.Run("no investors yields an empty map", func(t *testing.T) {
		result := engine.Build(10, nil, nil)

		assert.Empty(t, result.Nodes)
		assert.Empty(t, result.Edges)
		assert.Equal(t, models.AccessMapStats{}, result.Metrics)
	})

	t.Run("rings are ordered investors, people, orgs", func(t *testing.T) {
		firm := "Sequoia Capital"
		title := "Partner"
		alice := newInvestor(1, "Alice Adams")
		alice.Firm = &firm
		alice.Title = &title

		connections := []models.Connection{
			conn(1, "Jane Doe", "Acme Corp"),
			conn(2, "jane doe", "ACME CORP"),
			conn(1, "John Smith", ""),
			{InvestorID: 2}, // nameless row becomes the Unknown person
		}

		result := engine.Build(10, []models.Investor{alice, newInvestor(2, "Bob Brown")}, connections)

		require.Len(t, result.Nodes, 6)

		assert.Equal(t, models.NetworkNodeTypeInvestor, result.Nodes[0].NodeType)
		assert.Equal(t, int64(1), result.Nodes[0].ID)
		assert.Equal(t, "Alice Adams", result.Nodes[0].Label)
		require.NotNil(t, result.Nodes[0].Meta.Firm)
		assert.Equal(t, "Sequoia Capital", *result.Nodes[0].Meta.Firm)
		require.NotNil(t, result.Nodes[0].Meta.InvestorID)
		assert.Equal(t, int64(1), *result.Nodes[0].Meta.InvestorID)

		assert.Equal(t, models.NetworkNodeTypeInvestor, result.Nodes[1].NodeType)
		assert.Equal(t, "Bob Brown", result.Nodes[1].Label)

		assert.Equal(t, models.NetworkNodeTypePerson, result.Nodes[2].NodeType)
		assert.Equal(t, "Jane Doe", result.Nodes[2].Label)
		require.NotNil(t, result.Nodes[2].Meta.SharedInvestorsCount)
		assert.Equal(t, 2, *result.Nodes[2].Meta.SharedInvestorsCount)

		assert.Equal(t, "John Smith", result.Nodes[3].Label)
		assert.Equal(t, "Unknown", result.Nodes[4].Label)

		assert.Equal(t, models.NetworkNodeTypeOrg, result.Nodes[5].NodeType)
		assert.Equal(t, "acme corp", result.Nodes[5].Label)
		require.NotNil(t, result.Nodes[5].Meta.SharedInvestorsCount)
		assert.Equal(t, 2, *result.Nodes[5].Meta.SharedInvestorsCount)

		assert.Equal(t, models.AccessMapStats{
			NodeCount:     6,
			EdgeCount:     6,
			InvestorCount: 2,
			PersonCount:   3,
			OrgCount:      1,
		}, result.Metrics)
	})

	t.Run("shared people raise direct edge weight", func(t *testing.T) {
		connections := []models.Connection{
			conn(1, "Jane Doe", "Acme Corp"),
			conn(2, "Jane Doe", "Acme Corp"),
			conn(1, "John Smith", ""),
		}

		result := engine.Build(10, []models.Investor{newInvestor(1, "Alice Adams"), newInvestor(2, "Bob Brown")}, connections)

		var direct []models.NetworkEdge
		var second []models.NetworkEdge
		for _, edge := range result.Edges {
			switch edge.EdgeType {
			case models.NetworkEdgeTypeDirect:
				direct = append(direct, edge)
			case models.NetworkEdgeTypeSecondDegree:
				second = append(second, edge)
			}
		}

		require.Len(t, direct, 3)
		assert.Equal(t, 1.5, direct[0].Weight) // Jane from Alice, shared by 2
		assert.Equal(t, 1.5, direct[1].Weight) // Jane from Bob
		assert.Equal(t, 1.0, direct[2].Weight) // John from Alice only

		// One person-to-org edge per row with a company, duplicates included.
		require.Len(t, second, 2)
		assert.Equal(t, second[0].FromNodeID, second[1].FromNodeID)
		assert.Equal(t, second[0].ToNodeID, second[1].ToNodeID)
		assert.Equal(t, 1.0, second[0].Weight)
	})

	t.Run("edge weight caps at five", func(t *testing.T) {
		investors := make([]models.Investor, 0, 10)
		connections := make([]models.Connection, 0, 10)
		for i := int64(1); i <= 10; i++ {
			investors = append(investors, newInvestor(i, fmt.Sprintf("Investor %d", i)))
			connections = append(connections, conn(i, "Jane Doe", ""))
		}

		result := engine.Build(10, investors, connections)

		require.Len(t, result.Edges, 10)
		for _, edge := range result.Edges {
			assert.Equal(t, 5.0, edge.Weight)
		}
	})

	t.Run("connections of unknown investors keep their person node but no edge", func(t *testing.T) {
		result := engine.Build(10, []models.Investor{newInvestor(1, "Alice Adams")}, []models.Connection{
			conn(99, "Jane Doe", ""),
		})

		require.Len(t, result.Nodes, 2)
		assert.Equal(t, "Jane Doe", result.Nodes[1].Label)
		assert.Empty(t, result.Edges)
	})
}
