package integration

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/accessmap"
	"github.com/Ramsey-B/trellis/pkg/fitscore"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/nli"
	"github.com/Ramsey-B/trellis/pkg/orbit"
	"github.com/Ramsey-B/trellis/pkg/overlap"
	"github.com/Ramsey-B/trellis/pkg/recommend"
)

// The fixtures mirror a real import: one investor uploads a LinkedIn
// connections export, the other a hand-built spreadsheet with loose headers.
// Dana White and Sequoia Capital appear in both networks, so every overlap
// surface downstream should light up.
const linkedinExportCSV = `First Name,Last Name,URL,Email Address,Company,Position,Connected On
Dana,White,https://linkedin.com/in/danawhite,dana@example.com,Sequoia Capital,Partner,12 Jan 2024
Evan,Stone,,evan@example.com,Acme Bank,VP Engineering,03 Mar 2024
,,,,Ghost Org,,01 Jan 2024
`

const spreadsheetCSV = `Name,Employer,Title,Location
Dana White,Sequoia Capital,Partner,"New York, NY"
Grace Liu,Sequoia Capital,Principal,"Boston, MA"
Henry Park,Vertex Fund,Managing Director,"San Francisco, CA"
`

func connectionsFrom(investorID int64, records []orbit.Record) []models.Connection {
	conns := make([]models.Connection, 0, len(records))
	for i, rec := range records {
		req := rec.Request()
		conns = append(conns, models.Connection{
			ID:          investorID*100 + int64(i),
			InvestorID:  investorID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			FullName:    req.FullName,
			Company:     req.Company,
			Position:    req.Position,
			Location:    req.Location,
			LinkedinURL: req.LinkedinURL,
			ConnectedOn: req.ConnectedOn,
		})
	}
	return conns
}

func findNode(t *testing.T, am models.AccessMap, nodeType models.NetworkNodeType, label string) models.NetworkNode {
	t.Helper()
	for _, node := range am.Nodes {
		if node.NodeType == nodeType && node.Label == label {
			return node
		}
	}
	t.Fatalf("no %s node labeled %q", nodeType, label)
	return models.NetworkNode{}
}

func edgesByType(am models.AccessMap) map[models.NetworkEdgeType][]models.NetworkEdge {
	byType := map[models.NetworkEdgeType][]models.NetworkEdge{}
	for _, edge := range am.Edges {
		byType[edge.EdgeType] = append(byType[edge.EdgeType], edge)
	}
	return byType
}

// TestNetworkPipelineFlow drives the full in-memory pipeline the way the
// rebuild endpoints do: parse two orbit imports, assemble the access map,
// compute overlap intelligence, run the suggestion pipeline with fit scoring,
// and fold everything into a monthly NLI snapshot.
func TestNetworkPipelineFlow(t *testing.T) {
	const companyID = int64(7)

	investors := []models.Investor{
		{
			ID:        1,
			CompanyID: companyID,
			FullName:  "Alice Chen",
			Firm:      strPtr("Summit Capital"),
			Title:     strPtr("Partner"),
			Industry:  strPtr("fintech"),
			Location:  strPtr("New York, NY"),
		},
		{
			ID:        2,
			CompanyID: companyID,
			FullName:  "Bob Marsh",
			Firm:      strPtr("Harbor Fund"),
			Title:     strPtr("Managing Director"),
			Industry:  strPtr("payments"),
			Location:  strPtr("San Francisco, CA"),
		},
	}

	t.Log("Step 1: parse both connection exports")
	parser := orbit.NewParser()

	resultA, err := parser.Parse(strings.NewReader(linkedinExportCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, resultA.TotalRows)
	assert.Equal(t, 1, resultA.Skipped, "nameless row is dropped at parse time")
	require.Len(t, resultA.Records, 2)
	assert.Equal(t, "Dana White", resultA.Records[0].FullName)
	assert.Equal(t, "12 Jan 2024", resultA.Records[0].ConnectedOn)

	resultB, err := parser.Parse(strings.NewReader(spreadsheetCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, resultB.Skipped)
	require.Len(t, resultB.Records, 3)
	assert.Equal(t, "Henry", resultB.Records[2].FirstName, "full name is split when the export has no name parts")
	assert.Equal(t, "Park", resultB.Records[2].LastName)

	t.Log("Step 2: build connection rows, plus one nameless API-created row")
	connections := connectionsFrom(1, resultA.Records)
	// A row logged through the API with only an employer. The parser never
	// emits these, but the graph still has to account for them.
	connections = append(connections, models.Connection{
		ID:         199,
		InvestorID: 1,
		Company:    strPtr("Sequoia Capital"),
	})
	connections = append(connections, connectionsFrom(2, resultB.Records)...)
	require.Len(t, connections, 6)

	t.Log("Step 3: assemble the access map")
	am := accessmap.NewEngine().Build(companyID, investors, connections)

	assert.Equal(t, 10, am.Metrics.NodeCount)
	assert.Equal(t, 12, am.Metrics.EdgeCount)
	assert.Equal(t, 2, am.Metrics.InvestorCount)
	assert.Equal(t, 5, am.Metrics.PersonCount, "four named people plus the Unknown bucket")
	assert.Equal(t, 3, am.Metrics.OrgCount)

	dana := findNode(t, am, models.NetworkNodeTypePerson, "Dana White")
	require.NotNil(t, dana.Meta.SharedInvestorsCount)
	assert.Equal(t, 2, *dana.Meta.SharedInvestorsCount)

	unknown := findNode(t, am, models.NetworkNodeTypePerson, "Unknown")
	require.NotNil(t, unknown.Meta.SharedInvestorsCount)
	assert.Equal(t, 1, *unknown.Meta.SharedInvestorsCount)

	findNode(t, am, models.NetworkNodeTypeOrg, "sequoia capital")

	byType := edgesByType(am)
	assert.Len(t, byType[models.NetworkEdgeTypeDirect], 6, "one direct edge per connection row")
	assert.Len(t, byType[models.NetworkEdgeTypeSecondDegree], 6)

	danaEdges := []models.NetworkEdge{}
	for _, edge := range byType[models.NetworkEdgeTypeDirect] {
		if edge.ToNodeID == dana.ID {
			danaEdges = append(danaEdges, edge)
		}
	}
	require.Len(t, danaEdges, 2, "both investors reach Dana directly")
	for _, edge := range danaEdges {
		assert.Equal(t, 1.5, edge.Weight, "weight grows with shared investors")
	}

	t.Log("Step 4: compute overlap intelligence")
	intel := overlap.NewEngine().ComputeIntelligence(investors, connections)

	assert.Equal(t, 9, intel.TotalNodes, "nameless rows stay out of overlap counts")
	assert.Equal(t, 5, intel.TotalEdges)
	assert.Equal(t, 4, intel.UniquePeopleCount)
	assert.Equal(t, 3, intel.UniqueOrgCount)
	assert.Equal(t, 1, intel.OverlapPeopleCount)
	assert.Equal(t, 1, intel.OverlapOrgCount)
	assert.Equal(t, 28.6, intel.OverlapPercentage)
	assert.Equal(t, 1, intel.CollapseCount)
	assert.Equal(t, 25.0, intel.CollapseRate)

	require.Len(t, intel.TopOverlappingPeople, 1)
	assert.Equal(t, "Dana White", intel.TopOverlappingPeople[0].Label)
	assert.Equal(t, 2, intel.TopOverlappingPeople[0].Count)
	require.Len(t, intel.TopOverlappingOrgs, 1)
	assert.Equal(t, "sequoia capital", intel.TopOverlappingOrgs[0].Label)
	assert.Equal(t, []int64{1, 2}, intel.PersonToInvestors["danawhite"])
	assert.Equal(t, []int64{1, 2}, intel.OrgToInvestors["sequoia capital"])

	t.Log("Step 5: run the suggestion pipeline and fit-score the feed")
	items, profile := recommend.NewEngine(recommend.DefaultConfig()).RunPipeline(investors, connections, 10)

	require.Len(t, items, 3, "Evan carries a single signal and is gated out")
	assert.Equal(t, "Dana White", items[0].Name)
	assert.Equal(t, "Grace Liu", items[1].Name)
	assert.Equal(t, "Henry Park", items[2].Name)

	top := items[0]
	assert.Equal(t, 2, top.SharedInvestorsCount)
	assert.Equal(t, 1, top.SharedOrgCount)
	assert.True(t, top.Signals[models.SignalFirmType])
	assert.True(t, top.Signals[models.SignalTitlePattern])
	assert.True(t, top.Signals[models.SignalCompanyInNetwork])
	assert.True(t, top.Signals[models.SignalLocation], "merged candidates keep signals from every source row")
	assert.Equal(t, 14.0, top.Score)

	fit := fitscore.NewEngine().Compute(fitscore.Candidate{
		Company:  top.Company,
		Position: top.Position,
		Location: top.Location,
	}, profile, top.SharedInvestorsCount, top.SharedOrgCount)
	assert.Greater(t, fit.Score, 0)
	assert.LessOrEqual(t, fit.Score, 100)
	assert.NotEmpty(t, fit.Factors)
	assert.Greater(t, fit.Breakdown.Network, 0.0)
	assert.Equal(t, 7.5, fit.Breakdown.Recency, "candidates have no interaction history yet")

	t.Log("Step 6: fold the month into an NLI snapshot")
	month := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	interactions := []models.Interaction{
		{CompanyID: companyID, EventType: models.EventIntroSent, EventTS: time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)},
		{CompanyID: companyID, EventType: models.EventMeetingCompleted, EventTS: time.Date(2025, 6, 28, 16, 30, 0, 0, time.UTC)},
		{CompanyID: companyID, EventType: models.EventIntroSent, EventTS: time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)},
		{CompanyID: companyID, EventType: models.EventEmailSent, EventTS: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)},
		{CompanyID: companyID, EventType: models.EventMeetingScheduled, EventTS: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	metrics := nli.NewEngine().Compute(nli.Inputs{
		AccessMap:      am,
		OverlapDensity: intel.OverlapPercentage,
		Interactions:   interactions,
		Month:          month,
	})

	assert.Equal(t, 10, metrics.TotalNodes)
	assert.Equal(t, 12, metrics.TotalEdges)
	assert.Equal(t, 28.6, metrics.OverlapDensity)
	assert.Equal(t, 2, metrics.IntroVelocity, "only intro and meeting events inside June count")
	assert.Equal(t, 2, metrics.CapitalAdjacency, "sequoia capital and vertex fund carry firm tokens")
	assert.Equal(t, 9, metrics.NLIScore)
	assert.Equal(t, "2025-06-01", nli.MonthKey(month))
}

func strPtr(s string) *string {
	return &s
}
