// Package accessmap builds the tripartite graph behind the orbit view:
// the company's investors as the inner ring, the people in their imported
// networks outside it, and the orgs those people sit at on the rim.
package accessmap

import (
	"math"
	"strings"

	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/normalize"
)

// Direct edge weights grow with how many investors share the person, capped here
const maxEdgeWeight = 5.0

// Engine assembles access map graphs. It is stateless and safe for
// concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Build assembles the graph for one company. Node ids are in-memory only,
// assigned 1..n in ring order (investors, then people, then orgs); the
// repository assigns durable ids on rebuild. Every connection row emits a
// direct investor-to-person edge, so a contact an investor imported twice
// contributes two edges.
func (e *Engine) Build(companyID int64, investors []models.Investor, connections []models.Connection) models.AccessMap {
	result := models.AccessMap{
		CompanyID: companyID,
		Nodes:     []models.NetworkNode{},
		Edges:     []models.NetworkEdge{},
	}
	if len(investors) == 0 {
		return result
	}

	nextID := int64(1)
	investorNodeID := make(map[int64]int64, len(investors))
	for _, inv := range investors {
		investorID := inv.ID
		investorNodeID[inv.ID] = nextID
		result.Nodes = append(result.Nodes, models.NetworkNode{
			ID:        nextID,
			CompanyID: companyID,
			NodeType:  models.NetworkNodeTypeInvestor,
			Label:     inv.FullName,
			Meta:      models.NodeMeta{Firm: inv.Firm, Title: inv.Title, InvestorID: &investorID},
		})
		nextID++
	}

	// First pass: distinct investors per person and org, in first-seen order.
	// The counts drive both node metadata and direct edge weights.
	personInvestors := map[string]map[int64]bool{}
	personLabels := map[string]string{}
	personOrder := []string{}
	orgInvestors := map[string]map[int64]bool{}
	orgOrder := []string{}

	for i := range connections {
		conn := &connections[i]
		label := personLabel(conn)
		pk := personKey(label)
		if _, ok := personInvestors[pk]; !ok {
			personInvestors[pk] = map[int64]bool{}
			personLabels[pk] = label
			personOrder = append(personOrder, pk)
		}
		personInvestors[pk][conn.InvestorID] = true

		if org := orgKeyOf(conn); org != "" {
			if _, ok := orgInvestors[org]; !ok {
				orgInvestors[org] = map[int64]bool{}
				orgOrder = append(orgOrder, org)
			}
			orgInvestors[org][conn.InvestorID] = true
		}
	}

	personNodeID := make(map[string]int64, len(personOrder))
	for _, pk := range personOrder {
		count := len(personInvestors[pk])
		personNodeID[pk] = nextID
		result.Nodes = append(result.Nodes, models.NetworkNode{
			ID:        nextID,
			CompanyID: companyID,
			NodeType:  models.NetworkNodeTypePerson,
			Label:     personLabels[pk],
			Meta:      models.NodeMeta{SharedInvestorsCount: &count},
		})
		nextID++
	}

	orgNodeID := make(map[string]int64, len(orgOrder))
	for _, org := range orgOrder {
		count := len(orgInvestors[org])
		orgNodeID[org] = nextID
		result.Nodes = append(result.Nodes, models.NetworkNode{
			ID:        nextID,
			CompanyID: companyID,
			NodeType:  models.NetworkNodeTypeOrg,
			Label:     org,
			Meta:      models.NodeMeta{SharedInvestorsCount: &count},
		})
		nextID++
	}

	for i := range connections {
		conn := &connections[i]
		fromID, okFrom := investorNodeID[conn.InvestorID]
		pk := personKey(personLabel(conn))
		toID, okTo := personNodeID[pk]
		if !okFrom || !okTo {
			continue
		}
		weight := 1.0 + float64(len(personInvestors[pk])-1)*0.5
		result.Edges = append(result.Edges, models.NetworkEdge{
			CompanyID:  companyID,
			FromNodeID: fromID,
			ToNodeID:   toID,
			EdgeType:   models.NetworkEdgeTypeDirect,
			Weight:     math.Min(weight, maxEdgeWeight),
		})
	}

	for i := range connections {
		conn := &connections[i]
		org := orgKeyOf(conn)
		if org == "" {
			continue
		}
		fromID, okFrom := personNodeID[personKey(personLabel(conn))]
		toID, okTo := orgNodeID[org]
		if !okFrom || !okTo {
			continue
		}
		result.Edges = append(result.Edges, models.NetworkEdge{
			CompanyID:  companyID,
			FromNodeID: fromID,
			ToNodeID:   toID,
			EdgeType:   models.NetworkEdgeTypeSecondDegree,
			Weight:     1.0,
		})
	}

	result.Metrics = models.AccessMapStats{
		NodeCount:     len(result.Nodes),
		EdgeCount:     len(result.Edges),
		InvestorCount: len(investors),
		PersonCount:   len(personOrder),
		OrgCount:      len(orgOrder),
	}
	return result
}

// personLabel is the display form for a connection row. Nameless rows all
// collapse into a single "Unknown" person node rather than being dropped,
// so the graph still shows the reach they represent.
func personLabel(conn *models.Connection) string {
	if name := conn.DisplayName(); name != "" {
		return name
	}
	return "Unknown"
}

// personKey falls back to the lowercased label when the name key normalizes
// to nothing, e.g. punctuation-only names.
func personKey(label string) string {
	if key := normalize.NameKey(label); key != "" {
		return key
	}
	return strings.ToLower(label)
}

func orgKeyOf(conn *models.Connection) string {
	if conn.Company == nil {
		return ""
	}
	return normalize.OrgKey(*conn.Company)
}
