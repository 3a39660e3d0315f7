package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/trellis/pkg/metrics"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Mirror projects a company's access map into the graph database
type Mirror struct {
	client *Client
	logger ectologger.Logger
}

// NewMirror creates a new access map mirror. A nil client disables mirroring,
// which keeps rebuilds working when no graph database is configured.
func NewMirror(client *Client, logger ectologger.Logger) *Mirror {
	return &Mirror{
		client: client,
		logger: logger,
	}
}

// Enabled reports whether syncs will actually be written
func (m *Mirror) Enabled() bool {
	return m != nil && m.client != nil
}

// SyncAccessMap replaces the company's subgraph with the given access map.
// Node ids are the durable Postgres row ids, so Cypher results can be joined
// back against the API. The whole swap runs in one write transaction.
func (m *Mirror) SyncAccessMap(ctx context.Context, companyID int64, accessMap *models.AccessMap) error {
	if !m.Enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.SyncAccessMap")
	defer span.End()

	log := m.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id": companyID,
		"node_count": len(accessMap.Nodes),
		"edge_count": len(accessMap.Edges),
	})

	nodesByLabel := make(map[string][]map[string]any)
	for _, node := range accessMap.Nodes {
		nodesByLabel[nodeLabel(node.NodeType)] = append(nodesByLabel[nodeLabel(node.NodeType)], nodeProps(node))
	}

	edgesByType := make(map[string][]map[string]any)
	for _, edge := range accessMap.Edges {
		edgesByType[edgeRelType(edge.EdgeType)] = append(edgesByType[edgeRelType(edge.EdgeType)], map[string]any{
			"from_node_id": edge.FromNodeID,
			"to_node_id":   edge.ToNodeID,
			"weight":       edge.Weight,
		})
	}

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MATCH (n {company_id: $company_id})
			DETACH DELETE n
		`, map[string]any{"company_id": companyID})
		if err != nil {
			return nil, err
		}

		for label, batch := range nodesByLabel {
			cypher := fmt.Sprintf(`
				UNWIND $batch AS props
				MERGE (n:%s {node_id: props.node_id, company_id: props.company_id})
				SET n = props
			`, label)
			if _, err := tx.Run(ctx, cypher, map[string]any{"batch": batch}); err != nil {
				return nil, err
			}
		}

		for relType, batch := range edgesByType {
			cypher := fmt.Sprintf(`
				UNWIND $batch AS edge
				MATCH (from {node_id: edge.from_node_id, company_id: $company_id})
				MATCH (to {node_id: edge.to_node_id, company_id: $company_id})
				CREATE (from)-[r:%s {weight: edge.weight}]->(to)
			`, relType)
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"batch":      batch,
				"company_id": companyID,
			}); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})

	if err != nil {
		metrics.RecordGraphMirrorSync("error")
		log.WithError(err).Error("Failed to mirror access map to graph database")
		return fmt.Errorf("failed to mirror access map: %w", err)
	}

	metrics.RecordGraphMirrorSync("success")
	log.Debug("Mirrored access map to graph database")
	return nil
}

func nodeProps(node models.NetworkNode) map[string]any {
	props := map[string]any{
		"node_id":    node.ID,
		"company_id": node.CompanyID,
		"node_type":  string(node.NodeType),
		"label":      node.Label,
	}
	if node.Meta.Firm != nil {
		props["firm"] = *node.Meta.Firm
	}
	if node.Meta.Title != nil {
		props["title"] = *node.Meta.Title
	}
	if node.Meta.InvestorID != nil {
		props["investor_id"] = *node.Meta.InvestorID
	}
	if node.Meta.SharedInvestorsCount != nil {
		props["shared_investors_count"] = *node.Meta.SharedInvestorsCount
	}
	return props
}

func nodeLabel(nodeType models.NetworkNodeType) string {
	switch nodeType {
	case models.NetworkNodeTypeInvestor:
		return "Investor"
	case models.NetworkNodeTypePerson:
		return "Person"
	case models.NetworkNodeTypeOrg:
		return "Org"
	default:
		return "Node"
	}
}

func edgeRelType(edgeType models.NetworkEdgeType) string {
	switch edgeType {
	case models.NetworkEdgeTypeDirect:
		return "DIRECT"
	case models.NetworkEdgeTypeSecondDegree:
		return "SECOND_DEGREE"
	default:
		return "RELATED"
	}
}
