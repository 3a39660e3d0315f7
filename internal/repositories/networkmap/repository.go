package networkmap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// nodeRow is the database row for one access map node
type nodeRow struct {
	ID        int64                           `db:"id"`
	CompanyID int64                           `db:"company_id"`
	NodeType  models.NetworkNodeType          `db:"node_type"`
	Label     string                          `db:"label"`
	Meta      database.JSONB[models.NodeMeta] `db:"meta"`
	CreatedAt time.Time                       `db:"created_at"`
}

func toNode(row nodeRow) models.NetworkNode {
	return models.NetworkNode{
		ID:        row.ID,
		CompanyID: row.CompanyID,
		NodeType:  row.NodeType,
		Label:     row.Label,
		Meta:      row.Meta.Data,
		CreatedAt: row.CreatedAt,
	}
}

// Repository handles the persisted access map graph
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new network map repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Rebuild swaps a company's persisted graph for the given one in a single
// transaction: readers see either the old graph or the new one, never a
// half-deleted state. Input node ids are the builder's in-memory ids; the
// returned graph carries the durable ids the database assigned.
func (r *Repository) Rebuild(ctx context.Context, companyID int64, graph models.AccessMap) (*models.AccessMap, error) {
	ctx, span := tracing.StartSpan(ctx, "networkmap.Repository.Rebuild")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Rebuild",
		"company_id": companyID,
		"nodes":      len(graph.Nodes),
		"edges":      len(graph.Edges),
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	// Edges reference nodes, so they go first
	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("network_edges")
	sb.Where(sb.Equal("company_id", companyID))
	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to delete existing edges")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to rebuild access map")
	}

	sb = sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("network_nodes")
	sb.Where(sb.Equal("company_id", companyID))
	query, args = sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to delete existing nodes")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to rebuild access map")
	}

	result := models.AccessMap{
		CompanyID: companyID,
		Nodes:     make([]models.NetworkNode, 0, len(graph.Nodes)),
		Edges:     make([]models.NetworkEdge, 0, len(graph.Edges)),
		Metrics:   graph.Metrics,
	}

	now := time.Now().UTC()
	idMap := make(map[int64]int64, len(graph.Nodes))

	if len(graph.Nodes) > 0 {
		ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ib.InsertInto("network_nodes")
		ib.Cols("company_id", "node_type", "label", "meta", "created_at")
		for _, node := range graph.Nodes {
			ib.Values(companyID, node.NodeType, node.Label, database.JSONB[models.NodeMeta]{Data: node.Meta}, now)
		}
		ib.Returning("id")

		query, args = ib.Build()
		var ids []int64
		if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
			log.WithError(err).Error("Failed to insert nodes")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to rebuild access map")
		}
		if len(ids) != len(graph.Nodes) {
			log.WithFields(map[string]any{"expected": len(graph.Nodes), "got": len(ids)}).Error("Node insert returned wrong id count")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to rebuild access map")
		}

		for i, node := range graph.Nodes {
			idMap[node.ID] = ids[i]
			node.ID = ids[i]
			node.CompanyID = companyID
			node.CreatedAt = now
			result.Nodes = append(result.Nodes, node)
		}
	}

	if len(graph.Edges) > 0 {
		ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ib.InsertInto("network_edges")
		ib.Cols("company_id", "from_node_id", "to_node_id", "edge_type", "weight", "created_at")
		count := 0
		for _, edge := range graph.Edges {
			fromID, okFrom := idMap[edge.FromNodeID]
			toID, okTo := idMap[edge.ToNodeID]
			if !okFrom || !okTo {
				log.WithFields(map[string]any{"from": edge.FromNodeID, "to": edge.ToNodeID}).Warn("Edge references unknown node; skipping")
				continue
			}
			ib.Values(companyID, fromID, toID, edge.EdgeType, edge.Weight, now)
			edge.FromNodeID = fromID
			edge.ToNodeID = toID
			edge.CompanyID = companyID
			edge.CreatedAt = now
			result.Edges = append(result.Edges, edge)
			count++
		}

		if count > 0 {
			query, args = ib.Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				log.WithError(err).Error("Failed to insert edges")
				return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to rebuild access map")
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit access map rebuild")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to rebuild access map")
	}

	result.Metrics.NodeCount = len(result.Nodes)
	result.Metrics.EdgeCount = len(result.Edges)

	log.Info("Rebuilt access map")
	return &result, nil
}

// GetByCompany loads a company's persisted graph. An empty graph, not an
// error, when no rebuild has run yet.
func (r *Repository) GetByCompany(ctx context.Context, companyID int64) (*models.AccessMap, error) {
	ctx, span := tracing.StartSpan(ctx, "networkmap.Repository.GetByCompany")
	defer span.End()

	nodes, err := r.listNodes(ctx, companyID, nil)
	if err != nil {
		return nil, err
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "from_node_id", "to_node_id", "edge_type", "weight", "created_at")
	sb.From("network_edges")
	sb.Where(sb.Equal("company_id", companyID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var edges []models.NetworkEdge
	if err := r.db.SelectContext(ctx, &edges, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list edges")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load access map")
	}
	if edges == nil {
		edges = []models.NetworkEdge{}
	}

	stats := models.AccessMapStats{
		NodeCount: len(nodes),
		EdgeCount: len(edges),
	}
	for _, node := range nodes {
		switch node.NodeType {
		case models.NetworkNodeTypeInvestor:
			stats.InvestorCount++
		case models.NetworkNodeTypePerson:
			stats.PersonCount++
		case models.NetworkNodeTypeOrg:
			stats.OrgCount++
		}
	}

	return &models.AccessMap{
		CompanyID: companyID,
		Nodes:     nodes,
		Edges:     edges,
		Metrics:   stats,
	}, nil
}

// ListInvestorNodes returns a company's investor nodes, the entry points of
// the orbit view
func (r *Repository) ListInvestorNodes(ctx context.Context, companyID int64) ([]models.NetworkNode, error) {
	ctx, span := tracing.StartSpan(ctx, "networkmap.Repository.ListInvestorNodes")
	defer span.End()

	nodeType := models.NetworkNodeTypeInvestor
	return r.listNodes(ctx, companyID, &nodeType)
}

// GetNodeConnections returns one node with every adjacent edge and node,
// both directions
func (r *Repository) GetNodeConnections(ctx context.Context, companyID, nodeID int64) (*models.NodeConnections, error) {
	ctx, span := tracing.StartSpan(ctx, "networkmap.Repository.GetNodeConnections")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "node_type", "label", "meta", "created_at")
	sb.From("network_nodes")
	sb.Where(
		sb.Equal("id", nodeID),
		sb.Equal("company_id", companyID),
	)

	query, args := sb.Build()
	var row nodeRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("node %d not found", nodeID))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get node")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get node")
	}

	eb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	eb.Select("id", "company_id", "from_node_id", "to_node_id", "edge_type", "weight", "created_at")
	eb.From("network_edges")
	eb.Where(
		eb.Equal("company_id", companyID),
		eb.Or(eb.Equal("from_node_id", nodeID), eb.Equal("to_node_id", nodeID)),
	)
	eb.OrderBy("id ASC")

	query, args = eb.Build()
	var edges []models.NetworkEdge
	if err := r.db.SelectContext(ctx, &edges, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list node edges")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load node connections")
	}
	if edges == nil {
		edges = []models.NetworkEdge{}
	}

	neighborIDs := make([]int64, 0, len(edges))
	seen := map[int64]bool{nodeID: true}
	for _, edge := range edges {
		for _, id := range []int64{edge.FromNodeID, edge.ToNodeID} {
			if !seen[id] {
				seen[id] = true
				neighborIDs = append(neighborIDs, id)
			}
		}
	}

	connected := []models.NetworkNode{}
	if len(neighborIDs) > 0 {
		nb := sqlbuilder.PostgreSQL.NewSelectBuilder()
		nb.Select("id", "company_id", "node_type", "label", "meta", "created_at")
		nb.From("network_nodes")
		nb.Where(
			nb.Equal("company_id", companyID),
			nb.In("id", sqlbuilder.List(neighborIDs)),
		)
		nb.OrderBy("id ASC")

		query, args = nb.Build()
		var rows []nodeRow
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to list connected nodes")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load node connections")
		}
		for _, row := range rows {
			connected = append(connected, toNode(row))
		}
	}

	return &models.NodeConnections{
		Node:      toNode(row),
		Edges:     edges,
		Connected: connected,
	}, nil
}

func (r *Repository) listNodes(ctx context.Context, companyID int64, nodeType *models.NetworkNodeType) ([]models.NetworkNode, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "node_type", "label", "meta", "created_at")
	sb.From("network_nodes")
	where := []string{sb.Equal("company_id", companyID)}
	if nodeType != nil {
		where = append(where, sb.Equal("node_type", *nodeType))
	}
	sb.Where(where...)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var rows []nodeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list nodes")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load access map")
	}

	nodes := make([]models.NetworkNode, len(rows))
	for i, row := range rows {
		nodes[i] = toNode(row)
	}
	return nodes, nil
}
