package models

import (
	"time"
)

// NetworkNodeType is the family of a node in the access map graph
type NetworkNodeType string

const (
	NetworkNodeTypeInvestor NetworkNodeType = "investor"
	NetworkNodeTypePerson   NetworkNodeType = "person"
	NetworkNodeTypeOrg      NetworkNodeType = "org"
)

// NetworkEdgeType is the family of an edge in the access map graph
type NetworkEdgeType string

const (
	// NetworkEdgeTypeDirect links an investor to a person in their imported network
	NetworkEdgeTypeDirect NetworkEdgeType = "direct"
	// NetworkEdgeTypeSecondDegree links a person to the org listed on their
	// connection row. Navigational only, excluded from overlap math.
	NetworkEdgeTypeSecondDegree NetworkEdgeType = "second_degree"
)

// NodeMeta carries type-specific node attributes. Investor nodes fill
// firm/title/investor_id; person and org nodes fill shared_investors_count.
type NodeMeta struct {
	Firm                 *string `json:"firm,omitempty"`
	Title                *string `json:"title,omitempty"`
	InvestorID           *int64  `json:"investor_id,omitempty"`
	SharedInvestorsCount *int    `json:"shared_investors_count,omitempty"`
}

// NetworkNode is one node of a company's access map graph
type NetworkNode struct {
	ID        int64           `json:"id" db:"id"`
	CompanyID int64           `json:"company_id" db:"company_id"`
	NodeType  NetworkNodeType `json:"node_type" db:"node_type"`
	Label     string          `json:"label" db:"label"`
	Meta      NodeMeta        `json:"meta"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// NetworkEdge is one directed edge of a company's access map graph
type NetworkEdge struct {
	ID         int64           `json:"id" db:"id"`
	CompanyID  int64           `json:"company_id" db:"company_id"`
	FromNodeID int64           `json:"from_node_id" db:"from_node_id"`
	ToNodeID   int64           `json:"to_node_id" db:"to_node_id"`
	EdgeType   NetworkEdgeType `json:"edge_type" db:"edge_type"`
	Weight     float64         `json:"weight" db:"weight"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// AccessMapStats summarizes a built access map
type AccessMapStats struct {
	NodeCount     int `json:"node_count"`
	EdgeCount     int `json:"edge_count"`
	InvestorCount int `json:"investor_count"`
	PersonCount   int `json:"person_count"`
	OrgCount      int `json:"org_count"`
}

// AccessMap is the full graph for a company plus its summary metrics
type AccessMap struct {
	CompanyID int64          `json:"company_id"`
	Nodes     []NetworkNode  `json:"nodes"`
	Edges     []NetworkEdge  `json:"edges"`
	Metrics   AccessMapStats `json:"metrics"`
}

// NodeConnections is the drill-down view around one node: the node itself and
// every adjacent node in either edge direction
type NodeConnections struct {
	Node      NetworkNode   `json:"node"`
	Edges     []NetworkEdge `json:"edges"`
	Connected []NetworkNode `json:"connected"`
}

// SolarInvestorsResponse lists investor nodes as traversal entry points
type SolarInvestorsResponse struct {
	Investors []NetworkNode `json:"investors"`
}
