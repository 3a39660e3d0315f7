package models

import (
	"time"
)

// NLIMetrics is the Network Leverage Index document stored per company per
// month. Component scores are crude normalizations of raw counts; the index
// itself is their weighted sum on a 0-100 scale.
type NLIMetrics struct {
	TotalNodes       int     `json:"total_nodes"`
	TotalEdges       int     `json:"total_edges"`
	OverlapDensity   float64 `json:"overlap_density"`
	IntroVelocity    int     `json:"intro_velocity"`
	CapitalAdjacency int     `json:"capital_adjacency"`
	NLIScore         int     `json:"nli_score"`
}

// NetworkSnapshot is one persisted monthly NLI row, unique per
// (company, month). SnapshotMonth is the first day of the month.
type NetworkSnapshot struct {
	ID            int64      `json:"id" db:"id"`
	CompanyID     int64      `json:"company_id" db:"company_id"`
	SnapshotMonth string     `json:"snapshot_month" db:"snapshot_month"`
	Metrics       NLIMetrics `json:"metrics"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// NLIHistoryEntry pairs a month with its stored metrics
type NLIHistoryEntry struct {
	Month   string     `json:"month"`
	Metrics NLIMetrics `json:"metrics"`
}

// NLIHistoryResponse is the recent snapshot history, newest first
type NLIHistoryResponse struct {
	History []NLIHistoryEntry `json:"history"`
}
