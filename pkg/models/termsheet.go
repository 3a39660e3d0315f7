package models

import (
	"encoding/json"
	"time"
)

// Clause vocabulary. Likelihoods are computed over exactly these eight keys;
// unknown keys in a parsed term sheet are ignored.
const (
	ClauseLiquidationPref      = "liquidation_pref"
	ClauseParticipation        = "participation"
	ClauseBoardSeat            = "board_seat"
	ClauseProtectiveProvisions = "protective_provisions"
	ClauseDragAlong            = "drag_along"
	ClauseProRata              = "pro_rata"
	ClauseRedemption           = "redemption"
	ClauseVetoRights           = "veto_rights"
)

// ClauseKeys lists the clause vocabulary in canonical order
var ClauseKeys = []string{
	ClauseLiquidationPref,
	ClauseParticipation,
	ClauseBoardSeat,
	ClauseProtectiveProvisions,
	ClauseDragAlong,
	ClauseProRata,
	ClauseRedemption,
	ClauseVetoRights,
}

// TermSheet is one received term sheet with its parsed clause document.
// ParsedTerms stays raw: sheets arrive in arbitrary shapes and clause
// extraction happens at aggregation time, not at ingest.
type TermSheet struct {
	ID          int64           `json:"id" db:"id"`
	CompanyID   int64           `json:"company_id" db:"company_id"`
	InvestorID  int64           `json:"investor_id" db:"investor_id"`
	RoundName   *string         `json:"round_name,omitempty" db:"round_name"`
	ReceivedTS  *time.Time      `json:"received_ts,omitempty" db:"received_ts"`
	ParsedTerms json.RawMessage `json:"parsed_terms" db:"parsed_terms"`
	Source      *string         `json:"source,omitempty" db:"source"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// CreateTermSheetRequest records a new term sheet for an investor
type CreateTermSheetRequest struct {
	RoundName   *string         `json:"round_name,omitempty"`
	ReceivedTS  *time.Time      `json:"received_ts,omitempty"`
	ParsedTerms json.RawMessage `json:"parsed_terms" validate:"required"`
	Source      *string         `json:"source,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

// ClauseStats aggregates clause occurrences across an investor's term sheets
type ClauseStats struct {
	Frequency  map[string]int     `json:"frequency"`
	Likelihood map[string]float64 `json:"likelihood"`
}

// ClauseProfile is the negotiation-pattern summary for one investor
type ClauseProfile struct {
	ClauseStats              ClauseStats `json:"clause_stats"`
	FounderFriendlinessScore int         `json:"founder_friendliness_score"`
	ControlRiskScore         int         `json:"control_risk_score"`
}

// InvestorClausePattern is the persisted clause profile row
type InvestorClausePattern struct {
	ID                       int64       `json:"id" db:"id"`
	CompanyID                int64       `json:"company_id" db:"company_id"`
	InvestorID               int64       `json:"investor_id" db:"investor_id"`
	ClauseStats              ClauseStats `json:"clause_stats"`
	FounderFriendlinessScore int         `json:"founder_friendliness_score" db:"founder_friendliness_score"`
	ControlRiskScore         int         `json:"control_risk_score" db:"control_risk_score"`
	UpdatedAt                time.Time   `json:"updated_at" db:"updated_at"`
}

// InvestorComparison is one side-by-side entry joining behavior and
// negotiation profiles for an investor
type InvestorComparison struct {
	InvestorID               int64           `json:"investor_id"`
	InvestorName             string          `json:"investor_name"`
	BehaviorAxes             BehaviorAxes    `json:"behavior_axes"`
	BehaviorConfidence       BehaviorAxes    `json:"behavior_confidence"`
	BehaviorMetrics          BehaviorMetrics `json:"behavior_metrics"`
	FounderFriendlinessScore int             `json:"founder_friendliness_score"`
	ControlRiskScore         int             `json:"control_risk_score"`
	ClauseStats              ClauseStats     `json:"clause_stats"`
}

// CompareInvestorsRequest selects the investors to compare
type CompareInvestorsRequest struct {
	InvestorIDs []int64 `json:"investor_ids" validate:"required,min=1"`
}

// TermSheetListResponse is the response for listing term sheets
type TermSheetListResponse struct {
	Items      []TermSheet `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}
