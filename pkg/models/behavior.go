package models

import (
	"time"
)

// Priority styles derived from decision speed and meeting load
const (
	PriorityStyleFastDecisive   = "fast_decisive"
	PriorityStyleSlowDeliberate = "slow_deliberate"
	PriorityStyleUnknown        = "unknown"
)

// Reliability tiers derived from response rate and ghosting
const (
	ReliabilityHigh     = "high_reliability"
	ReliabilityModerate = "moderate_reliability"
	ReliabilityLow      = "low_reliability"
	ReliabilityUnknown  = "unknown"
)

// BehaviorMetrics are the raw measurements extracted from an investor's
// interaction log. Nil pointers mean "not enough data", which downstream
// rules treat differently from zero.
type BehaviorMetrics struct {
	AvgTimeToDecisionDays *float64 `json:"avg_time_to_decision_days"`
	AvgMeetingsToDecision *float64 `json:"avg_meetings_to_decision"`
	ResponseRate          *float64 `json:"response_rate"`
	FollowupLatencyHours  *float64 `json:"followup_latency_hours"`
	EpisodesCount         int      `json:"episodes_count"`
	GhostedCount          int      `json:"ghosted_count"`
	EventsCount           int      `json:"events_count"`
	PriorityStyle         string   `json:"priority_style"`
	Reliability           string   `json:"reliability"`
}

// BehaviorAxes holds the six 0-100 behavioral axis scores. The same shape
// doubles as the per-axis confidence document (0-1 values).
type BehaviorAxes struct {
	RiskAppetite       float64 `json:"risk_appetite"`
	ControlOrientation float64 `json:"control_orientation"`
	Patience           float64 `json:"patience"`
	StressBehavior     float64 `json:"stress_behavior"`
	RelationshipStyle  float64 `json:"relationship_style"`
	ConvictionStrength float64 `json:"conviction_strength"`
}

// BehaviorProfile is the stored per-(investor, company) behavioral summary
type BehaviorProfile struct {
	ID         int64           `json:"id" db:"id"`
	InvestorID int64           `json:"investor_id" db:"investor_id"`
	CompanyID  int64           `json:"company_id" db:"company_id"`
	AxisScores BehaviorAxes    `json:"axis_scores"`
	Confidence BehaviorAxes    `json:"confidence"`
	Metrics    BehaviorMetrics `json:"behavior_metrics"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// BehaviorProfileResult is the computed profile returned by the behavior
// engine before persistence ids are known
type BehaviorProfileResult struct {
	AxisScores BehaviorAxes    `json:"axis_scores"`
	Confidence BehaviorAxes    `json:"confidence"`
	Metrics    BehaviorMetrics `json:"behavior_metrics"`
}
