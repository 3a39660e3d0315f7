package models

import (
	"encoding/json"
	"time"
)

// ScenarioType enumerates the supported forecast scenarios. Unknown types
// fall back to custom rather than failing the run.
type ScenarioType string

const (
	ScenarioTypeMissedRevenue          ScenarioType = "missed_revenue"
	ScenarioTypeDelayedExit            ScenarioType = "delayed_exit"
	ScenarioTypeDownRound              ScenarioType = "down_round"
	ScenarioTypeChooseBetweenInvestors ScenarioType = "choose_between_investors"
	ScenarioTypeCustom                 ScenarioType = "custom"
)

// ValidScenarioTypes lists every recognized scenario type
var ValidScenarioTypes = []ScenarioType{
	ScenarioTypeMissedRevenue,
	ScenarioTypeDelayedExit,
	ScenarioTypeDownRound,
	ScenarioTypeChooseBetweenInvestors,
	ScenarioTypeCustom,
}

// IsValid reports whether the scenario type is recognized
func (t ScenarioType) IsValid() bool {
	for _, v := range ValidScenarioTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Scenario describes a hypothetical situation to forecast investor reactions for
type Scenario struct {
	ID          int64           `json:"id" db:"id"`
	CompanyID   int64           `json:"company_id" db:"company_id"`
	Name        string          `json:"name" db:"name"`
	Type        ScenarioType    `json:"scenario_type" db:"scenario_type"`
	Assumptions json.RawMessage `json:"assumptions,omitempty" db:"assumptions"`
	CreatedBy   *string         `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateScenarioRequest is the request to create a scenario
type CreateScenarioRequest struct {
	Name        string          `json:"name" validate:"required"`
	Type        ScenarioType    `json:"scenario_type" validate:"required"`
	Assumptions json.RawMessage `json:"assumptions,omitempty"`
	CreatedBy   *string         `json:"created_by,omitempty"`
}

// ReactionProbabilities is the distribution over the six reaction categories.
// After normalization the six values sum to 1.
type ReactionProbabilities struct {
	Supportive  float64 `json:"supportive"`
	Neutral     float64 `json:"neutral"`
	Pressure    float64 `json:"pressure"`
	ControlPush float64 `json:"control_push"`
	ExitPush    float64 `json:"exit_push"`
	Ghost       float64 `json:"ghost"`
}

// Sum returns the total probability mass across all six categories
func (p ReactionProbabilities) Sum() float64 {
	return p.Supportive + p.Neutral + p.Pressure + p.ControlPush + p.ExitPush + p.Ghost
}

// InvestorForecast is the per-investor slice of a scenario run
type InvestorForecast struct {
	InvestorID           int64                 `json:"investor_id"`
	InvestorName         string                `json:"investor_name"`
	Probabilities        ReactionProbabilities `json:"probabilities"`
	RelationshipStrength int                   `json:"relationship_strength"`
	BehaviorAxes         BehaviorAxes          `json:"behavior_axes"`
	Confidence           float64               `json:"confidence"`
	Factors              []string              `json:"factors"`
}

// ForecastResult is the full persisted result document of one scenario run
type ForecastResult struct {
	ScenarioType ScenarioType       `json:"scenario_type"`
	Investors    []InvestorForecast `json:"investors"`
	Guidance     []string           `json:"guidance"`
}

// ScenarioRun is one immutable, append-only forecast execution
type ScenarioRun struct {
	ID              int64          `json:"id" db:"id"`
	ScenarioID      int64          `json:"scenario_id" db:"scenario_id"`
	CompanyID       int64          `json:"company_id" db:"company_id"`
	RunTS           time.Time      `json:"run_ts" db:"run_ts"`
	Results         ForecastResult `json:"results"`
	ConfidenceScore float64        `json:"confidence_score" db:"confidence_score"`
	ModelVersion    string         `json:"model_version" db:"model_version"`
}

// ScenarioRunListResponse is the response for listing a scenario's runs
type ScenarioRunListResponse struct {
	Items      []ScenarioRun `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}
