package models

import (
	"time"
)

// Relationship is the cached strength score between two entities within a
// company. Recomputed on demand from the interaction log plus network overlap.
type Relationship struct {
	ID                int64      `json:"id" db:"id"`
	CompanyID         int64      `json:"company_id" db:"company_id"`
	From              EntityRef  `json:"from"`
	To                EntityRef  `json:"to"`
	Strength          int        `json:"relationship_strength" db:"relationship_strength"`
	StrengthFactors   []string   `json:"strength_factors"`
	LastInteractionTS *time.Time `json:"last_interaction_ts,omitempty" db:"last_interaction_ts"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// RelationshipResult is the computed strength output before persistence
type RelationshipResult struct {
	Strength          int        `json:"relationship_strength"`
	Factors           []string   `json:"factors"`
	LastInteractionTS *time.Time `json:"last_interaction_ts"`
}

// ComputeRelationshipRequest asks for a fresh strength computation between
// two entities. Overlap counts are optional hints from the caller's feed
// context; zero means "no known overlap".
type ComputeRelationshipRequest struct {
	From                 EntityRef `json:"from" validate:"required"`
	To                   EntityRef `json:"to" validate:"required"`
	SharedInvestorsCount int       `json:"shared_investors_count"`
	SharedOrgCount       int       `json:"shared_org_count"`
}
