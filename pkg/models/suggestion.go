package models

import (
	"time"
)

// Signal category keys. The multi-signal gate counts distinct categories, so a
// candidate must fire at least two of these to survive scoring.
const (
	SignalIndustry         = "s_industry"
	SignalLocation         = "s_location"
	SignalFirmType         = "s_firm_type"
	SignalTitlePattern     = "s_title_pattern"
	SignalCompanyInNetwork = "s_company_in_network"
)

// SignalCategories lists every signal category in display order
var SignalCategories = []string{
	SignalIndustry,
	SignalLocation,
	SignalFirmType,
	SignalTitlePattern,
	SignalCompanyInNetwork,
}

// CompanyProfile is the signal vocabulary extracted from a company's current
// investors. Candidates are scored against it, so an empty profile yields an
// empty feed.
type CompanyProfile struct {
	IndustryTokens map[string]bool `json:"industry_tokens"`
	LocationTokens map[string]bool `json:"location_tokens"`
	FirmTypeTokens map[string]bool `json:"firm_type_tokens"`
	TitlePatterns  map[string]bool `json:"title_patterns"`
	InvestorFirms  map[string]bool `json:"investor_firms"`
}

// OverlapStats summarizes how widely a candidate appears across the company's
// investor networks
type OverlapStats struct {
	SharedInvestorsCount int `json:"shared_investors_count"`
	SharedOrgCount       int `json:"shared_org_count"`
}

// FitBreakdown splits a fit score into its weighted components
type FitBreakdown struct {
	Similarity float64 `json:"similarity"`
	Network    float64 `json:"network"`
	Location   float64 `json:"location"`
	Recency    float64 `json:"recency"`
}

// FitScore is the 0-100 composite fit result for a candidate
type FitScore struct {
	Score     int          `json:"fit_score"`
	Factors   []string     `json:"factors"`
	Breakdown FitBreakdown `json:"breakdown"`
}

// SuggestedInvestor is one fully-enriched feed item: pipeline score plus fit
// score, overlap stats, and relationship strength to the best source investor.
type SuggestedInvestor struct {
	Name                 string          `json:"name"`
	Company              string          `json:"company"`
	Position             string          `json:"position"`
	Location             string          `json:"location"`
	LinkedinURL          string          `json:"linkedin_url"`
	Score                float64         `json:"score"`
	Signals              map[string]bool `json:"signals"`
	Reasons              []string        `json:"reasons"`
	SourceInvestorID     *int64          `json:"source_investor_id,omitempty"`
	SharedInvestorsCount int             `json:"shared_investors_count"`
	SharedOrgCount       int             `json:"shared_org_count"`
	FitScore             int             `json:"fit_score"`
	FitFactors           []string        `json:"fit_factors"`
	FitBreakdown         FitBreakdown    `json:"fit_breakdown"`
	OverlapStats         OverlapStats    `json:"overlap_stats"`
	RelationshipStrength *int            `json:"relationship_strength"`
	RelationshipFactors  []string        `json:"relationship_factors"`
}

// SuggestedFeedResponse wraps the suggested-investor feed with its inputs'
// sizes so clients can explain an empty feed
type SuggestedFeedResponse struct {
	CompanyID       int64               `json:"company_id"`
	CompanyName     string              `json:"company_name"`
	InvestorCount   int                 `json:"investor_count"`
	ConnectionCount int                 `json:"connection_count"`
	Items           []SuggestedInvestor `json:"items"`
}

// Feed sort orders
const (
	FeedSortRelevance = "relevance_score"
	FeedSortFitScore  = "fit_score"
	FeedSortOverlap   = "overlap"
	FeedSortLocation  = "location"
)

// FeedQuery holds the parsed query parameters of a suggested-feed request.
// A TopN below 1 means "use the default"; the service clamps the rest.
// Filters are substring matches, case-insensitive.
type FeedQuery struct {
	TopN         int    `json:"top_n"`
	Sort         string `json:"sort"`
	Industry     string `json:"industry,omitempty"`
	Location     string `json:"location,omitempty"`
	FirmType     string `json:"firm_type,omitempty"`
	TitlePattern string `json:"title_pattern,omitempty"`
}

// CandidateSuggestion is a persisted feed item snapshot, refreshed whenever
// the feed is recomputed for a company
type CandidateSuggestion struct {
	ID                int64        `json:"id" db:"id"`
	CompanyID         int64        `json:"company_id" db:"company_id"`
	CandidateName     string       `json:"candidate_name" db:"candidate_name"`
	CandidateTitle    *string      `json:"candidate_title,omitempty" db:"candidate_title"`
	CandidateCompany  *string      `json:"candidate_company,omitempty" db:"candidate_company"`
	CandidateLocation *string      `json:"candidate_location,omitempty" db:"candidate_location"`
	LinkedinURL       *string      `json:"linkedin_url,omitempty" db:"linkedin_url"`
	FitScore          int          `json:"fit_score" db:"fit_score"`
	RelevanceScore    float64      `json:"relevance_score" db:"relevance_score"`
	SignalsFired      []string     `json:"signals_fired"`
	Reasons           []string     `json:"reasons"`
	OverlapStats      OverlapStats `json:"overlap_stats"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}
