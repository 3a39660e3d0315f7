package models

// OverlapEntry is one ranked overlapping person or org: the label plus how
// many distinct investor networks it appears in
type OverlapEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// OverlapIntelligence is the per-company overlap report. An entity "overlaps"
// when it appears in at least two distinct investors' connection lists.
type OverlapIntelligence struct {
	TotalNodes           int                `json:"total_nodes"`
	TotalEdges           int                `json:"total_edges"`
	UniquePeopleCount    int                `json:"unique_people_count"`
	UniqueOrgCount       int                `json:"unique_org_count"`
	OverlapPeopleCount   int                `json:"overlap_people_count"`
	OverlapOrgCount      int                `json:"overlap_org_count"`
	OverlapPercentage    float64            `json:"overlap_percentage"`
	TopOverlappingPeople []OverlapEntry     `json:"top_overlapping_people"`
	TopOverlappingOrgs   []OverlapEntry     `json:"top_overlapping_orgs"`
	CollapseCount        int                `json:"collapse_count"`
	CollapseRate         float64            `json:"collapse_rate"`
	PersonToInvestors    map[string][]int64 `json:"person_to_investors"`
	OrgToInvestors       map[string][]int64 `json:"org_to_investors"`
}

// MatrixInvestor is one investor in the overlap matrix with its total
// connection count
type MatrixInvestor struct {
	ID              int64   `json:"id"`
	FullName        string  `json:"full_name"`
	Firm            *string `json:"firm,omitempty"`
	ConnectionCount int     `json:"connection_count"`
}

// SharedConnection is one shared person shown in pair detail lists
type SharedConnection struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Position string `json:"position"`
}

// OverlapMatrix is the symmetric investor-by-investor overlap matrix.
// SharedConnections is keyed "i-j" by sorted investor indices and capped at
// 20 people per pair.
type OverlapMatrix struct {
	Investors         []MatrixInvestor              `json:"investors"`
	Matrix            [][]int                       `json:"matrix"`
	SharedConnections map[string][]SharedConnection `json:"shared_connections"`
}
