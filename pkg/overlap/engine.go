// Package overlap measures how much investors' imported networks intersect:
// shared people and orgs, the overlap percentage, and the investor-by-investor
// matrix behind the comparison view.
package overlap

import (
	"fmt"
	"math"
	"sort"

	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/normalize"
)

// Ranked overlap lists and per-pair shared-connection lists are capped for display
const (
	maxTopEntries   = 20
	maxSharedPeople = 20
)

// Engine computes overlap analytics. It is stateless and safe for
// concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// ComputeIntelligence builds the per-company overlap report over the
// company's investors and their imported connections. People are keyed by
// normalized name key and orgs by lowercase company name; an entity overlaps
// when it appears in at least two distinct investors' lists. Rows without a
// full name are excluded entirely, matching the import contract that full
// name is the canonical column.
func (e *Engine) ComputeIntelligence(investors []models.Investor, connections []models.Connection) models.OverlapIntelligence {
	result := emptyIntelligence()
	if len(investors) == 0 {
		return result
	}

	people := newEntitySets()
	orgs := newEntitySets()
	totalEdges := 0

	for i := range connections {
		conn := &connections[i]
		if conn.FullName == nil || *conn.FullName == "" {
			continue
		}
		totalEdges++

		display := conn.DisplayName()
		if key := normalize.NameKey(display); key != "" {
			people.add(key, display, conn.InvestorID)
		}
		if conn.Company != nil {
			if key := normalize.OrgKey(*conn.Company); key != "" {
				orgs.add(key, key, conn.InvestorID)
			}
		}
	}

	topPeople, overlapPeopleCount := people.topOverlapping()
	topOrgs, overlapOrgCount := orgs.topOverlapping()

	uniquePeopleCount := len(people.investors)
	uniqueOrgCount := len(orgs.investors)

	totalUnique := uniquePeopleCount + uniqueOrgCount
	totalOverlap := overlapPeopleCount + overlapOrgCount
	overlapPercentage := 0.0
	if totalUnique > 0 {
		overlapPercentage = round1(float64(totalOverlap) / float64(totalUnique) * 100)
	}

	// Collapse rate: people reachable through two or more investors, the
	// second-degree contacts that are effectively first-degree already.
	collapseRate := 0.0
	if uniquePeopleCount > 0 {
		collapseRate = round1(float64(overlapPeopleCount) / float64(uniquePeopleCount) * 100)
	}

	result.TotalNodes = len(investors) + uniquePeopleCount + uniqueOrgCount
	result.TotalEdges = totalEdges
	result.UniquePeopleCount = uniquePeopleCount
	result.UniqueOrgCount = uniqueOrgCount
	result.OverlapPeopleCount = overlapPeopleCount
	result.OverlapOrgCount = overlapOrgCount
	result.OverlapPercentage = overlapPercentage
	result.TopOverlappingPeople = topPeople
	result.TopOverlappingOrgs = topOrgs
	result.CollapseCount = overlapPeopleCount
	result.CollapseRate = collapseRate
	result.PersonToInvestors = people.flatten()
	result.OrgToInvestors = orgs.flatten()
	return result
}

// ComputeMatrix builds the symmetric investor-by-investor overlap matrix plus
// the shared-connection detail list for every overlapping pair. Pair keys are
// "i-j" over ascending investor indices.
func (e *Engine) ComputeMatrix(investors []models.Investor, connections []models.Connection) models.OverlapMatrix {
	matrixInvestors := make([]models.MatrixInvestor, 0, len(investors))
	for _, inv := range investors {
		matrixInvestors = append(matrixInvestors, models.MatrixInvestor{
			ID:       inv.ID,
			FullName: inv.FullName,
			Firm:     inv.Firm,
		})
	}

	result := models.OverlapMatrix{
		Investors:         matrixInvestors,
		Matrix:            [][]int{},
		SharedConnections: map[string][]models.SharedConnection{},
	}
	if len(investors) < 2 {
		return result
	}

	indexByID := make(map[int64]int, len(investors))
	for i, inv := range investors {
		indexByID[inv.ID] = i
	}

	people := newEntitySets()
	personDetails := map[string]models.SharedConnection{}
	connectionCounts := map[int64]int{}

	for i := range connections {
		conn := &connections[i]
		if conn.FullName == nil || *conn.FullName == "" {
			continue
		}
		display := conn.DisplayName()
		key := normalize.NameKey(display)
		if key == "" {
			continue
		}
		connectionCounts[conn.InvestorID]++
		if _, seen := personDetails[key]; !seen {
			personDetails[key] = models.SharedConnection{
				Name:     display,
				Company:  deref(conn.Company),
				Position: deref(conn.Position),
			}
		}
		people.add(key, display, conn.InvestorID)
	}

	n := len(investors)
	matrix := make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
	}

	for _, key := range people.order {
		ids := sortedIDs(people.investors[key])
		if len(ids) < 2 {
			continue
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				idxI, okI := indexByID[ids[i]]
				idxJ, okJ := indexByID[ids[j]]
				if !okI || !okJ {
					continue
				}
				matrix[idxI][idxJ]++
				matrix[idxJ][idxI]++

				lo, hi := idxI, idxJ
				if lo > hi {
					lo, hi = hi, lo
				}
				pairKey := fmt.Sprintf("%d-%d", lo, hi)
				result.SharedConnections[pairKey] = append(result.SharedConnections[pairKey], personDetails[key])
			}
		}
	}

	for pairKey, shared := range result.SharedConnections {
		if len(shared) > maxSharedPeople {
			result.SharedConnections[pairKey] = shared[:maxSharedPeople]
		}
	}

	for i := range result.Investors {
		result.Investors[i].ConnectionCount = connectionCounts[result.Investors[i].ID]
	}

	result.Matrix = matrix
	return result
}

// entitySets tracks which investors each keyed entity appears under, keeping
// first-seen order and labels so output is deterministic.
type entitySets struct {
	investors map[string]map[int64]bool
	labels    map[string]string
	order     []string
}

func newEntitySets() *entitySets {
	return &entitySets{
		investors: map[string]map[int64]bool{},
		labels:    map[string]string{},
	}
}

func (s *entitySets) add(key, label string, investorID int64) {
	set, ok := s.investors[key]
	if !ok {
		set = map[int64]bool{}
		s.investors[key] = set
		s.labels[key] = label
		s.order = append(s.order, key)
	}
	set[investorID] = true
}

// topOverlapping returns the overlapping entries ranked by investor count
// (first seen wins ties), capped for display, plus the uncapped overlap count.
func (s *entitySets) topOverlapping() ([]models.OverlapEntry, int) {
	entries := []models.OverlapEntry{}
	for _, key := range s.order {
		if count := len(s.investors[key]); count >= 2 {
			entries = append(entries, models.OverlapEntry{Label: s.labels[key], Count: count})
		}
	}
	overlapCount := len(entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > maxTopEntries {
		entries = entries[:maxTopEntries]
	}
	return entries, overlapCount
}

func (s *entitySets) flatten() map[string][]int64 {
	out := make(map[string][]int64, len(s.investors))
	for key, set := range s.investors {
		out[key] = sortedIDs(set)
	}
	return out
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func emptyIntelligence() models.OverlapIntelligence {
	return models.OverlapIntelligence{
		TopOverlappingPeople: []models.OverlapEntry{},
		TopOverlappingOrgs:   []models.OverlapEntry{},
		PersonToInvestors:    map[string][]int64{},
		OrgToInvestors:       map[string][]int64{},
	}
}

func round1(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
