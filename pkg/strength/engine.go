// Package strength scores the relationship between two entities (investor,
// candidate, or org) on a 0-100 scale from network position, interaction
// intensity, recency, and pipeline progression.
package strength

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Ramsey-B/trellis/pkg/models"
)

// Max points per dimension. The four together scale to 100.
const (
	MaxNetworkPts   = 25.0
	MaxIntensityPts = 35.0
	MaxRecencyPts   = 20.0
	MaxProgressPts  = 20.0
)

// progressPoints maps pipeline status to progression depth
var progressPoints = map[models.InvestorStatus]float64{
	models.InvestorStatusProspect:   0.0,
	models.InvestorStatusContacted:  4.0,
	models.InvestorStatusMeeting:    8.0,
	models.InvestorStatusInterested: 12.0,
	models.InvestorStatusCommitted:  16.0,
	models.InvestorStatusInvested:   20.0,
	models.InvestorStatusInactive:   0.0,
}

// Inputs carries everything the scorer needs about one entity pair
type Inputs struct {
	SharedInvestorsCount int
	SharedOrgCount       int
	// EventCounts holds interaction counts by event type, both directions
	EventCounts map[models.InteractionEventType]int
	// LastInteractionTS is the most recent interaction between the pair
	LastInteractionTS *time.Time
	// CounterpartStatus is the current pipeline status of the "to" entity,
	// empty when it has no recorded status
	CounterpartStatus string
}

// Engine computes relationship strength. Stateless; safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compute scores the pair at the given reference time and explains the result
func (e *Engine) Compute(inputs Inputs, now time.Time) models.RelationshipResult {
	netPts, netFactors := networkPoints(inputs.SharedInvestorsCount, inputs.SharedOrgCount)
	intensityPts, intensityFactors := intensityPoints(inputs.EventCounts)
	recencyPts, recencyFactors := recencyPoints(inputs.LastInteractionTS, now)
	progressPts, progressFactors := progressionPoints(inputs.CounterpartStatus)

	total := netPts + intensityPts + recencyPts + progressPts
	maxPts := MaxNetworkPts + MaxIntensityPts + MaxRecencyPts + MaxProgressPts
	score := int(math.RoundToEven(math.Min(100.0, math.Max(0.0, (total/maxPts)*100.0))))

	factors := []string{}
	factors = append(factors, netFactors...)
	factors = append(factors, intensityFactors...)
	factors = append(factors, recencyFactors...)
	factors = append(factors, progressFactors...)

	return models.RelationshipResult{
		Strength:          score,
		Factors:           factors,
		LastInteractionTS: inputs.LastInteractionTS,
	}
}

func networkPoints(sharedInvestorsCount, sharedOrgCount int) (float64, []string) {
	pts := 0.0
	factors := []string{}

	switch {
	case sharedInvestorsCount >= 3:
		pts += 18.0
		factors = append(factors, fmt.Sprintf("Seen in %d investor networks (+18)", sharedInvestorsCount))
	case sharedInvestorsCount == 2:
		pts += 12.0
		factors = append(factors, "Seen in 2 investor networks (+12)")
	case sharedInvestorsCount == 1:
		pts += 6.0
		factors = append(factors, "Seen in 1 investor network (+6)")
	}

	switch {
	case sharedOrgCount >= 2:
		pts += 7.0
		factors = append(factors, "Common org across networks (+7)")
	case sharedOrgCount == 1:
		pts += 4.0
		factors = append(factors, "Org appears in your network (+4)")
	}

	return math.Min(pts, MaxNetworkPts), factors
}

func intensityPoints(events map[models.InteractionEventType]int) (float64, []string) {
	pts := 0.0
	factors := []string{}

	meetings := events[models.EventMeetingCompleted]
	replies := events[models.EventEmailReply]
	docs := events[models.EventDocShared] + events[models.EventTermSheetReceived] + events[models.EventTermSheetSigned]
	commitments := events[models.EventCommitmentMade] + events[models.EventInvestmentClosed]

	if meetings > 0 {
		p := math.Min(20.0, float64(meetings)*6.0)
		pts += p
		factors = append(factors, fmt.Sprintf("%d meeting(s) completed (+%d)", meetings, int(p)))
	}
	if replies > 0 {
		p := math.Min(8.0, float64(replies)*2.0)
		pts += p
		factors = append(factors, fmt.Sprintf("%d reply event(s) (+%d)", replies, int(p)))
	}
	if docs > 0 {
		p := math.Min(5.0, float64(docs)*2.5)
		pts += p
		factors = append(factors, fmt.Sprintf("%d doc/term-sheet event(s) (+%d)", docs, int(p)))
	}
	if commitments > 0 {
		p := math.Min(10.0, float64(commitments)*10.0)
		pts += p
		factors = append(factors, fmt.Sprintf("%d commitment/closing event(s) (+%d)", commitments, int(p)))
	}

	return math.Min(pts, MaxIntensityPts), factors
}

func recencyPoints(lastTS *time.Time, now time.Time) (float64, []string) {
	if lastTS == nil {
		return 0.0, nil
	}
	days := now.Sub(*lastTS).Hours() / 24.0

	switch {
	case days <= 7:
		return MaxRecencyPts, []string{"Last touch within 7 days (+20)"}
	case days <= 30:
		return 12.0, []string{"Last touch within 30 days (+12)"}
	case days <= 90:
		return 6.0, []string{"Last touch within 90 days (+6)"}
	}
	return 0.0, []string{"Last touch over 90 days ago (+0)"}
}

func progressionPoints(status string) (float64, []string) {
	if status == "" {
		return 0.0, nil
	}
	status = strings.ToLower(status)
	pts := progressPoints[models.InvestorStatus(status)]
	if pts <= 0 {
		return 0.0, nil
	}
	return math.Min(pts, MaxProgressPts), []string{fmt.Sprintf("Pipeline stage: %s (+%d)", status, int(pts))}
}
