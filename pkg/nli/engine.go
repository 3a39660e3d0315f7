// Package nli computes the monthly Network Leverage Index, a 0-100 composite
// of access map reach, overlap density, intro velocity, and capital adjacency.
package nli

import (
	"math"
	"strings"
	"time"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/normalize"
)

// Raw component counts saturate at these ceilings before weighting
const (
	accessCeiling  = 500.0
	introCeiling   = 50.0
	capitalCeiling = 100.0
)

// Component weights of the index
const (
	accessWeight  = 0.35
	overlapWeight = 0.25
	introWeight   = 0.2
	capitalWeight = 0.2
)

// velocityEvents are the event types counted as intro velocity
var velocityEvents = []models.InteractionEventType{
	models.EventIntroSent,
	models.EventMeetingScheduled,
	models.EventMeetingCompleted,
}

// Inputs carries one month's raw signals into the index
type Inputs struct {
	AccessMap models.AccessMap
	// OverlapDensity is the overlap percentage from overlap intelligence,
	// already on a 0-100 scale.
	OverlapDensity float64
	Interactions   []models.Interaction
	Month          time.Time
}

// Engine computes NLI metrics. It is stateless and safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// MonthStart truncates a timestamp to the first instant of its month in UTC
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats the snapshot month key for a timestamp
func MonthKey(t time.Time) string {
	return MonthStart(t).Format("2006-01-02")
}

// Compute builds the NLI metrics document for one company month
func (e *Engine) Compute(in Inputs) models.NLIMetrics {
	nodeCount := len(in.AccessMap.Nodes)
	edgeCount := len(in.AccessMap.Edges)
	introVelocity := e.IntroVelocity(in.Interactions, in.Month)
	capitalAdjacency := e.CapitalAdjacency(in.AccessMap.Nodes)

	accessScore := math.Min(1.0, float64(nodeCount)/accessCeiling)
	overlapScore := in.OverlapDensity / 100.0
	introScore := math.Min(1.0, float64(introVelocity)/introCeiling)
	capitalScore := math.Min(1.0, float64(capitalAdjacency)/capitalCeiling)

	score := int(math.RoundToEven(
		(accessWeight*accessScore + overlapWeight*overlapScore + introWeight*introScore + capitalWeight*capitalScore) * 100,
	))

	return models.NLIMetrics{
		TotalNodes:       nodeCount,
		TotalEdges:       edgeCount,
		OverlapDensity:   in.OverlapDensity,
		IntroVelocity:    introVelocity,
		CapitalAdjacency: capitalAdjacency,
		NLIScore:         score,
	}
}

// IntroVelocity counts intro and meeting events that land inside the month.
// The window is [month start, next month start).
func (e *Engine) IntroVelocity(interactions []models.Interaction, month time.Time) int {
	start := MonthStart(month)
	end := start.AddDate(0, 1, 0)

	velocity := 0
	for _, interaction := range interactions {
		if interaction.EventTS.Before(start) || !interaction.EventTS.Before(end) {
			continue
		}
		if ectolinq.Contains(velocityEvents, interaction.EventType) {
			velocity++
		}
	}
	return velocity
}

// CapitalAdjacency counts nodes whose label carries a firm-type token or an
// investor-like title, a proxy for how much of the network sits near capital.
func (e *Engine) CapitalAdjacency(nodes []models.NetworkNode) int {
	count := 0
	for _, node := range nodes {
		label := strings.TrimSpace(node.Label)
		if label == "" {
			continue
		}
		if len(normalize.ExtractFirmTypeTokens(label)) > 0 || normalize.MatchesTitlePattern(label) {
			count++
		}
	}
	return count
}
