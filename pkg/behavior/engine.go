// Package behavior derives investor behavior intelligence from the raw
// interaction log: decision episodes, response metrics, and six rule-based
// behavioral axes with per-axis confidence.
package behavior

import (
	"sort"
	"time"

	"github.com/Ramsey-B/trellis/pkg/models"
)

// Engine computes behavior profiles. Stateless; safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// ComputeProfile builds metrics and axis scores from an investor's
// interaction history. Input order does not matter; events are replayed in
// timestamp order.
func (e *Engine) ComputeProfile(interactions []models.Interaction) models.BehaviorProfileResult {
	metrics := metricsFromInteractions(interactions)
	metrics.PriorityStyle, metrics.Reliability = priorityAndReliability(metrics)

	axes, confidence := axisScores(metrics)

	return models.BehaviorProfileResult{
		AxisScores: axes,
		Confidence: confidence,
		Metrics:    metrics,
	}
}

// episode is one decision cycle: first intro_sent to the first decision event
type episode struct {
	start    time.Time
	end      time.Time
	meetings int
}

func isDecisionEvent(et models.InteractionEventType) bool {
	return et == models.EventDeclined || et == models.EventCommitmentMade || et == models.EventInvestmentClosed
}

// episodesAndCounts replays the ordered event stream into closed decision
// episodes plus counts per event type. An episode left open at the end of the
// stream is discarded.
func episodesAndCounts(rows []models.Interaction) ([]episode, map[models.InteractionEventType]int) {
	episodes := []episode{}
	counts := map[models.InteractionEventType]int{}

	var current *episode
	for _, r := range rows {
		counts[r.EventType]++

		if r.EventType == models.EventIntroSent && current == nil {
			current = &episode{start: r.EventTS}
		}
		if r.EventType == models.EventMeetingCompleted && current != nil {
			current.meetings++
		}
		if isDecisionEvent(r.EventType) && current != nil {
			current.end = r.EventTS
			episodes = append(episodes, *current)
			current = nil
		}
	}
	return episodes, counts
}

func metricsFromInteractions(rows []models.Interaction) models.BehaviorMetrics {
	ordered := make([]models.Interaction, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EventTS.Before(ordered[j].EventTS)
	})

	episodes, counts := episodesAndCounts(ordered)

	var avgTime, avgMeetings *float64
	if len(episodes) > 0 {
		totalDays := 0.0
		totalMeetings := 0.0
		for _, ep := range episodes {
			totalDays += ep.end.Sub(ep.start).Hours() / 24.0
			totalMeetings += float64(ep.meetings)
		}
		t := totalDays / float64(len(episodes))
		m := totalMeetings / float64(len(episodes))
		avgTime = &t
		avgMeetings = &m
	}

	var responseRate *float64
	if sent := counts[models.EventEmailSent]; sent > 0 {
		rr := float64(counts[models.EventEmailReply]) / float64(sent)
		responseRate = &rr
	}

	events := 0
	for _, n := range counts {
		events += n
	}

	return models.BehaviorMetrics{
		AvgTimeToDecisionDays: avgTime,
		AvgMeetingsToDecision: avgMeetings,
		ResponseRate:          responseRate,
		// followup latency needs pairwise event matching; not derived yet
		FollowupLatencyHours: nil,
		EpisodesCount:        len(episodes),
		GhostedCount:         counts[models.EventGhosted],
		EventsCount:          events,
	}
}

func priorityAndReliability(m models.BehaviorMetrics) (string, string) {
	priority := models.PriorityStyleUnknown
	reliability := models.ReliabilityUnknown

	if m.AvgTimeToDecisionDays != nil && m.AvgMeetingsToDecision != nil {
		t := *m.AvgTimeToDecisionDays
		meetings := *m.AvgMeetingsToDecision
		switch {
		case t <= 21 && meetings <= 2:
			priority = models.PriorityStyleFastDecisive
		case t > 30 && meetings >= 3:
			priority = models.PriorityStyleSlowDeliberate
		}
	}

	if m.ResponseRate != nil {
		rr := *m.ResponseRate
		switch {
		case rr >= 0.6 && m.GhostedCount == 0:
			reliability = models.ReliabilityHigh
		case rr < 0.3 || m.GhostedCount > 0:
			reliability = models.ReliabilityLow
		default:
			reliability = models.ReliabilityModerate
		}
	}

	return priority, reliability
}

// axisScores derives the six 0-100 axes plus per-axis confidence. Episode
// driven axes take their confidence from the episode count, event driven
// ones from the event count.
func axisScores(m models.BehaviorMetrics) (models.BehaviorAxes, models.BehaviorAxes) {
	risk := 50.0
	if m.AvgTimeToDecisionDays != nil && m.AvgMeetingsToDecision != nil {
		t := *m.AvgTimeToDecisionDays
		meetings := *m.AvgMeetingsToDecision
		if t <= 21 && meetings <= 2 {
			risk = 75.0
		} else if t > 45 || meetings >= 4 {
			risk = 35.0
		}
	}

	control := 50.0
	if m.EventsCount >= 10 {
		control = 65.0
	}

	patience := 50.0
	if m.AvgTimeToDecisionDays != nil {
		t := *m.AvgTimeToDecisionDays
		if t > 45 && m.GhostedCount == 0 {
			patience = 75.0
		} else if t < 14 && m.GhostedCount > 0 {
			patience = 35.0
		}
	}

	stress := 70.0
	if m.GhostedCount >= 2 {
		stress = 40.0
	}

	style := 50.0
	if m.ResponseRate != nil {
		rr := *m.ResponseRate
		if rr >= 0.7 {
			style = 75.0
		} else if rr < 0.3 {
			style = 35.0
		}
	}

	conviction := 50.0
	if m.AvgTimeToDecisionDays != nil && m.AvgMeetingsToDecision != nil {
		t := *m.AvgTimeToDecisionDays
		meetings := *m.AvgMeetingsToDecision
		if t <= 21 && meetings <= 2 {
			conviction = 75.0
		} else if t > 60 && meetings >= 4 {
			conviction = 35.0
		}
	}

	axes := models.BehaviorAxes{
		RiskAppetite:       risk,
		ControlOrientation: control,
		Patience:           patience,
		StressBehavior:     stress,
		RelationshipStyle:  style,
		ConvictionStrength: conviction,
	}
	confidence := models.BehaviorAxes{
		RiskAppetite:       confFromCount(m.EpisodesCount),
		ControlOrientation: confFromCount(m.EventsCount),
		Patience:           confFromCount(m.EpisodesCount),
		StressBehavior:     confFromCount(m.EventsCount),
		RelationshipStyle:  confFromCount(m.EventsCount),
		ConvictionStrength: confFromCount(m.EpisodesCount),
	}
	return axes, confidence
}

// confFromCount saturates confidence with the observation count
func confFromCount(n int) float64 {
	switch {
	case n <= 1:
		return 0.1
	case n <= 3:
		return 0.4
	case n <= 6:
		return 0.7
	}
	return 1.0
}
