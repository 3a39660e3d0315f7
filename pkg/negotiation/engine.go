// Package negotiation derives clause patterns and negotiation-risk scores
// from an investor's parsed term sheets.
package negotiation

import (
	"encoding/json"
	"math"

	"github.com/Ramsey-B/trellis/pkg/models"
)

// Clause groupings used when collapsing likelihoods into scores. Economic
// clauses dilute founder returns; control clauses shift governance power.
var (
	economicClauses = []string{
		models.ClauseLiquidationPref,
		models.ClauseParticipation,
		models.ClauseRedemption,
	}
	controlClauses = []string{
		models.ClauseBoardSeat,
		models.ClauseProtectiveProvisions,
		models.ClauseVetoRights,
		models.ClauseDragAlong,
	}
)

// EngineConfig holds the configuration for the negotiation engine
type EngineConfig struct {
	// ClausePaths overrides where each clause is read from inside a parsed
	// term document. Values are JMESPath expressions; clauses without an
	// override are read from the top-level key of the same name.
	ClausePaths map[string]string
}

// DefaultConfig returns the default negotiation engine configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{}
}

// Engine computes clause statistics and the scores derived from them. It is
// stateless beyond its configuration and safe for concurrent use.
type Engine struct {
	config    EngineConfig
	extractor *Extractor
}

// NewEngine creates a negotiation engine
func NewEngine(config EngineConfig) *Engine {
	return &Engine{
		config:    config,
		extractor: NewExtractor(config.ClausePaths),
	}
}

// Validate checks every configured clause path and returns the first
// compile error, if any.
func (e *Engine) Validate() error {
	return e.extractor.Validate()
}

// ParseTermDocs decodes raw parsed_terms payloads into documents, dropping
// sheets whose payload is missing, malformed, or not a JSON object.
func (e *Engine) ParseTermDocs(sheets []models.TermSheet) []map[string]any {
	docs := make([]map[string]any, 0, len(sheets))
	for _, sheet := range sheets {
		if len(sheet.ParsedTerms) == 0 {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(sheet.ParsedTerms, &doc); err != nil || doc == nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// AggregateClauseStats counts clause occurrences across term documents and
// converts the counts into per-clause likelihoods. Likelihoods divide by the
// document count, so a clause present on every sheet reads 1.0 and an empty
// document set reads 0 everywhere.
func (e *Engine) AggregateClauseStats(docs []map[string]any) models.ClauseStats {
	frequency := make(map[string]int, len(models.ClauseKeys))
	for _, key := range models.ClauseKeys {
		frequency[key] = 0
	}

	for _, doc := range docs {
		for _, key := range models.ClauseKeys {
			if e.extractor.ClausePresent(key, doc) {
				frequency[key]++
			}
		}
	}

	total := len(docs)
	if total == 0 {
		total = 1
	}

	likelihood := make(map[string]float64, len(models.ClauseKeys))
	for _, key := range models.ClauseKeys {
		likelihood[key] = float64(frequency[key]) / float64(total)
	}

	return models.ClauseStats{Frequency: frequency, Likelihood: likelihood}
}

// ScoresFromClauseStats maps clause likelihoods to founder-friendliness and
// control-risk scores on a 0 to 100 scale. Heavy control clauses push
// control risk up and founder friendliness down; light sheets read as
// founder friendly.
func (e *Engine) ScoresFromClauseStats(stats models.ClauseStats) (founderFriendliness, controlRisk int) {
	var econWeight, controlWeight float64
	for _, key := range economicClauses {
		econWeight += stats.Likelihood[key]
	}
	for _, key := range controlClauses {
		controlWeight += stats.Likelihood[key]
	}

	econRisk := math.Min(1.0, econWeight/3.0)
	controlRiskRatio := math.Min(1.0, controlWeight/4.0)

	controlRisk = int(math.RoundToEven(controlRiskRatio * 100))
	founderFriendliness = int(math.RoundToEven((1.0 - math.Max(econRisk, controlRiskRatio)) * 100))
	return founderFriendliness, controlRisk
}

// BuildProfile computes the full clause profile for one investor's sheets
func (e *Engine) BuildProfile(sheets []models.TermSheet) models.ClauseProfile {
	stats := e.AggregateClauseStats(e.ParseTermDocs(sheets))
	founder, control := e.ScoresFromClauseStats(stats)
	return models.ClauseProfile{
		ClauseStats:              stats,
		FounderFriendlinessScore: founder,
		ControlRiskScore:         control,
	}
}
