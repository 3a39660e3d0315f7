package negotiation

import (
	"fmt"

	"github.com/Ramsey-B/trellis/pkg/expressions"
)

// Extractor reads clause values out of parsed term documents. Sheets arrive
// in whatever shape the upstream parser produced, so each clause key maps to
// a JMESPath expression. By default that is the bare key, which matches flat
// documents; nested layouts are handled with path overrides like
// "economics.liquidation_pref".
type Extractor struct {
	paths     map[string]string
	evaluator *expressions.Evaluator
}

// NewExtractor creates an extractor with the given clause path overrides.
// A nil map means every clause reads from its top-level key.
func NewExtractor(paths map[string]string) *Extractor {
	return &Extractor{
		paths:     paths,
		evaluator: expressions.NewEvaluator(),
	}
}

// pathFor returns the JMESPath expression used for a clause key
func (e *Extractor) pathFor(key string) string {
	if expr, ok := e.paths[key]; ok && expr != "" {
		return expr
	}
	return key
}

// ClauseValue returns the clause's value within the document, or nil when
// the document does not address the clause.
func (e *Extractor) ClauseValue(key string, doc map[string]any) (any, error) {
	return e.evaluator.Evaluate(e.pathFor(key), doc)
}

// ClausePresent reports whether the document takes a position on the clause.
// Missing keys and nulls mean the sheet never mentions it; empty strings and
// the literals "none" and "off" are explicit opt-outs. Boolean false and
// numeric zero still count: a sheet that says participation=false did
// address participation.
func (e *Extractor) ClausePresent(key string, doc map[string]any) bool {
	value, err := e.ClauseValue(key, doc)
	if err != nil || value == nil {
		return false
	}

	if s, ok := value.(string); ok {
		return s != "" && s != "none" && s != "off"
	}

	return true
}

// Validate compiles every configured clause path so bad expressions surface
// before any sheets are aggregated.
func (e *Extractor) Validate() error {
	for key := range e.paths {
		if err := e.evaluator.Validate(e.pathFor(key)); err != nil {
			return fmt.Errorf("invalid clause path for %q: %w", key, err)
		}
	}
	return nil
}
