package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/normalize"
)

// EngineConfig tunes the gating, dedup, and feed size of the pipeline
type EngineConfig struct {
	// TopN is the max number of suggestions returned per company
	TopN int
	// MinSignalCategories is the multi-signal gate: a candidate survives only
	// if at least this many distinct signal categories fired for it
	MinSignalCategories int
	// FuzzyNameThreshold excludes a candidate whose employer and title match
	// an existing investor and whose name similarity is at or above it
	FuzzyNameThreshold float64
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		TopN:                100,
		MinSignalCategories: 2,
		FuzzyNameThreshold:  0.88,
	}
}

// Engine scores a company's second-degree network into a ranked feed of
// suggested investors. All methods are pure; callers load the inputs.
type Engine struct {
	config EngineConfig
}

func NewEngine(config EngineConfig) *Engine {
	return &Engine{config: config}
}

// candidate is one person lifted from an investor's connection list
type candidate struct {
	name             string
	company          string
	position         string
	location         string
	linkedinURL      string
	sourceInvestorID int64
}

// scoredCandidate pairs a candidate with its accumulated score, the signal
// categories that fired, and the human-readable reasons for them
type scoredCandidate struct {
	candidate         candidate
	score             float64
	signals           map[string]bool
	reasons           []string
	sourceInvestorIDs map[int64]bool
}

// RunPipeline runs the full suggestion pipeline: score every connection
// against the company profile, merge duplicates of the same person across
// source investors, apply the multi-signal gate, drop candidates who already
// are investors, and return the topN by score. The profile the candidates
// were scored against is returned for downstream fit scoring.
func (e *Engine) RunPipeline(investors []models.Investor, connections []models.Connection, topN int) ([]models.SuggestedInvestor, models.CompanyProfile) {
	if topN <= 0 {
		topN = e.config.TopN
	}

	profile := e.BuildProfile(investors)
	companyCounts := connectionCompanyCounts(connections)

	scored := e.scoreCandidates(connections, profile, companyCounts)
	merged := e.mergeCandidates(scored)
	gated := e.applyGate(merged)
	deduped := e.applyDedup(gated, investors)

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].score != deduped[j].score {
			return deduped[i].score > deduped[j].score
		}
		return strings.ToLower(deduped[i].candidate.name) < strings.ToLower(deduped[j].candidate.name)
	})

	if len(deduped) > topN {
		deduped = deduped[:topN]
	}

	items := make([]models.SuggestedInvestor, 0, len(deduped))
	for _, item := range deduped {
		cand := item.candidate
		sharedOrgCount := 0
		if key := strings.ToLower(cand.company); key != "" && companyCounts[key] >= 2 {
			sharedOrgCount = 1
		}
		sourceID := cand.sourceInvestorID
		items = append(items, models.SuggestedInvestor{
			Name:                 cand.name,
			Company:              cand.company,
			Position:             cand.position,
			Location:             cand.location,
			LinkedinURL:          cand.linkedinURL,
			Score:                math.Round(item.score*10) / 10,
			Signals:              item.signals,
			Reasons:              item.reasons,
			SourceInvestorID:     &sourceID,
			SharedInvestorsCount: len(item.sourceInvestorIDs),
			SharedOrgCount:       sharedOrgCount,
		})
	}
	return items, profile
}

// BuildProfile aggregates the signal vocabulary from the company's investors
func (e *Engine) BuildProfile(investors []models.Investor) models.CompanyProfile {
	profile := models.CompanyProfile{
		IndustryTokens: map[string]bool{},
		LocationTokens: map[string]bool{},
		FirmTypeTokens: map[string]bool{},
		TitlePatterns:  map[string]bool{},
		InvestorFirms:  map[string]bool{},
	}

	for _, inv := range investors {
		if industry := trimmed(inv.Industry); industry != "" {
			for tok := range normalize.IndustryTokens(industry) {
				profile.IndustryTokens[tok] = true
			}
		}
		if location := trimmed(inv.Location); location != "" {
			for tok := range normalize.LocationTokens(location) {
				profile.LocationTokens[tok] = true
			}
		}
		if firm := trimmed(inv.Firm); firm != "" {
			profile.InvestorFirms[strings.ToLower(firm)] = true
			for _, tok := range normalize.ExtractFirmTypeTokens(firm) {
				profile.FirmTypeTokens[tok] = true
			}
		}
		if title := trimmed(inv.Title); title != "" {
			profile.TitlePatterns[strings.ToLower(title)] = true
		}
	}
	return profile
}

// connectionCompanyCounts maps lowercased employer name to how many
// connections work there
func connectionCompanyCounts(connections []models.Connection) map[string]int {
	counts := map[string]int{}
	for _, conn := range connections {
		company := trimmed(conn.Company)
		if company == "" {
			continue
		}
		counts[strings.ToLower(company)]++
	}
	return counts
}

func (e *Engine) scoreCandidates(connections []models.Connection, profile models.CompanyProfile, companyCounts map[string]int) []scoredCandidate {
	// Industry tokens are iterated in sorted order so the matched token in the
	// reason string is stable across runs
	industryTokens := sortedKeys(profile.IndustryTokens)

	results := make([]scoredCandidate, 0, len(connections))
	for _, conn := range connections {
		name := conn.DisplayName()
		if name == "" {
			continue
		}

		cand := candidate{
			name:             name,
			company:          trimmed(conn.Company),
			position:         trimmed(conn.Position),
			location:         trimmed(conn.Location),
			linkedinURL:      trimmed(conn.LinkedinURL),
			sourceInvestorID: conn.InvestorID,
		}

		signals := map[string]bool{}
		reasons := []string{}
		score := 0.0

		// s_industry: role or employer text contains an investor industry token
		text := strings.ToLower(" " + cand.position + " " + cand.company + " ")
		for _, tok := range industryTokens {
			if strings.Contains(text, tok) {
				signals[models.SignalIndustry] = true
				reasons = append(reasons, "Industry: "+tok)
				score += 4.0
				break
			}
		}

		// s_location: candidate location overlaps the investor location tokens
		if cand.location != "" && len(profile.LocationTokens) > 0 {
			if anyTokenShared(normalize.LocationTokens(cand.location), profile.LocationTokens) {
				signals[models.SignalLocation] = true
				reasons = append(reasons, "Location match")
				score += 3.0
			}
		}

		// s_firm_type: employer looks like an investment firm, or resembles a
		// firm the company's investors already work at
		if cand.company != "" {
			companyLower := strings.ToLower(cand.company)
			for _, tok := range normalize.FirmTypeTokens {
				if strings.Contains(companyLower, tok) {
					signals[models.SignalFirmType] = true
					reasons = append(reasons, "Firm type: "+tok)
					score += 3.0
					break
				}
			}
			for firm := range profile.InvestorFirms {
				if utf8.RuneCountInString(firm) > 4 && (strings.Contains(companyLower, firm) || strings.Contains(firm, companyLower)) {
					if !signals[models.SignalFirmType] {
						signals[models.SignalFirmType] = true
						reasons = append(reasons, "Similar to firm")
					}
					score += 2.0
					break
				}
			}
		}

		// s_title_pattern: candidate holds an investor-like role
		if cand.position != "" && normalize.MatchesTitlePattern(cand.position) {
			signals[models.SignalTitlePattern] = true
			reasons = append(reasons, "Investor-like title")
			score += 3.0
		}

		// s_company_in_network: employer shows up across multiple connections
		if cand.company != "" {
			if count := companyCounts[strings.ToLower(cand.company)]; count >= 2 {
				signals[models.SignalCompanyInNetwork] = true
				reasons = append(reasons, fmt.Sprintf("Company in network (%d connections)", count))
				score += 5.0
			}
		}

		results = append(results, scoredCandidate{
			candidate: cand,
			score:     score,
			signals:   signals,
			reasons:   reasons,
		})
	}
	return results
}

// mergeCandidates collapses rows that refer to the same person (by normalized
// name) across source investors. The first occurrence keeps its candidate
// fields; the merged entry carries the max score, the union of signals, and
// every distinct reason in first-seen order.
func (e *Engine) mergeCandidates(items []scoredCandidate) []scoredCandidate {
	byKey := map[string]*scoredCandidate{}
	order := []string{}

	for _, item := range items {
		key := normalize.NameKey(item.candidate.name)
		if key == "" {
			continue
		}
		existing, ok := byKey[key]
		if !ok {
			merged := item
			merged.signals = map[string]bool{}
			for sig := range item.signals {
				merged.signals[sig] = true
			}
			merged.reasons = append([]string{}, item.reasons...)
			merged.sourceInvestorIDs = map[int64]bool{item.candidate.sourceInvestorID: true}
			byKey[key] = &merged
			order = append(order, key)
			continue
		}
		if item.score > existing.score {
			existing.score = item.score
		}
		for sig := range item.signals {
			existing.signals[sig] = true
		}
		for _, reason := range item.reasons {
			if !ectolinq.Contains(existing.reasons, reason) {
				existing.reasons = append(existing.reasons, reason)
			}
		}
		existing.sourceInvestorIDs[item.candidate.sourceInvestorID] = true
	}

	merged := make([]scoredCandidate, 0, len(order))
	for _, key := range order {
		merged = append(merged, *byKey[key])
	}
	return merged
}

// applyGate keeps only candidates with enough distinct signal categories
func (e *Engine) applyGate(items []scoredCandidate) []scoredCandidate {
	kept := make([]scoredCandidate, 0, len(items))
	for _, item := range items {
		if len(item.signals) >= e.config.MinSignalCategories {
			kept = append(kept, item)
		}
	}
	return kept
}

// firmTitleKey indexes existing investors by lowercased firm and title
type firmTitleKey struct {
	firm  string
	title string
}

type existingIndex struct {
	nameKeys     map[string]bool
	linkedinURLs map[string]bool
	byFirmTitle  map[firmTitleKey][]string
}

func buildExistingIndex(investors []models.Investor) existingIndex {
	index := existingIndex{
		nameKeys:     map[string]bool{},
		linkedinURLs: map[string]bool{},
		byFirmTitle:  map[firmTitleKey][]string{},
	}
	for _, inv := range investors {
		name := strings.TrimSpace(inv.FullName)
		if name != "" {
			index.nameKeys[normalize.NameKey(name)] = true
		}
		if url := strings.ToLower(trimmed(inv.LinkedinURL)); url != "" {
			index.linkedinURLs[url] = true
		}
		firm := strings.ToLower(trimmed(inv.Firm))
		title := strings.ToLower(trimmed(inv.Title))
		if firm != "" || title != "" {
			key := firmTitleKey{firm: firm, title: title}
			index.byFirmTitle[key] = append(index.byFirmTitle[key], normalize.NameKey(name))
		}
	}
	return index
}

// applyDedup removes candidates who already are investors of the company:
// same LinkedIn URL, same normalized name, or same employer and title with a
// near-identical name
func (e *Engine) applyDedup(items []scoredCandidate, investors []models.Investor) []scoredCandidate {
	index := buildExistingIndex(investors)

	kept := make([]scoredCandidate, 0, len(items))
	for _, item := range items {
		cand := item.candidate
		if url := strings.ToLower(cand.linkedinURL); url != "" && index.linkedinURLs[url] {
			continue
		}
		if cand.name != "" && index.nameKeys[normalize.NameKey(cand.name)] {
			continue
		}
		key := firmTitleKey{
			firm:  strings.ToLower(cand.company),
			title: strings.ToLower(cand.position),
		}
		if existing := index.byFirmTitle[key]; len(existing) > 0 && e.fuzzyNameMatch(cand.name, existing) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func (e *Engine) fuzzyNameMatch(name string, existingKeys []string) bool {
	key := normalize.NameKey(name)
	for _, existing := range existingKeys {
		if Ratio(key, existing) >= e.config.FuzzyNameThreshold {
			return true
		}
	}
	return false
}

func anyTokenShared(a, b map[string]bool) bool {
	for tok := range a {
		if b[tok] {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
