// Package fitscore rates how well a candidate investor fits a company's
// existing investor base on a 0-100 scale with explainable factors.
package fitscore

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/normalize"
)

// Max points per dimension. The four together scale to 100.
const (
	MaxSimilarityPts = 30.0
	MaxNetworkPts    = 35.0
	MaxLocationPts   = 20.0
	MaxRecencyPts    = 15.0
)

// Candidate is the minimal descriptor rated against a company profile
type Candidate struct {
	Company  string
	Position string
	Location string
}

// Engine computes fit scores. Stateless; safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compute rates the candidate against the profile. sharedInvestorsCount is
// how many of the company's investors have the candidate in their network;
// sharedOrgCount is how many times the candidate's employer shows up there.
func (e *Engine) Compute(cand Candidate, profile models.CompanyProfile, sharedInvestorsCount, sharedOrgCount int) models.FitScore {
	simPts, simFactors := e.similarityScore(cand, profile)
	netPts, netFactors := e.networkScore(sharedInvestorsCount, sharedOrgCount)
	locPts, locFactors := e.locationScore(cand.Location, profile.LocationTokens)
	// no interaction history for candidates yet, so recency stays neutral
	recPts := MaxRecencyPts * 0.5

	total := simPts + netPts + locPts + recPts
	maxPts := MaxSimilarityPts + MaxNetworkPts + MaxLocationPts + MaxRecencyPts
	score := int(math.RoundToEven(math.Min(100, math.Max(0, (total/maxPts)*100))))

	factors := append(append(simFactors, netFactors...), locFactors...)
	if len(factors) > 6 {
		factors = factors[:6]
	}

	return models.FitScore{
		Score:   score,
		Factors: factors,
		Breakdown: models.FitBreakdown{
			Similarity: round1(simPts),
			Network:    round1(netPts),
			Location:   round1(locPts),
			Recency:    round1(recPts),
		},
	}
}

// similarityScore blends industry overlap, title pattern, and firm type into
// 0-MaxSimilarityPts
func (e *Engine) similarityScore(cand Candidate, profile models.CompanyProfile) (float64, []string) {
	title := strings.TrimSpace(cand.Position)
	company := strings.TrimSpace(cand.Company)

	indPts := industryOverlapScore(title, company, profile.IndustryTokens)
	titlePts := titlePatternScore(title)
	firmPts := firmTypeScore(company, profile.InvestorFirms)

	raw := indPts + titlePts + firmPts
	pts := 0.0
	if raw > 0 {
		pts = raw * (MaxSimilarityPts / 30.0)
	}

	factors := []string{}
	if indPts > 0 {
		factors = append(factors, "Industry overlap with your investors")
	}
	if titlePts > 0 {
		factors = append(factors, "Investor-like title")
	}
	if firmPts > 0 {
		factors = append(factors, "Firm type / similar to your investors")
	}
	return pts, factors
}

// industryOverlapScore gives 0-10 pts for industry tokens found in the
// candidate's title or employer text
func industryOverlapScore(title, company string, industryTokens map[string]bool) float64 {
	if len(industryTokens) == 0 {
		return 0.0
	}
	text := strings.ToLower(" " + title + " " + company + " ")
	matches := 0
	for tok := range industryTokens {
		if strings.Contains(text, tok) {
			matches++
		}
	}
	if matches == 0 {
		return 0.0
	}
	return math.Min(10.0, 3.0+float64(matches)*2.0)
}

// titlePatternScore gives 10 pts for an investor-like title
func titlePatternScore(title string) float64 {
	if title == "" {
		return 0.0
	}
	if normalize.MatchesTitlePattern(title) {
		return 10.0
	}
	return 0.0
}

// firmTypeScore gives 5 pts when the employer carries an investment-firm
// token and 5 more when it resembles a firm the investors already work at
func firmTypeScore(company string, investorFirms map[string]bool) float64 {
	if company == "" {
		return 0.0
	}
	companyLower := strings.ToLower(strings.TrimSpace(company))
	pts := 0.0
	for _, tok := range normalize.FirmTypeTokens {
		if strings.Contains(companyLower, tok) {
			pts += 5.0
			break
		}
	}
	for firm := range investorFirms {
		if utf8.RuneCountInString(firm) > 4 && (strings.Contains(companyLower, firm) || strings.Contains(firm, companyLower)) {
			pts += 5.0
			break
		}
	}
	return math.Min(10.0, pts)
}

func (e *Engine) networkScore(sharedInvestorsCount, sharedOrgCount int) (float64, []string) {
	pts := 0.0
	factors := []string{}

	switch {
	case sharedInvestorsCount >= 3:
		pts += 20.0
		factors = append(factors, fmt.Sprintf("Seen in %d investor networks", sharedInvestorsCount))
	case sharedInvestorsCount == 2:
		pts += 12.0
		factors = append(factors, "Seen in 2 investor networks")
	case sharedInvestorsCount == 1:
		pts += 5.0
		factors = append(factors, "In 1 investor's network")
	}

	switch {
	case sharedOrgCount >= 2:
		pts += 15.0
		factors = append(factors, "Company appears across network")
	case sharedOrgCount == 1:
		pts += 7.0
		factors = append(factors, "Company in network")
	}

	return math.Min(pts, MaxNetworkPts), factors
}

func (e *Engine) locationScore(location string, locationTokens map[string]bool) (float64, []string) {
	if strings.TrimSpace(location) == "" || len(locationTokens) == 0 {
		return 0.0, nil
	}
	for tok := range normalize.LocationTokens(location) {
		if locationTokens[tok] {
			return MaxLocationPts, []string{"Location match with your investors"}
		}
	}
	return 0.0, nil
}

// round1 rounds to one decimal, ties to even
func round1(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}
