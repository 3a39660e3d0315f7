// Package normalize produces the stable identity keys and token sets the
// intelligence pipeline runs on. Every module that compares people, firms, or
// locations goes through these functions, so one entity always maps to one key.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// FirmTypeTokens are substrings of a company name that suggest an investment
// firm. Checked in declaration order so the first matching token is stable.
var FirmTypeTokens = []string{
	"capital", "partners", "ventures", "venture", "equity", "fund",
	"group", "holdings", "investments", "private equity", "vc",
	"venture capital", "growth", "advisors", "advisory",
}

// TitlePatterns are substrings of a job title that suggest an investor-like role
var TitlePatterns = []string{
	"partner", "principal", "vp", "vice president", "md", "managing director",
	"director", "investor", "associate", "analyst", "head of", "managing partner",
}

// NameKey produces a stable key for name matching and dedup.
// Lowercases, folds accents to ascii, strips punctuation, drops single-letter
// middle tokens (initials), and removes spaces.
// Example: "Nicholas B. De Noyer" -> "nicholasdenoyer".
func NameKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	s = stripMarks(norm.NFKD.String(s))

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	parts := strings.Fields(b.String())
	filtered := parts[:0]
	for i, p := range parts {
		if utf8.RuneCountInString(p) == 1 && i > 0 && i < len(parts)-1 {
			continue // single-char middle initial
		}
		filtered = append(filtered, p)
	}
	return strings.Join(filtered, "")
}

// CandidateKey is the stable key for candidates that are not investors yet:
// normalized name joined with the lowercased linkedin url.
func CandidateKey(name, linkedinURL string) string {
	return NameKey(name) + "|" + strings.ToLower(strings.TrimSpace(linkedinURL))
}

// OrgKey is the stable key for an org: the lowercased, trimmed company name.
// Empty input yields an empty key, which callers must treat as "no org".
func OrgKey(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}

// LocationTokens extracts location tokens for matching: the full lowercased
// string plus each comma-separated part.
func LocationTokens(location string) map[string]bool {
	s := strings.ToLower(strings.TrimSpace(location))
	if s == "" {
		return map[string]bool{}
	}
	tokens := map[string]bool{s: true}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tokens[t] = true
		}
	}
	return tokens
}

// IndustryTokens extracts industry-like tokens: split on / , | and keep
// lowercased parts longer than one character.
func IndustryTokens(text string) map[string]bool {
	tokens := map[string]bool{}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '/' || r == ',' || r == '|'
	})
	for _, part := range parts {
		t := strings.ToLower(strings.TrimSpace(part))
		if utf8.RuneCountInString(t) > 1 {
			tokens[t] = true
		}
	}
	return tokens
}

// ExtractFirmTypeTokens returns the firm-type tokens contained in the company
// name, in vocabulary order
func ExtractFirmTypeTokens(companyName string) []string {
	s := strings.ToLower(strings.TrimSpace(companyName))
	if s == "" {
		return nil
	}
	var found []string
	for _, t := range FirmTypeTokens {
		if strings.Contains(s, t) {
			found = append(found, t)
		}
	}
	return found
}

// MatchesTitlePattern reports whether the title contains any investor-like
// role pattern
func MatchesTitlePattern(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return false
	}
	for _, p := range TitlePatterns {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// stripMarks removes combining marks left behind by NFKD decomposition
func stripMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
