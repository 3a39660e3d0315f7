package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple name",
			input:    "Jane Doe",
			expected: "janedoe",
		},
		{
			name:     "multi-part surname keeps all parts",
			input:    "Nicholas De Noyer",
			expected: "nicholasdenoyer",
		},
		{
			name:     "middle initial dropped",
			input:    "John Q Public",
			expected: "johnpublic",
		},
		{
			name:     "middle initial with period dropped",
			input:    "John Q. Public",
			expected: "johnpublic",
		},
		{
			name:     "leading single letter kept",
			input:    "J Smith",
			expected: "jsmith",
		},
		{
			name:     "trailing single letter kept",
			input:    "John Q",
			expected: "johnq",
		},
		{
			name:     "accents folded to ascii",
			input:    "José Muñoz",
			expected: "josemunoz",
		},
		{
			name:     "punctuation stripped without spacing",
			input:    "Jane O'Brien-Smith",
			expected: "janeobriensmith",
		},
		{
			name:     "extra whitespace collapsed",
			input:    "  Jane   Doe  ",
			expected: "janedoe",
		},
		{
			name:     "case insensitive",
			input:    "JANE DOE",
			expected: "janedoe",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NameKey(tt.input))
		})
	}
}

func TestNameKeyCollisions(t *testing.T) {
	// Different display forms of the same person must share one key
	assert.Equal(t, NameKey("Jane Doe"), NameKey("jane   doe"))
	assert.Equal(t, NameKey("Jane B. Doe"), NameKey("Jane Doe"))
	assert.Equal(t, NameKey("José Doe"), NameKey("Jose Doe"))

	// Different people must not collide
	assert.NotEqual(t, NameKey("Jane Doe"), NameKey("Joan Doe"))
}

func TestCandidateKey(t *testing.T) {
	assert.Equal(t, "janedoe|https://linkedin.com/in/jane", CandidateKey("Jane Doe", "https://linkedin.com/in/jane"))
	assert.Equal(t, "janedoe|https://linkedin.com/in/jane", CandidateKey("Jane B. Doe", "HTTPS://LinkedIn.com/in/jane "))
	assert.Equal(t, "janedoe|", CandidateKey("Jane Doe", ""))
}

func TestOrgKey(t *testing.T) {
	assert.Equal(t, "acme capital", OrgKey("Acme Capital"))
	assert.Equal(t, "acme capital", OrgKey("  ACME CAPITAL  "))
	assert.Equal(t, "", OrgKey("   "))
}

func TestLocationTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]bool
	}{
		{
			name:  "city state pair includes full string and parts",
			input: "New York, NY",
			expected: map[string]bool{
				"new york, ny": true,
				"new york":     true,
				"ny":           true,
			},
		},
		{
			name:     "single token",
			input:    "London",
			expected: map[string]bool{"london": true},
		},
		{
			name:     "empty",
			input:    "",
			expected: map[string]bool{},
		},
		{
			name:  "trims part whitespace",
			input: " San Francisco ,  CA ",
			expected: map[string]bool{
				"san francisco ,  ca": true,
				"san francisco":       true,
				"ca":                  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocationTokens(tt.input))
		})
	}
}

func TestIndustryTokens(t *testing.T) {
	assert.Equal(t, map[string]bool{"saas": true, "fintech": true}, IndustryTokens("SaaS / FinTech"))
	assert.Equal(t, map[string]bool{"healthcare": true, "biotech": true}, IndustryTokens("Healthcare,Biotech"))
	assert.Equal(t, map[string]bool{"ai": true, "ml": true}, IndustryTokens("AI|ML"))
	// single-character tokens are dropped
	assert.Equal(t, map[string]bool{"ai": true}, IndustryTokens("a/AI"))
	assert.Equal(t, map[string]bool{}, IndustryTokens(""))
}

func TestExtractFirmTypeTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single token",
			input:    "Acme Capital",
			expected: []string{"capital"},
		},
		{
			name:     "multiple tokens in vocabulary order",
			input:    "Growth Capital Partners",
			expected: []string{"capital", "partners", "growth"},
		},
		{
			name:     "venture matches inside ventures",
			input:    "Sequoia Ventures",
			expected: []string{"ventures", "venture"},
		},
		{
			name:     "no tokens",
			input:    "Initech",
			expected: nil,
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractFirmTypeTokens(tt.input))
		})
	}
}

func TestMatchesTitlePattern(t *testing.T) {
	assert.True(t, MatchesTitlePattern("Partner"))
	assert.True(t, MatchesTitlePattern("Managing Director"))
	assert.True(t, MatchesTitlePattern("VP of Engineering"))
	assert.True(t, MatchesTitlePattern("Head of Platform"))
	assert.True(t, MatchesTitlePattern("Senior Analyst"))
	assert.False(t, MatchesTitlePattern("Software Engineer"))
	assert.False(t, MatchesTitlePattern(""))
}
