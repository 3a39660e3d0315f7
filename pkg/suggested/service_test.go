package suggested

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/trellis/pkg/models"
)

func feedItem(name, company, position, location string, score float64, fit, shared int) models.SuggestedInvestor {
	return models.SuggestedInvestor{
		Name:                 name,
		Company:              company,
		Position:             position,
		Location:             location,
		Score:                score,
		FitScore:             fit,
		SharedInvestorsCount: shared,
	}
}

func TestFilterItems(t *testing.T) {
	items := []models.SuggestedInvestor{
		feedItem("Ada", "Fintech Ventures", "Partner", "New York, NY", 5, 80, 3),
		feedItem("Ben", "Hardline Capital", "Principal, Fintech", "Austin, TX", 4, 70, 1),
		feedItem("Cora", "Bio Fund", "Angel Investor", "New York, NY", 3, 60, 0),
	}

	// No filters returns everything
	kept := filterItems(items, models.FeedQuery{})
	assert.Len(t, kept, 3)

	// Industry matches position or employer, case-insensitive
	kept = filterItems(items, models.FeedQuery{Industry: "FINTECH"})
	require.Len(t, kept, 2)
	assert.Equal(t, "Ada", kept[0].Name)
	assert.Equal(t, "Ben", kept[1].Name)

	kept = filterItems(items, models.FeedQuery{Location: "new york"})
	require.Len(t, kept, 2)
	assert.Equal(t, "Ada", kept[0].Name)
	assert.Equal(t, "Cora", kept[1].Name)

	kept = filterItems(items, models.FeedQuery{FirmType: "fund"})
	require.Len(t, kept, 1)
	assert.Equal(t, "Cora", kept[0].Name)

	kept = filterItems(items, models.FeedQuery{TitlePattern: "angel"})
	require.Len(t, kept, 1)
	assert.Equal(t, "Cora", kept[0].Name)

	// Filters compound
	kept = filterItems(items, models.FeedQuery{Industry: "fintech", Location: "austin"})
	require.Len(t, kept, 1)
	assert.Equal(t, "Ben", kept[0].Name)

	// Whitespace-only filters are ignored
	kept = filterItems(items, models.FeedQuery{Industry: "   "})
	assert.Len(t, kept, 3)
}

func TestSortItemsRelevanceDefault(t *testing.T) {
	items := []models.SuggestedInvestor{
		feedItem("Zoe", "", "", "", 3, 90, 0),
		feedItem("ada", "", "", "", 5, 10, 0),
		feedItem("Ben", "", "", "", 5, 80, 0),
		feedItem("Amy", "", "", "", 5, 80, 0),
	}

	sortItems(items, "")

	// Score desc, then fit score desc, then lowercased name
	assert.Equal(t, "Amy", items[0].Name)
	assert.Equal(t, "Ben", items[1].Name)
	assert.Equal(t, "ada", items[2].Name)
	assert.Equal(t, "Zoe", items[3].Name)
}

func TestSortItemsFitScore(t *testing.T) {
	items := []models.SuggestedInvestor{
		feedItem("Low", "", "", "", 9, 10, 0),
		feedItem("High", "", "", "", 1, 95, 0),
		feedItem("Mid", "", "", "", 5, 50, 0),
	}

	sortItems(items, models.FeedSortFitScore)

	assert.Equal(t, "High", items[0].Name)
	assert.Equal(t, "Mid", items[1].Name)
	assert.Equal(t, "Low", items[2].Name)
}

func TestSortItemsOverlap(t *testing.T) {
	items := []models.SuggestedInvestor{
		feedItem("One", "", "", "", 1, 40, 1),
		feedItem("Five", "", "", "", 1, 40, 5),
		feedItem("Tie", "", "", "", 1, 90, 1),
	}

	sortItems(items, models.FeedSortOverlap)

	assert.Equal(t, "Five", items[0].Name)
	// Equal overlap breaks on fit score
	assert.Equal(t, "Tie", items[1].Name)
	assert.Equal(t, "One", items[2].Name)
}

func TestSortItemsLocation(t *testing.T) {
	items := []models.SuggestedInvestor{
		feedItem("B", "", "", "nyc", 1, 10, 0),
		feedItem("A", "", "", "Austin", 1, 10, 0),
		feedItem("C", "", "", "austin", 1, 90, 0),
	}

	sortItems(items, models.FeedSortLocation)

	// Location asc, ties on fit score desc
	assert.Equal(t, "C", items[0].Name)
	assert.Equal(t, "A", items[1].Name)
	assert.Equal(t, "B", items[2].Name)
}

func TestApplyQueryClampsTopN(t *testing.T) {
	svc := &Service{config: Config{DefaultTopN: 2, MaxTopN: 3}.withDefaults()}

	feed := &models.SuggestedFeedResponse{
		CompanyID:     42,
		CompanyName:   "Acme",
		InvestorCount: 9,
		Items: []models.SuggestedInvestor{
			feedItem("A", "", "", "", 5, 50, 0),
			feedItem("B", "", "", "", 4, 50, 0),
			feedItem("C", "", "", "", 3, 50, 0),
			feedItem("D", "", "", "", 2, 50, 0),
		},
	}

	// TopN below 1 falls back to the default
	got := svc.applyQuery(feed, models.FeedQuery{TopN: 0})
	assert.Len(t, got.Items, 2)
	assert.Equal(t, int64(42), got.CompanyID)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, 9, got.InvestorCount)

	// TopN above the max clamps to the max
	got = svc.applyQuery(feed, models.FeedQuery{TopN: 50})
	assert.Len(t, got.Items, 3)

	got = svc.applyQuery(feed, models.FeedQuery{TopN: 1})
	require.Len(t, got.Items, 1)
	assert.Equal(t, "A", got.Items[0].Name)

	// The cached feed is never mutated
	assert.Len(t, feed.Items, 4)
	assert.Equal(t, "A", feed.Items[0].Name)
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 25, cfg.DefaultTopN)
	assert.Equal(t, PipelineLimit, cfg.MaxTopN)

	cfg = Config{DefaultTopN: 10, MaxTopN: 40}.withDefaults()
	assert.Equal(t, 10, cfg.DefaultTopN)
	assert.Equal(t, 40, cfg.MaxTopN)
}
