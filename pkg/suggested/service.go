// Package suggested orchestrates the suggested-investor feed: pipeline run,
// fit and strength enrichment, snapshot persistence, and the Redis cache.
package suggested

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/company"
	"github.com/Ramsey-B/trellis/internal/repositories/connection"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/suggestion"
	"github.com/Ramsey-B/trellis/pkg/cache"
	"github.com/Ramsey-B/trellis/pkg/events"
	"github.com/Ramsey-B/trellis/pkg/fitscore"
	"github.com/Ramsey-B/trellis/pkg/metrics"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/recommend"
	"github.com/Ramsey-B/trellis/pkg/strength"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// PipelineLimit is how many candidates the pipeline keeps before filters.
// The request topN slices this enriched list, never the other way around.
const PipelineLimit = 200

// Config tunes the feed slice limits
type Config struct {
	// DefaultTopN is used when the query carries no usable topN
	DefaultTopN int
	// MaxTopN is the upper clamp for the query topN
	MaxTopN int
}

func (c Config) withDefaults() Config {
	if c.DefaultTopN < 1 {
		c.DefaultTopN = 25
	}
	if c.MaxTopN < 1 {
		c.MaxTopN = PipelineLimit
	}
	return c
}

// Service computes and serves the suggested-investor feed for a company
type Service struct {
	logger         ectologger.Logger
	config         Config
	engine         *recommend.Engine
	fit            *fitscore.Engine
	strength       *strength.Service
	companyRepo    *company.Repository
	investorRepo   *investor.Repository
	connectionRepo *connection.Repository
	suggestionRepo *suggestion.Repository
	feedCache      *cache.FeedCache
	emitter        *events.Emitter
}

// NewService creates a suggested feed service
func NewService(
	logger ectologger.Logger,
	config Config,
	companyRepo *company.Repository,
	investorRepo *investor.Repository,
	connectionRepo *connection.Repository,
	suggestionRepo *suggestion.Repository,
	strengthService *strength.Service,
	feedCache *cache.FeedCache,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:         logger,
		config:         config.withDefaults(),
		engine:         recommend.NewEngine(recommend.DefaultConfig()),
		fit:            fitscore.NewEngine(),
		strength:       strengthService,
		companyRepo:    companyRepo,
		investorRepo:   investorRepo,
		connectionRepo: connectionRepo,
		suggestionRepo: suggestionRepo,
		feedCache:      feedCache,
		emitter:        emitter,
	}
}

// Feed returns the company's suggested-investor feed with the query's
// filters, sort, and topN applied. The cache fronts the unfiltered list.
func (s *Service) Feed(ctx context.Context, companyID int64, query models.FeedQuery) (*models.SuggestedFeedResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "suggested.Service.Feed")
	defer span.End()

	feed, ok := s.feedCache.Get(ctx, companyID)
	metrics.RecordFeedCacheLookup(ok)
	if !ok {
		var err error
		feed, err = s.recompute(ctx, companyID)
		if err != nil {
			return nil, err
		}
	}

	return s.applyQuery(feed, query), nil
}

// Refresh recomputes the feed from scratch, replacing the cache and the
// persisted snapshot. Returns the full unfiltered feed.
func (s *Service) Refresh(ctx context.Context, companyID int64) (*models.SuggestedFeedResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "suggested.Service.Refresh")
	defer span.End()

	s.feedCache.Invalidate(ctx, companyID)
	return s.recompute(ctx, companyID)
}

// Invalidate drops the cached feed so the next read recomputes. Called by
// investor and orbit writes.
func (s *Service) Invalidate(ctx context.Context, companyID int64) {
	s.feedCache.Invalidate(ctx, companyID)
}

// recompute runs the pipeline, enriches every candidate, persists the
// snapshot, primes the cache, and announces the refresh
func (s *Service) recompute(ctx context.Context, companyID int64) (*models.SuggestedFeedResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "suggested.Service.recompute")
	defer span.End()

	start := time.Now()
	log := s.logger.WithContext(ctx).WithFields(map[string]any{"company_id": companyID})

	comp, err := s.companyRepo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	investors, err := s.investorRepo.ListAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	connections, err := s.connectionRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	items, profile := s.engine.RunPipeline(investors, connections, PipelineLimit)
	for i := range items {
		s.enrich(ctx, companyID, &items[i], profile)
	}

	if err := s.suggestionRepo.ReplaceForCompany(ctx, companyID, items); err != nil {
		metrics.RecordFeedRefresh("error", time.Since(start).Seconds())
		return nil, err
	}

	feed := &models.SuggestedFeedResponse{
		CompanyID:       companyID,
		CompanyName:     comp.Name,
		InvestorCount:   len(investors),
		ConnectionCount: len(connections),
		Items:           items,
	}
	s.feedCache.Set(ctx, companyID, feed)

	topScore := 0.0
	if len(items) > 0 {
		topScore = items[0].Score
	}
	_ = s.emitter.EmitSuggestionsRefreshed(ctx, companyID, len(items), topScore)

	metrics.RecordFeedRefresh("success", time.Since(start).Seconds())
	log.WithFields(map[string]any{
		"items":       len(items),
		"investors":   len(investors),
		"connections": len(connections),
	}).Info("Recomputed suggested feed")

	return feed, nil
}

// enrich attaches the fit score, overlap stats, and the source-investor
// relationship strength to one feed item. A strength failure degrades to a
// nil strength instead of failing the feed.
func (s *Service) enrich(ctx context.Context, companyID int64, item *models.SuggestedInvestor, profile models.CompanyProfile) {
	fit := s.fit.Compute(fitscore.Candidate{
		Company:  item.Company,
		Position: item.Position,
		Location: item.Location,
	}, profile, item.SharedInvestorsCount, item.SharedOrgCount)

	item.FitScore = fit.Score
	item.FitFactors = fit.Factors
	item.FitBreakdown = fit.Breakdown
	item.OverlapStats = models.OverlapStats{
		SharedInvestorsCount: item.SharedInvestorsCount,
		SharedOrgCount:       item.SharedOrgCount,
	}
	item.RelationshipStrength = nil
	item.RelationshipFactors = []string{}

	if item.SourceInvestorID == nil {
		return
	}

	rel, err := s.strength.ComputeInvestorCandidate(ctx, companyID, *item.SourceInvestorID, item.Name, item.LinkedinURL, item.SharedInvestorsCount, item.SharedOrgCount)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id":  companyID,
			"investor_id": *item.SourceInvestorID,
			"candidate":   item.Name,
		}).Warn("Failed to compute candidate strength; leaving unset")
		return
	}
	item.RelationshipStrength = &rel.Strength
	item.RelationshipFactors = rel.StrengthFactors
}

// applyQuery filters, sorts, and slices a copy of the cached feed
func (s *Service) applyQuery(feed *models.SuggestedFeedResponse, query models.FeedQuery) *models.SuggestedFeedResponse {
	items := make([]models.SuggestedInvestor, len(feed.Items))
	copy(items, feed.Items)

	items = filterItems(items, query)
	sortItems(items, query.Sort)

	topN := query.TopN
	if topN < 1 {
		topN = s.config.DefaultTopN
	}
	if topN > s.config.MaxTopN {
		topN = s.config.MaxTopN
	}
	if len(items) > topN {
		items = items[:topN]
	}

	return &models.SuggestedFeedResponse{
		CompanyID:       feed.CompanyID,
		CompanyName:     feed.CompanyName,
		InvestorCount:   feed.InvestorCount,
		ConnectionCount: feed.ConnectionCount,
		Items:           items,
	}
}

// filterItems applies the case-insensitive substring filters. Industry
// matches position or employer; the rest match a single field.
func filterItems(items []models.SuggestedInvestor, query models.FeedQuery) []models.SuggestedInvestor {
	industry := strings.ToLower(strings.TrimSpace(query.Industry))
	location := strings.ToLower(strings.TrimSpace(query.Location))
	firmType := strings.ToLower(strings.TrimSpace(query.FirmType))
	title := strings.ToLower(strings.TrimSpace(query.TitlePattern))
	if industry == "" && location == "" && firmType == "" && title == "" {
		return items
	}

	kept := make([]models.SuggestedInvestor, 0, len(items))
	for _, item := range items {
		if industry != "" && !strings.Contains(strings.ToLower(item.Position), industry) && !strings.Contains(strings.ToLower(item.Company), industry) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(item.Location), location) {
			continue
		}
		if firmType != "" && !strings.Contains(strings.ToLower(item.Company), firmType) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(item.Position), title) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// sortItems orders the feed. Each order breaks ties on the next score and
// finally on the lowercased name so output is stable across runs.
func sortItems(items []models.SuggestedInvestor, sortBy string) {
	less := func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if items[i].FitScore != items[j].FitScore {
			return items[i].FitScore > items[j].FitScore
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	}

	switch sortBy {
	case models.FeedSortFitScore:
		less = func(i, j int) bool {
			if items[i].FitScore != items[j].FitScore {
				return items[i].FitScore > items[j].FitScore
			}
			if items[i].Score != items[j].Score {
				return items[i].Score > items[j].Score
			}
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		}
	case models.FeedSortOverlap:
		less = func(i, j int) bool {
			if items[i].SharedInvestorsCount != items[j].SharedInvestorsCount {
				return items[i].SharedInvestorsCount > items[j].SharedInvestorsCount
			}
			if items[i].FitScore != items[j].FitScore {
				return items[i].FitScore > items[j].FitScore
			}
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		}
	case models.FeedSortLocation:
		less = func(i, j int) bool {
			li, lj := strings.ToLower(items[i].Location), strings.ToLower(items[j].Location)
			if li != lj {
				return li < lj
			}
			if items[i].FitScore != items[j].FitScore {
				return items[i].FitScore > items[j].FitScore
			}
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		}
	}

	sort.SliceStable(items, less)
}
