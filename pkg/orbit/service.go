package orbit

import (
	"context"
	"io"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/connection"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/pkg/cache"
	"github.com/Ramsey-B/trellis/pkg/metrics"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Service imports exported connection lists for an investor. An upload
// replaces the investor's connections wholesale; partial imports never happen.
type Service struct {
	logger         ectologger.Logger
	parser         *Parser
	investorRepo   *investor.Repository
	connectionRepo *connection.Repository
	feedCache      *cache.FeedCache
}

// NewService creates an orbit import service
func NewService(
	logger ectologger.Logger,
	investorRepo *investor.Repository,
	connectionRepo *connection.Repository,
	feedCache *cache.FeedCache,
) *Service {
	return &Service{
		logger:         logger,
		parser:         NewParser(),
		investorRepo:   investorRepo,
		connectionRepo: connectionRepo,
		feedCache:      feedCache,
	}
}

// Upload parses the CSV and replaces the investor's connections with its
// rows. The feed cache is invalidated because the feed's inputs changed.
func (s *Service) Upload(ctx context.Context, companyID, investorID int64, csv io.Reader) (*models.ImportSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "orbit.Service.Upload")
	defer span.End()

	if _, err := s.investorRepo.GetForCompany(ctx, companyID, investorID); err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(csv)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	requests := ectolinq.Map(parsed.Records, func(rec Record) models.CreateConnectionRequest {
		return rec.Request()
	})

	imported, err := s.connectionRepo.ReplaceForInvestor(ctx, investorID, requests)
	if err != nil {
		return nil, err
	}

	if err := s.investorRepo.Touch(ctx, investorID); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"investor_id": investorID}).Warn("Failed to bump investor updated_at")
	}

	s.feedCache.Invalidate(ctx, companyID)
	metrics.RecordOrbitRows("imported", imported)
	metrics.RecordOrbitRows("skipped", parsed.Skipped)

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":  companyID,
		"investor_id": investorID,
		"total_rows":  parsed.TotalRows,
		"imported":    imported,
		"skipped":     parsed.Skipped,
	}).Info("Imported orbit connections")

	return &models.ImportSummary{
		InvestorID:   investorID,
		TotalRows:    parsed.TotalRows,
		Imported:     imported,
		Skipped:      parsed.Skipped,
		ParseErrors:  parsed.Errors,
		ColumnsFound: parsed.Columns,
	}, nil
}

// Clear removes the investor's connections and invalidates the feed cache
func (s *Service) Clear(ctx context.Context, companyID, investorID int64) error {
	ctx, span := tracing.StartSpan(ctx, "orbit.Service.Clear")
	defer span.End()

	if _, err := s.investorRepo.GetForCompany(ctx, companyID, investorID); err != nil {
		return err
	}

	if err := s.connectionRepo.ClearForInvestor(ctx, investorID); err != nil {
		return err
	}

	if err := s.investorRepo.Touch(ctx, investorID); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"investor_id": investorID}).Warn("Failed to bump investor updated_at")
	}

	s.feedCache.Invalidate(ctx, companyID)

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id":  companyID,
		"investor_id": investorID,
	}).Info("Cleared orbit connections")

	return nil
}
