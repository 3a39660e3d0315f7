package suggestion

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// suggestionRow is the database row for a persisted feed item
type suggestionRow struct {
	ID                int64                                 `db:"id"`
	CompanyID         int64                                 `db:"company_id"`
	CandidateName     string                                `db:"candidate_name"`
	CandidateTitle    *string                               `db:"candidate_title"`
	CandidateCompany  *string                               `db:"candidate_company"`
	CandidateLocation *string                               `db:"candidate_location"`
	LinkedinURL       *string                               `db:"linkedin_url"`
	FitScore          int                                   `db:"fit_score"`
	RelevanceScore    float64                               `db:"relevance_score"`
	SignalsFired      database.JSONB[[]string]              `db:"signals_fired"`
	Reasons           database.JSONB[[]string]              `db:"reasons"`
	OverlapStats      database.JSONB[models.OverlapStats]   `db:"overlap_stats"`
	CreatedAt         time.Time                             `db:"created_at"`
	UpdatedAt         time.Time                             `db:"updated_at"`
}

func toSuggestion(row suggestionRow) models.CandidateSuggestion {
	return models.CandidateSuggestion{
		ID:                row.ID,
		CompanyID:         row.CompanyID,
		CandidateName:     row.CandidateName,
		CandidateTitle:    row.CandidateTitle,
		CandidateCompany:  row.CandidateCompany,
		CandidateLocation: row.CandidateLocation,
		LinkedinURL:       row.LinkedinURL,
		FitScore:          row.FitScore,
		RelevanceScore:    row.RelevanceScore,
		SignalsFired:      row.SignalsFired.Data,
		Reasons:           row.Reasons.Data,
		OverlapStats:      row.OverlapStats.Data,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

// Repository handles persisted candidate suggestion snapshots
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new suggestion repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForCompany swaps the company's persisted feed snapshot for the given
// items in one transaction. Called on every feed recompute.
func (r *Repository) ReplaceForCompany(ctx context.Context, companyID int64, items []models.SuggestedInvestor) error {
	ctx, span := tracing.StartSpan(ctx, "suggestion.Repository.ReplaceForCompany")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "ReplaceForCompany",
		"company_id": companyID,
		"items":      len(items),
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("candidate_suggestions")
	sb.Where(sb.Equal("company_id", companyID))

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to delete existing suggestions")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to refresh suggestions")
	}

	if len(items) > 0 {
		now := time.Now().UTC()

		ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ib.InsertInto("candidate_suggestions")
		ib.Cols("company_id", "candidate_name", "candidate_title", "candidate_company", "candidate_location", "linkedin_url", "fit_score", "relevance_score", "signals_fired", "reasons", "overlap_stats", "created_at", "updated_at")
		for _, item := range items {
			signals := make([]string, 0, len(item.Signals))
			for _, category := range models.SignalCategories {
				if item.Signals[category] {
					signals = append(signals, category)
				}
			}
			ib.Values(
				companyID,
				item.Name,
				optional(item.Position),
				optional(item.Company),
				optional(item.Location),
				optional(item.LinkedinURL),
				item.FitScore,
				item.Score,
				database.JSONB[[]string]{Data: signals},
				database.JSONB[[]string]{Data: item.Reasons},
				database.JSONB[models.OverlapStats]{Data: item.OverlapStats},
				now,
				now,
			)
		}

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("Failed to insert suggestions")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to refresh suggestions")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit suggestion refresh")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to refresh suggestions")
	}

	log.Info("Replaced suggestion snapshot")
	return nil
}

// ListByCompany retrieves the persisted feed snapshot, highest relevance first
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]models.CandidateSuggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "suggestion.Repository.ListByCompany")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "candidate_name", "candidate_title", "candidate_company", "candidate_location", "linkedin_url", "fit_score", "relevance_score", "signals_fired", "reasons", "overlap_stats", "created_at", "updated_at")
	sb.From("candidate_suggestions")
	sb.Where(sb.Equal("company_id", companyID))
	sb.OrderBy("relevance_score DESC", "id ASC")

	query, args := sb.Build()
	var rows []suggestionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list suggestions")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list suggestions")
	}

	suggestions := make([]models.CandidateSuggestion, len(rows))
	for i, row := range rows {
		suggestions[i] = toSuggestion(row)
	}
	return suggestions, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
