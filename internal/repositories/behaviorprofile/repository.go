package behaviorprofile

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

// profileRow is the database row for one stored behavior profile
type profileRow struct {
	ID         int64                                  `db:"id"`
	InvestorID int64                                  `db:"investor_id"`
	CompanyID  int64                                  `db:"company_id"`
	AxisScores database.JSONB[models.BehaviorAxes]    `db:"axis_scores"`
	Confidence database.JSONB[models.BehaviorAxes]    `db:"confidence"`
	Metrics    database.JSONB[models.BehaviorMetrics] `db:"behavior_metrics"`
	UpdatedAt  time.Time                              `db:"updated_at"`
}

func toProfile(row profileRow) models.BehaviorProfile {
	return models.BehaviorProfile{
		ID:         row.ID,
		InvestorID: row.InvestorID,
		CompanyID:  row.CompanyID,
		AxisScores: row.AxisScores.Data,
		Confidence: row.Confidence.Data,
		Metrics:    row.Metrics.Data,
		UpdatedAt:  row.UpdatedAt,
	}
}

// Repository handles stored investor behavior profiles
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new behavior profile repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores a freshly computed profile for (investor, company), keyed on
// the table's unique pair constraint
func (r *Repository) Upsert(ctx context.Context, companyID, investorID int64, result models.BehaviorProfileResult) (*models.BehaviorProfile, error) {
	ctx, span := tracing.StartSpan(ctx, "behaviorprofile.Repository.Upsert")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "Upsert",
		"company_id":  companyID,
		"investor_id": investorID,
	})

	now := time.Now().UTC()

	ib := database.NewInsertBuilder()
	ib.InsertInto("investor_behavior_profiles")
	ib.Cols("investor_id", "company_id", "axis_scores", "confidence", "behavior_metrics", "updated_at")
	ib.Values(
		investorID,
		companyID,
		database.JSONB[models.BehaviorAxes]{Data: result.AxisScores},
		database.JSONB[models.BehaviorAxes]{Data: result.Confidence},
		database.JSONB[models.BehaviorMetrics]{Data: result.Metrics},
		now,
	)
	ub := ib.OnConflict("investor_id", "company_id")
	ub.Set(
		ub.Assign("axis_scores", database.Excluded("axis_scores")),
		ub.Assign("confidence", database.Excluded("confidence")),
		ub.Assign("behavior_metrics", database.Excluded("behavior_metrics")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
	)
	ib.Returning("id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to upsert behavior profile")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to store behavior profile")
	}

	log.Info("Stored behavior profile")
	return &models.BehaviorProfile{
		ID:         id,
		InvestorID: investorID,
		CompanyID:  companyID,
		AxisScores: result.AxisScores,
		Confidence: result.Confidence,
		Metrics:    result.Metrics,
		UpdatedAt:  now,
	}, nil
}

// Get returns the stored profile for (investor, company), or nil when none
// has been computed yet
func (r *Repository) Get(ctx context.Context, companyID, investorID int64) (*models.BehaviorProfile, error) {
	ctx, span := tracing.StartSpan(ctx, "behaviorprofile.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "investor_id", "company_id", "axis_scores", "confidence", "behavior_metrics", "updated_at")
	sb.From("investor_behavior_profiles")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.Equal("investor_id", investorID),
	)

	query, args := sb.Build()
	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get behavior profile")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get behavior profile")
	}

	profile := toProfile(row)
	return &profile, nil
}

// ListByInvestorIDs returns stored profiles for the given investors keyed by
// investor id. Investors without a profile are absent from the map.
func (r *Repository) ListByInvestorIDs(ctx context.Context, companyID int64, investorIDs []int64) (map[int64]models.BehaviorProfile, error) {
	ctx, span := tracing.StartSpan(ctx, "behaviorprofile.Repository.ListByInvestorIDs")
	defer span.End()

	if len(investorIDs) == 0 {
		return map[int64]models.BehaviorProfile{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "investor_id", "company_id", "axis_scores", "confidence", "behavior_metrics", "updated_at")
	sb.From("investor_behavior_profiles")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.In("investor_id", sqlbuilder.List(investorIDs)),
	)

	query, args := sb.Build()
	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list behavior profiles")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list behavior profiles")
	}

	profiles := make(map[int64]models.BehaviorProfile, len(rows))
	for _, row := range rows {
		profiles[row.InvestorID] = toProfile(row)
	}
	return profiles, nil
}
