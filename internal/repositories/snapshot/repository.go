package snapshot

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

// snapshotRow is the database row for one monthly NLI snapshot
type snapshotRow struct {
	ID            int64                             `db:"id"`
	CompanyID     int64                             `db:"company_id"`
	SnapshotMonth time.Time                         `db:"snapshot_month"`
	Metrics       database.JSONB[models.NLIMetrics] `db:"metrics"`
	CreatedAt     time.Time                         `db:"created_at"`
}

func toSnapshot(row snapshotRow) models.NetworkSnapshot {
	return models.NetworkSnapshot{
		ID:            row.ID,
		CompanyID:     row.CompanyID,
		SnapshotMonth: row.SnapshotMonth.Format("2006-01-02"),
		Metrics:       row.Metrics.Data,
		CreatedAt:     row.CreatedAt,
	}
}

// Repository handles monthly network snapshots
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores the metrics for (company, month). Recomputes within the same
// month overwrite the earlier row, keyed on the unique pair constraint.
func (r *Repository) Upsert(ctx context.Context, companyID int64, month time.Time, metrics models.NLIMetrics) (*models.NetworkSnapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "snapshot.Repository.Upsert")
	defer span.End()

	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Upsert",
		"company_id": companyID,
		"month":      monthStart.Format("2006-01-02"),
	})

	now := time.Now().UTC()

	ib := database.NewInsertBuilder()
	ib.InsertInto("network_snapshots")
	ib.Cols("company_id", "snapshot_month", "metrics", "created_at")
	ib.Values(companyID, monthStart, database.JSONB[models.NLIMetrics]{Data: metrics}, now)
	ub := ib.OnConflict("company_id", "snapshot_month")
	ub.Set(ub.Assign("metrics", database.Excluded("metrics")))
	ib.Returning("id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to upsert network snapshot")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to store network snapshot")
	}

	log.Info("Stored network snapshot")
	return &models.NetworkSnapshot{
		ID:            id,
		CompanyID:     companyID,
		SnapshotMonth: monthStart.Format("2006-01-02"),
		Metrics:       metrics,
		CreatedAt:     now,
	}, nil
}

// History returns up to limit snapshots for a company, newest month first
func (r *Repository) History(ctx context.Context, companyID int64, limit int) ([]models.NetworkSnapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "snapshot.Repository.History")
	defer span.End()

	if limit < 1 || limit > 60 {
		limit = 12
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "snapshot_month", "metrics", "created_at")
	sb.From("network_snapshots")
	sb.Where(sb.Equal("company_id", companyID))
	sb.OrderBy("snapshot_month DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list network snapshots")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list network snapshots")
	}

	snapshots := make([]models.NetworkSnapshot, len(rows))
	for i, row := range rows {
		snapshots[i] = toSnapshot(row)
	}
	return snapshots, nil
}
