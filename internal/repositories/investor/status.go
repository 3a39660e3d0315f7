package investor

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// statusRow is the database row for one status audit entry. The entity
// reference is stored as its (type, id, key) columns.
type statusRow struct {
	ID         int64                 `db:"id"`
	CompanyID  int64                 `db:"company_id"`
	EntityType models.EntityKind     `db:"entity_type"`
	EntityID   *int64                `db:"entity_id"`
	EntityKey  *string               `db:"entity_key"`
	Status     models.InvestorStatus `db:"status"`
	TS         time.Time             `db:"ts"`
	ByUser     *string               `db:"by_user"`
}

func toStatusChange(row statusRow) models.InvestorStatusChange {
	return models.InvestorStatusChange{
		ID:        row.ID,
		CompanyID: row.CompanyID,
		Entity: models.EntityRef{
			Kind:       row.EntityType,
			InvestorID: row.EntityID,
			Key:        row.EntityKey,
		},
		Status:    row.Status,
		Timestamp: row.TS,
		ByUser:    row.ByUser,
	}
}

// AddStatus appends a status change to the audit trail
func (r *Repository) AddStatus(ctx context.Context, companyID int64, entity models.EntityRef, status models.InvestorStatus, byUser *string) (*models.InvestorStatusChange, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.AddStatus")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "AddStatus",
		"company_id": companyID,
		"entity":     entity.String(),
		"status":     status,
	})

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("investor_status_history")
	sb.Cols("company_id", "entity_type", "entity_id", "entity_key", "status", "ts", "by_user")
	sb.Values(companyID, entity.Kind, entity.InvestorID, entity.Key, status, now, byUser)
	sb.Returning("id")

	query, args := sb.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to add status change")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to record status change")
	}

	log.Info("Recorded status change")
	return &models.InvestorStatusChange{
		ID:        id,
		CompanyID: companyID,
		Entity:    entity,
		Status:    status,
		Timestamp: now,
		ByUser:    byUser,
	}, nil
}

// StatusHistory returns the audit trail for an entity, newest first
func (r *Repository) StatusHistory(ctx context.Context, companyID int64, entity models.EntityRef, limit int) ([]models.InvestorStatusChange, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.StatusHistory")
	defer span.End()

	if limit < 1 || limit > 200 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "entity_type", "entity_id", "entity_key", "status", "ts", "by_user")
	sb.From("investor_status_history")
	where := []string{
		sb.Equal("company_id", companyID),
		sb.Equal("entity_type", entity.Kind),
	}
	if entity.InvestorID != nil {
		where = append(where, sb.Equal("entity_id", *entity.InvestorID))
	}
	if entity.Key != nil {
		where = append(where, sb.Equal("entity_key", *entity.Key))
	}
	sb.Where(where...)
	sb.OrderBy("ts DESC", "id DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var rows []statusRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list status history")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list status history")
	}

	changes := make([]models.InvestorStatusChange, len(rows))
	for i, row := range rows {
		changes[i] = toStatusChange(row)
	}
	return changes, nil
}

// CurrentStatus returns the latest status for an entity, or nil when no
// status has been recorded
func (r *Repository) CurrentStatus(ctx context.Context, companyID int64, entity models.EntityRef) (*models.InvestorStatus, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.CurrentStatus")
	defer span.End()

	history, err := r.StatusHistory(ctx, companyID, entity, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0].Status, nil
}
