package connection

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

// insertBatchSize caps rows per INSERT when replacing an orbit
const insertBatchSize = 500

// Repository handles connection persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new connection repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListByInvestor retrieves an investor's connections, oldest import first
func (r *Repository) ListByInvestor(ctx context.Context, investorID int64, page, pageSize int) ([]models.Connection, int, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.ListByInvestor")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("connections")
	countSb.Where(
		countSb.Equal("investor_id", investorID),
		countSb.IsNull("deleted_at"),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count connections")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count connections")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "investor_id", "first_name", "last_name", "full_name", "company", "position", "location", "linkedin_url", "connected_on", "created_at", "deleted_at")
	sb.From("connections")
	sb.Where(
		sb.Equal("investor_id", investorID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("id ASC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var connections []models.Connection
	if err := r.db.SelectContext(ctx, &connections, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list connections")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list connections")
	}

	return connections, totalCount, nil
}

// ListAllByInvestor retrieves every live connection of one investor in import order
func (r *Repository) ListAllByInvestor(ctx context.Context, investorID int64) ([]models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.ListAllByInvestor")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "investor_id", "first_name", "last_name", "full_name", "company", "position", "location", "linkedin_url", "connected_on", "created_at", "deleted_at")
	sb.From("connections")
	sb.Where(
		sb.Equal("investor_id", investorID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var connections []models.Connection
	if err := r.db.SelectContext(ctx, &connections, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list connections")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list connections")
	}

	return connections, nil
}

// ListByCompany retrieves every live connection across a company's investors,
// grouped by investor in import order. Engines consume this as a whole.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.ListByCompany")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("c.id", "c.investor_id", "c.first_name", "c.last_name", "c.full_name", "c.company", "c.position", "c.location", "c.linkedin_url", "c.connected_on", "c.created_at", "c.deleted_at")
	sb.From("connections c")
	sb.JoinWithOption(sqlbuilder.InnerJoin, "investors i", "i.id = c.investor_id")
	sb.Where(
		sb.Equal("i.company_id", companyID),
		sb.IsNull("i.deleted_at"),
		sb.IsNull("c.deleted_at"),
	)
	sb.OrderBy("c.investor_id ASC", "c.id ASC")

	query, args := sb.Build()
	var connections []models.Connection
	if err := r.db.SelectContext(ctx, &connections, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list company connections")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list connections")
	}

	return connections, nil
}

// CountByCompany counts live connections across a company's investors
func (r *Repository) CountByCompany(ctx context.Context, companyID int64) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.CountByCompany")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("connections c")
	sb.JoinWithOption(sqlbuilder.InnerJoin, "investors i", "i.id = c.investor_id")
	sb.Where(
		sb.Equal("i.company_id", companyID),
		sb.IsNull("i.deleted_at"),
		sb.IsNull("c.deleted_at"),
	)

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count company connections")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count connections")
	}

	return count, nil
}

// ReplaceForInvestor swaps an investor's connections for the given rows in
// one transaction: hard-delete existing rows, insert the new ones, bump the
// investor's updated_at. Re-uploading the same export stays idempotent.
func (r *Repository) ReplaceForInvestor(ctx context.Context, investorID int64, requests []models.CreateConnectionRequest) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.ReplaceForInvestor")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "ReplaceForInvestor",
		"investor_id": investorID,
		"rows":        len(requests),
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("connections")
	sb.Where(sb.Equal("investor_id", investorID))

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to delete existing connections")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace connections")
	}

	now := time.Now().UTC()
	inserted := 0
	for i := 0; i < len(requests); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(requests) {
			end = len(requests)
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("connections")
		sb.Cols("investor_id", "first_name", "last_name", "full_name", "company", "position", "location", "linkedin_url", "connected_on", "created_at")
		for _, req := range requests[i:end] {
			sb.Values(investorID, req.FirstName, req.LastName, req.FullName, req.Company, req.Position, req.Location, req.LinkedinURL, req.ConnectedOn, now)
		}

		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("Failed to insert connections")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace connections")
		}
		inserted += end - i
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("investors")
	ub.Set(ub.Assign("updated_at", now))
	ub.Where(ub.Equal("id", investorID))

	query, args = ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to bump investor updated_at")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace connections")
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit connection replace")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace connections")
	}

	log.WithFields(map[string]any{"inserted": inserted}).Info("Replaced investor connections")
	return inserted, nil
}

// ClearForInvestor removes every connection of an investor and bumps the
// investor's updated_at, in one transaction
func (r *Repository) ClearForInvestor(ctx context.Context, investorID int64) error {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.ClearForInvestor")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("connections")
	sb.Where(sb.Equal("investor_id", investorID))

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to clear connections")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear connections")
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("investors")
	ub.Set(ub.Assign("updated_at", time.Now().UTC()))
	ub.Where(ub.Equal("id", investorID))

	query, args = ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to bump investor updated_at")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear connections")
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit connection clear")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear connections")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"investor_id": investorID}).Info("Cleared investor connections")
	return nil
}
