package investor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Repository handles investor persistence, including the status audit trail
// and tags
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new investor repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new investor under a company
func (r *Repository) Create(ctx context.Context, companyID int64, req models.CreateInvestorRequest) (*models.Investor, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Create",
		"company_id": companyID,
		"full_name":  req.FullName,
	})

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("investors")
	sb.Cols("company_id", "full_name", "email", "phone", "location", "industry", "firm", "title", "linkedin_url", "notes", "created_at", "updated_at")
	sb.Values(companyID, req.FullName, req.Email, req.Phone, req.Location, req.Industry, req.Firm, req.Title, req.LinkedinURL, req.Notes, now, now)
	sb.Returning("id")

	query, args := sb.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to create investor")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create investor")
	}

	log.WithFields(map[string]any{"investor_id": id}).Info("Created investor")
	return &models.Investor{
		ID:          id,
		CompanyID:   companyID,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Location:    req.Location,
		Industry:    req.Industry,
		Firm:        req.Firm,
		Title:       req.Title,
		LinkedinURL: req.LinkedinURL,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get retrieves an investor by id
func (r *Repository) Get(ctx context.Context, id int64) (*models.Investor, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "full_name", "email", "phone", "location", "industry", "firm", "title", "linkedin_url", "notes", "created_at", "updated_at", "deleted_at")
	sb.From("investors")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var investor models.Investor
	if err := r.db.GetContext(ctx, &investor, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("investor %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get investor")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get investor")
	}

	return &investor, nil
}

// GetForCompany retrieves an investor by id, scoped to a company
func (r *Repository) GetForCompany(ctx context.Context, companyID, id int64) (*models.Investor, error) {
	investor, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if investor.CompanyID != companyID {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("investor %d not found", id))
	}
	return investor, nil
}

// ListByCompany retrieves investors for a company, newest first
func (r *Repository) ListByCompany(ctx context.Context, companyID int64, page, pageSize int) ([]models.Investor, int, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.ListByCompany")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("investors")
	countSb.Where(
		countSb.Equal("company_id", companyID),
		countSb.IsNull("deleted_at"),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count investors")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count investors")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "full_name", "email", "phone", "location", "industry", "firm", "title", "linkedin_url", "notes", "created_at", "updated_at", "deleted_at")
	sb.From("investors")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at DESC", "id DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var investors []models.Investor
	if err := r.db.SelectContext(ctx, &investors, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list investors")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list investors")
	}

	return investors, totalCount, nil
}

// ListAllByCompany retrieves every live investor for a company in id order.
// Engines iterate this, so no paging.
func (r *Repository) ListAllByCompany(ctx context.Context, companyID int64) ([]models.Investor, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.ListAllByCompany")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "full_name", "email", "phone", "location", "industry", "firm", "title", "linkedin_url", "notes", "created_at", "updated_at", "deleted_at")
	sb.From("investors")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var investors []models.Investor
	if err := r.db.SelectContext(ctx, &investors, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list investors")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list investors")
	}

	return investors, nil
}

// ListByIDs retrieves investors by id, scoped to a company, in id order
func (r *Repository) ListByIDs(ctx context.Context, companyID int64, ids []int64) ([]models.Investor, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.ListByIDs")
	defer span.End()

	if len(ids) == 0 {
		return []models.Investor{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "full_name", "email", "phone", "location", "industry", "firm", "title", "linkedin_url", "notes", "created_at", "updated_at", "deleted_at")
	sb.From("investors")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.In("id", sqlbuilder.List(ids)),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var investors []models.Investor
	if err := r.db.SelectContext(ctx, &investors, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list investors by ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list investors")
	}

	return investors, nil
}

// Update updates an investor
func (r *Repository) Update(ctx context.Context, companyID, id int64, req models.UpdateInvestorRequest) (*models.Investor, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.Update")
	defer span.End()

	existing, err := r.GetForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		existing.FullName = *req.FullName
	}
	if req.Email != nil {
		existing.Email = req.Email
	}
	if req.Phone != nil {
		existing.Phone = req.Phone
	}
	if req.Location != nil {
		existing.Location = req.Location
	}
	if req.Industry != nil {
		existing.Industry = req.Industry
	}
	if req.Firm != nil {
		existing.Firm = req.Firm
	}
	if req.Title != nil {
		existing.Title = req.Title
	}
	if req.LinkedinURL != nil {
		existing.LinkedinURL = req.LinkedinURL
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	existing.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("investors")
	sb.Set(
		sb.Assign("full_name", existing.FullName),
		sb.Assign("email", existing.Email),
		sb.Assign("phone", existing.Phone),
		sb.Assign("location", existing.Location),
		sb.Assign("industry", existing.Industry),
		sb.Assign("firm", existing.Firm),
		sb.Assign("title", existing.Title),
		sb.Assign("linkedin_url", existing.LinkedinURL),
		sb.Assign("notes", existing.Notes),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("company_id", companyID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update investor")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update investor")
	}

	return existing, nil
}

// Delete soft deletes an investor
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("investors")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("company_id", companyID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete investor")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete investor")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("investor %d not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"investor_id": id, "company_id": companyID}).Info("Deleted investor")
	return nil
}

// AssignToCompany moves investors to a company. Missing or deleted ids are
// ignored; the count of moved rows is returned.
func (r *Repository) AssignToCompany(ctx context.Context, companyID int64, investorIDs []int64) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.AssignToCompany")
	defer span.End()

	if len(investorIDs) == 0 {
		return 0, nil
	}

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("investors")
	sb.Set(
		sb.Assign("company_id", companyID),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.In("id", sqlbuilder.List(investorIDs)),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to assign investors to company")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to assign investors")
	}

	rows, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id": companyID,
		"moved":      rows,
	}).Info("Assigned investors to company")
	return int(rows), nil
}

// Touch bumps an investor's updated_at. Orbit uploads and clears call this so
// feed caches can key off investor freshness.
func (r *Repository) Touch(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.Touch")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("investors")
	sb.Set(sb.Assign("updated_at", time.Now().UTC()))
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to touch investor")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update investor")
	}
	return nil
}
