package investor

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/trellis/pkg/database"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// AddTags attaches tags to an investor. Blank tags are dropped and duplicates
// are ignored; the resulting full tag list is returned.
func (r *Repository) AddTags(ctx context.Context, companyID, investorID int64, tags []string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.AddTags")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "AddTags",
		"company_id":  companyID,
		"investor_id": investorID,
	})

	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) > 0 {
		sb := database.NewInsertBuilder()
		sb.InsertInto("investor_tags")
		sb.Cols("investor_id", "company_id", "tag")
		for _, tag := range cleaned {
			sb.Values(investorID, companyID, tag)
		}
		sb.OnConflictDoNothing()

		query, args := sb.Build()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("Failed to add investor tags")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to add tags")
		}
	}

	return r.ListTags(ctx, companyID, investorID)
}

// ListTags returns an investor's tags in insertion order
func (r *Repository) ListTags(ctx context.Context, companyID, investorID int64) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.ListTags")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("tag")
	sb.From("investor_tags")
	sb.Where(
		sb.Equal("investor_id", investorID),
		sb.Equal("company_id", companyID),
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	tags := []string{}
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list investor tags")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list tags")
	}

	return tags, nil
}

// RemoveTag detaches one tag from an investor
func (r *Repository) RemoveTag(ctx context.Context, companyID, investorID int64, tag string) error {
	ctx, span := tracing.StartSpan(ctx, "investor.Repository.RemoveTag")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("investor_tags")
	sb.Where(
		sb.Equal("investor_id", investorID),
		sb.Equal("company_id", companyID),
		sb.Equal("tag", tag),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to remove investor tag")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove tag")
	}

	return nil
}
