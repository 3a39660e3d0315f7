package relationship

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

// relationshipRow is the database row for one cached strength score. Both
// entity references are stored as their (type, id, key) columns.
type relationshipRow struct {
	ID                int64                    `db:"id"`
	CompanyID         int64                    `db:"company_id"`
	FromType          models.EntityKind        `db:"from_type"`
	FromID            *int64                   `db:"from_id"`
	FromKey           *string                  `db:"from_key"`
	ToType            models.EntityKind        `db:"to_type"`
	ToID              *int64                   `db:"to_id"`
	ToKey             *string                  `db:"to_key"`
	Strength          int                      `db:"relationship_strength"`
	StrengthFactors   database.JSONB[[]string] `db:"strength_factors"`
	LastInteractionTS *time.Time               `db:"last_interaction_ts"`
	UpdatedAt         time.Time                `db:"updated_at"`
}

func toRelationship(row relationshipRow) models.Relationship {
	return models.Relationship{
		ID:        row.ID,
		CompanyID: row.CompanyID,
		From: models.EntityRef{
			Kind:       row.FromType,
			InvestorID: row.FromID,
			Key:        row.FromKey,
		},
		To: models.EntityRef{
			Kind:       row.ToType,
			InvestorID: row.ToID,
			Key:        row.ToKey,
		},
		Strength:          row.Strength,
		StrengthFactors:   row.StrengthFactors.Data,
		LastInteractionTS: row.LastInteractionTS,
		UpdatedAt:         row.UpdatedAt,
	}
}

// Repository handles cached relationship strength rows
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new relationship repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert caches a computed strength for a pair, updating the existing row
// when the pair was scored before
func (r *Repository) Upsert(ctx context.Context, companyID int64, from, to models.EntityRef, result models.RelationshipResult) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Upsert")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Upsert",
		"company_id": companyID,
		"from":       from.String(),
		"to":         to.String(),
		"strength":   result.Strength,
	})

	existing, err := r.Get(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	factors := result.Factors
	if factors == nil {
		factors = []string{}
	}

	if existing != nil {
		ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		ub.Update("relationships")
		ub.Set(
			ub.Assign("relationship_strength", result.Strength),
			ub.Assign("strength_factors", database.JSONB[[]string]{Data: factors}),
			ub.Assign("last_interaction_ts", result.LastInteractionTS),
			ub.Assign("updated_at", now),
		)
		ub.Where(ub.Equal("id", existing.ID))

		query, args := ub.Build()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("Failed to update relationship")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to store relationship")
		}

		existing.Strength = result.Strength
		existing.StrengthFactors = factors
		existing.LastInteractionTS = result.LastInteractionTS
		existing.UpdatedAt = now
		return existing, nil
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("relationships")
	ib.Cols("company_id", "from_type", "from_id", "from_key", "to_type", "to_id", "to_key", "relationship_strength", "strength_factors", "last_interaction_ts", "updated_at")
	ib.Values(companyID, from.Kind, from.InvestorID, from.Key, to.Kind, to.InvestorID, to.Key, result.Strength, database.JSONB[[]string]{Data: factors}, result.LastInteractionTS, now)
	ib.Returning("id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to insert relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to store relationship")
	}

	log.Info("Cached relationship strength")
	return &models.Relationship{
		ID:                id,
		CompanyID:         companyID,
		From:              from,
		To:                to,
		Strength:          result.Strength,
		StrengthFactors:   factors,
		LastInteractionTS: result.LastInteractionTS,
		UpdatedAt:         now,
	}, nil
}

// Get returns the cached row for a pair, or nil when the pair has never
// been scored
func (r *Repository) Get(ctx context.Context, companyID int64, from, to models.EntityRef) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "from_type", "from_id", "from_key", "to_type", "to_id", "to_key", "relationship_strength", "strength_factors", "last_interaction_ts", "updated_at")
	sb.From("relationships")
	where := []string{
		sb.Equal("company_id", companyID),
		sb.Equal("from_type", from.Kind),
		sb.Equal("to_type", to.Kind),
	}
	where = append(where, refWhere(sb, "from_id", "from_key", from)...)
	where = append(where, refWhere(sb, "to_id", "to_key", to)...)
	sb.Where(where...)

	query, args := sb.Build()
	var row relationshipRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get relationship")
	}

	rel := toRelationship(row)
	return &rel, nil
}

// ListByCompany returns a company's cached relationships, strongest first
func (r *Repository) ListByCompany(ctx context.Context, companyID int64, limit int) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.ListByCompany")
	defer span.End()

	if limit < 1 || limit > 1000 {
		limit = 200
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "from_type", "from_id", "from_key", "to_type", "to_id", "to_key", "relationship_strength", "strength_factors", "last_interaction_ts", "updated_at")
	sb.From("relationships")
	sb.Where(sb.Equal("company_id", companyID))
	sb.OrderBy("relationship_strength DESC", "id ASC")
	sb.Limit(limit)

	query, args := sb.Build()
	var rows []relationshipRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list relationships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list relationships")
	}

	relationships := make([]models.Relationship, len(rows))
	for i, row := range rows {
		relationships[i] = toRelationship(row)
	}
	return relationships, nil
}

// refWhere builds the id-or-key condition for one side of the pair. The
// unset column must be NULL so investor:1 never matches candidate rows that
// happen to share a key.
func refWhere(sb *sqlbuilder.SelectBuilder, idCol, keyCol string, ref models.EntityRef) []string {
	where := []string{}
	if ref.InvestorID != nil {
		where = append(where, sb.Equal(idCol, *ref.InvestorID))
	} else {
		where = append(where, sb.IsNull(idCol))
	}
	if ref.Key != nil {
		where = append(where, sb.Equal(keyCol, *ref.Key))
	} else {
		where = append(where, sb.IsNull(keyCol))
	}
	return where
}
