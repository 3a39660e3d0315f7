package termsheet

import (
	"context"
	"encoding/json"
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

// sheetRow is the database row for one term sheet
type sheetRow struct {
	ID          int64           `db:"id"`
	CompanyID   int64           `db:"company_id"`
	InvestorID  int64           `db:"investor_id"`
	RoundName   *string         `db:"round_name"`
	ReceivedTS  *time.Time      `db:"received_ts"`
	ParsedTerms json.RawMessage `db:"parsed_terms"`
	Source      *string         `db:"source"`
	Notes       *string         `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
}

func toTermSheet(row sheetRow) models.TermSheet {
	return models.TermSheet{
		ID:          row.ID,
		CompanyID:   row.CompanyID,
		InvestorID:  row.InvestorID,
		RoundName:   row.RoundName,
		ReceivedTS:  row.ReceivedTS,
		ParsedTerms: row.ParsedTerms,
		Source:      row.Source,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
	}
}

// patternRow is the database row for one stored clause pattern
type patternRow struct {
	ID                       int64                              `db:"id"`
	CompanyID                int64                              `db:"company_id"`
	InvestorID               int64                              `db:"investor_id"`
	ClauseStats              database.JSONB[models.ClauseStats] `db:"clause_stats"`
	FounderFriendlinessScore int                                `db:"founder_friendliness_score"`
	ControlRiskScore         int                                `db:"control_risk_score"`
	UpdatedAt                time.Time                          `db:"updated_at"`
}

func toPattern(row patternRow) models.InvestorClausePattern {
	return models.InvestorClausePattern{
		ID:                       row.ID,
		CompanyID:                row.CompanyID,
		InvestorID:               row.InvestorID,
		ClauseStats:              row.ClauseStats.Data,
		FounderFriendlinessScore: row.FounderFriendlinessScore,
		ControlRiskScore:         row.ControlRiskScore,
		UpdatedAt:                row.UpdatedAt,
	}
}

// Repository handles term sheets and the clause patterns aggregated from them
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new term sheet repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create records a term sheet for an investor. ParsedTerms is stored as
// received; clause extraction happens at aggregation time.
func (r *Repository) Create(ctx context.Context, companyID, investorID int64, req models.CreateTermSheetRequest) (*models.TermSheet, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "Create",
		"company_id":  companyID,
		"investor_id": investorID,
	})

	parsed := req.ParsedTerms
	if len(parsed) == 0 {
		parsed = json.RawMessage("{}")
	}
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("term_sheets")
	sb.Cols("company_id", "investor_id", "round_name", "received_ts", "parsed_terms", "source", "notes", "created_at")
	sb.Values(companyID, investorID, req.RoundName, req.ReceivedTS, []byte(parsed), req.Source, req.Notes, now)
	sb.Returning("id")

	query, args := sb.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to create term sheet")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create term sheet")
	}

	log.WithFields(map[string]any{"term_sheet_id": id}).Info("Recorded term sheet")
	return &models.TermSheet{
		ID:          id,
		CompanyID:   companyID,
		InvestorID:  investorID,
		RoundName:   req.RoundName,
		ReceivedTS:  req.ReceivedTS,
		ParsedTerms: parsed,
		Source:      req.Source,
		Notes:       req.Notes,
		CreatedAt:   now,
	}, nil
}

// Get retrieves a term sheet by id, scoped to a company
func (r *Repository) Get(ctx context.Context, companyID, id int64) (*models.TermSheet, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "investor_id", "round_name", "received_ts", "parsed_terms", "source", "notes", "created_at")
	sb.From("term_sheets")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("company_id", companyID),
	)

	query, args := sb.Build()
	var row sheetRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("term sheet %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get term sheet")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get term sheet")
	}

	sheet := toTermSheet(row)
	return &sheet, nil
}

// ListByInvestor returns an investor's term sheets newest first with the
// total count for paging
func (r *Repository) ListByInvestor(ctx context.Context, companyID, investorID int64, page, pageSize int) ([]models.TermSheet, int, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.ListByInvestor")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("term_sheets")
	countSb.Where(
		countSb.Equal("company_id", companyID),
		countSb.Equal("investor_id", investorID),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count term sheets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count term sheets")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "investor_id", "round_name", "received_ts", "parsed_terms", "source", "notes", "created_at")
	sb.From("term_sheets")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.Equal("investor_id", investorID),
	)
	sb.OrderBy("received_ts DESC NULLS LAST", "id DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var rows []sheetRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list term sheets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list term sheets")
	}

	sheets := make([]models.TermSheet, len(rows))
	for i, row := range rows {
		sheets[i] = toTermSheet(row)
	}
	return sheets, totalCount, nil
}

// ListAllByInvestor returns every term sheet for an investor oldest first.
// The negotiation engine aggregates over these, so no paging.
func (r *Repository) ListAllByInvestor(ctx context.Context, companyID, investorID int64) ([]models.TermSheet, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.ListAllByInvestor")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "investor_id", "round_name", "received_ts", "parsed_terms", "source", "notes", "created_at")
	sb.From("term_sheets")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.Equal("investor_id", investorID),
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var rows []sheetRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load term sheets")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load term sheets")
	}

	sheets := make([]models.TermSheet, len(rows))
	for i, row := range rows {
		sheets[i] = toTermSheet(row)
	}
	return sheets, nil
}

// CountByInvestorIDs returns term sheet counts keyed by investor id.
// Investors without sheets are absent from the map.
func (r *Repository) CountByInvestorIDs(ctx context.Context, companyID int64, investorIDs []int64) (map[int64]int, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.CountByInvestorIDs")
	defer span.End()

	if len(investorIDs) == 0 {
		return map[int64]int{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("investor_id", "COUNT(*) AS sheet_count")
	sb.From("term_sheets")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.In("investor_id", sqlbuilder.List(investorIDs)),
	)
	sb.GroupBy("investor_id")

	query, args := sb.Build()
	var rows []struct {
		InvestorID int64 `db:"investor_id"`
		SheetCount int   `db:"sheet_count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count term sheets by investor")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count term sheets")
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.InvestorID] = row.SheetCount
	}
	return counts, nil
}

// UpsertClausePattern stores the aggregated clause profile for
// (company, investor), keyed on the table's unique pair constraint
func (r *Repository) UpsertClausePattern(ctx context.Context, companyID, investorID int64, profile models.ClauseProfile) (*models.InvestorClausePattern, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.UpsertClausePattern")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "UpsertClausePattern",
		"company_id":  companyID,
		"investor_id": investorID,
	})

	now := time.Now().UTC()

	ib := database.NewInsertBuilder()
	ib.InsertInto("investor_clause_patterns")
	ib.Cols("company_id", "investor_id", "clause_stats", "founder_friendliness_score", "control_risk_score", "updated_at")
	ib.Values(
		companyID,
		investorID,
		database.JSONB[models.ClauseStats]{Data: profile.ClauseStats},
		profile.FounderFriendlinessScore,
		profile.ControlRiskScore,
		now,
	)
	ub := ib.OnConflict("company_id", "investor_id")
	ub.Set(
		ub.Assign("clause_stats", database.Excluded("clause_stats")),
		ub.Assign("founder_friendliness_score", database.Excluded("founder_friendliness_score")),
		ub.Assign("control_risk_score", database.Excluded("control_risk_score")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
	)
	ib.Returning("id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to upsert clause pattern")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to store clause pattern")
	}

	log.Info("Stored clause pattern")
	return &models.InvestorClausePattern{
		ID:                       id,
		CompanyID:                companyID,
		InvestorID:               investorID,
		ClauseStats:              profile.ClauseStats,
		FounderFriendlinessScore: profile.FounderFriendlinessScore,
		ControlRiskScore:         profile.ControlRiskScore,
		UpdatedAt:                now,
	}, nil
}

// GetClausePattern returns the stored clause pattern for (company, investor),
// or nil when none has been aggregated yet
func (r *Repository) GetClausePattern(ctx context.Context, companyID, investorID int64) (*models.InvestorClausePattern, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.GetClausePattern")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "investor_id", "clause_stats", "founder_friendliness_score", "control_risk_score", "updated_at")
	sb.From("investor_clause_patterns")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.Equal("investor_id", investorID),
	)

	query, args := sb.Build()
	var row patternRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get clause pattern")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get clause pattern")
	}

	pattern := toPattern(row)
	return &pattern, nil
}

// ListClausePatternsByInvestorIDs returns stored clause patterns keyed by
// investor id. Investors without a pattern are absent from the map.
func (r *Repository) ListClausePatternsByInvestorIDs(ctx context.Context, companyID int64, investorIDs []int64) (map[int64]models.InvestorClausePattern, error) {
	ctx, span := tracing.StartSpan(ctx, "termsheet.Repository.ListClausePatternsByInvestorIDs")
	defer span.End()

	if len(investorIDs) == 0 {
		return map[int64]models.InvestorClausePattern{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "investor_id", "clause_stats", "founder_friendliness_score", "control_risk_score", "updated_at")
	sb.From("investor_clause_patterns")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.In("investor_id", sqlbuilder.List(investorIDs)),
	)

	query, args := sb.Build()
	var rows []patternRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list clause patterns")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list clause patterns")
	}

	patterns := make(map[int64]models.InvestorClausePattern, len(rows))
	for _, row := range rows {
		patterns[row.InvestorID] = toPattern(row)
	}
	return patterns, nil
}
