package scenario

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

// scenarioRow is the database row for one scenario definition
type scenarioRow struct {
	ID          int64               `db:"id"`
	CompanyID   int64               `db:"company_id"`
	Name        string              `db:"name"`
	Type        models.ScenarioType `db:"scenario_type"`
	Assumptions json.RawMessage     `db:"assumptions"`
	CreatedBy   *string             `db:"created_by"`
	CreatedAt   time.Time           `db:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at"`
}

func toScenario(row scenarioRow) models.Scenario {
	return models.Scenario{
		ID:          row.ID,
		CompanyID:   row.CompanyID,
		Name:        row.Name,
		Type:        row.Type,
		Assumptions: row.Assumptions,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// runRow is the database row for one immutable scenario run
type runRow struct {
	ID              int64                                 `db:"id"`
	ScenarioID      int64                                 `db:"scenario_id"`
	CompanyID       int64                                 `db:"company_id"`
	RunTS           time.Time                             `db:"run_ts"`
	Results         database.JSONB[models.ForecastResult] `db:"results"`
	ConfidenceScore float64                               `db:"confidence_score"`
	ModelVersion    string                                `db:"model_version"`
}

func toRun(row runRow) models.ScenarioRun {
	return models.ScenarioRun{
		ID:              row.ID,
		ScenarioID:      row.ScenarioID,
		CompanyID:       row.CompanyID,
		RunTS:           row.RunTS,
		Results:         row.Results.Data,
		ConfidenceScore: row.ConfidenceScore,
		ModelVersion:    row.ModelVersion,
	}
}

// Repository handles scenarios and their append-only run history
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new scenario repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a scenario definition under a company
func (r *Repository) Create(ctx context.Context, companyID int64, req models.CreateScenarioRequest) (*models.Scenario, error) {
	ctx, span := tracing.StartSpan(ctx, "scenario.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":        "Create",
		"company_id":    companyID,
		"scenario_type": req.Type,
	})

	assumptions := req.Assumptions
	if len(assumptions) == 0 {
		assumptions = json.RawMessage("{}")
	}
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("scenarios")
	sb.Cols("company_id", "name", "scenario_type", "assumptions", "created_by", "created_at", "updated_at")
	sb.Values(companyID, req.Name, req.Type, []byte(assumptions), req.CreatedBy, now, now)
	sb.Returning("id")

	query, args := sb.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to create scenario")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create scenario")
	}

	log.WithFields(map[string]any{"scenario_id": id}).Info("Created scenario")
	return &models.Scenario{
		ID:          id,
		CompanyID:   companyID,
		Name:        req.Name,
		Type:        req.Type,
		Assumptions: assumptions,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get retrieves a scenario by id, scoped to a company
func (r *Repository) Get(ctx context.Context, companyID, id int64) (*models.Scenario, error) {
	ctx, span := tracing.StartSpan(ctx, "scenario.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "name", "scenario_type", "assumptions", "created_by", "created_at", "updated_at")
	sb.From("scenarios")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("company_id", companyID),
	)

	query, args := sb.Build()
	var row scenarioRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("scenario %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get scenario")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get scenario")
	}

	scenario := toScenario(row)
	return &scenario, nil
}

// ListByCompany returns a company's scenarios, newest first
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]models.Scenario, error) {
	ctx, span := tracing.StartSpan(ctx, "scenario.Repository.ListByCompany")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "company_id", "name", "scenario_type", "assumptions", "created_by", "created_at", "updated_at")
	sb.From("scenarios")
	sb.Where(sb.Equal("company_id", companyID))
	sb.OrderBy("created_at DESC", "id DESC")

	query, args := sb.Build()
	var rows []scenarioRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list scenarios")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list scenarios")
	}

	scenarios := make([]models.Scenario, len(rows))
	for i, row := range rows {
		scenarios[i] = toScenario(row)
	}
	return scenarios, nil
}

// AddRun appends one forecast run to a scenario's history. Runs are never
// updated or deleted.
func (r *Repository) AddRun(ctx context.Context, companyID, scenarioID int64, results models.ForecastResult, confidence float64, modelVersion string) (*models.ScenarioRun, error) {
	ctx, span := tracing.StartSpan(ctx, "scenario.Repository.AddRun")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "AddRun",
		"company_id":  companyID,
		"scenario_id": scenarioID,
	})

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("scenario_runs")
	sb.Cols("scenario_id", "company_id", "run_ts", "results", "confidence_score", "model_version")
	sb.Values(scenarioID, companyID, now, database.JSONB[models.ForecastResult]{Data: results}, confidence, modelVersion)
	sb.Returning("id")

	query, args := sb.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		log.WithError(err).Error("Failed to record scenario run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to record scenario run")
	}

	log.WithFields(map[string]any{"run_id": id}).Info("Recorded scenario run")
	return &models.ScenarioRun{
		ID:              id,
		ScenarioID:      scenarioID,
		CompanyID:       companyID,
		RunTS:           now,
		Results:         results,
		ConfidenceScore: confidence,
		ModelVersion:    modelVersion,
	}, nil
}

// ListRuns returns a scenario's run history newest first with the total
// count for paging
func (r *Repository) ListRuns(ctx context.Context, companyID, scenarioID int64, page, pageSize int) ([]models.ScenarioRun, int, error) {
	ctx, span := tracing.StartSpan(ctx, "scenario.Repository.ListRuns")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("scenario_runs")
	countSb.Where(
		countSb.Equal("company_id", companyID),
		countSb.Equal("scenario_id", scenarioID),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count scenario runs")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count scenario runs")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "scenario_id", "company_id", "run_ts", "results", "confidence_score", "model_version")
	sb.From("scenario_runs")
	sb.Where(
		sb.Equal("company_id", companyID),
		sb.Equal("scenario_id", scenarioID),
	)
	sb.OrderBy("run_ts DESC", "id DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list scenario runs")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list scenario runs")
	}

	runs := make([]models.ScenarioRun, len(rows))
	for i, row := range rows {
		runs[i] = toRun(row)
	}
	return runs, totalCount, nil
}
