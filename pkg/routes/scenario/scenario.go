package scenario

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/internal/repositories/scenario"
	"github.com/Ramsey-B/trellis/pkg/forecast"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

var validate = validator.New()

// Register registers scenario routes on the company group
func Register(g *echo.Group) {
	g.POST("/scenarios", Create)
	g.GET("/scenarios", List)
	g.POST("/scenarios/:id/run", Run)
	g.GET("/scenarios/:id/runs", ListRuns)
}

func pathIDs(c echo.Context) (companyID, scenarioID int64, err error) {
	companyID, err = strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return 0, 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}
	scenarioID, err = strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid scenario id")
	}
	return companyID, scenarioID, nil
}

// Create defines a new scenario for the company
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "scenario_handler.Create")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	var req models.CreateScenarioRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !req.Type.IsValid() {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid scenario type")
	}

	ctx, repo, err := ectoinject.GetContext[*scenario.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, companyID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// List returns every scenario defined for the company
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "scenario_handler.List")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	ctx, repo, err := ectoinject.GetContext[*scenario.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	scenarios, err := repo.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, scenarios)
}

// Run executes the scenario against the company's current investors and
// persists the run
func Run(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "scenario_handler.Run")
	defer span.End()

	companyID, scenarioID, err := pathIDs(c)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*forecast.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	run, err := svc.Run(ctx, companyID, scenarioID)
	if err != nil {
		return err
	}

	ctx, logger, err := ectoinject.GetContext[ectologger.Logger](ctx)
	if err == nil && logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{
			"companyID":  companyID,
			"scenarioID": scenarioID,
			"runID":      run.ID,
		}).Info("Ran scenario forecast")
	}

	return c.JSON(http.StatusOK, run)
}

// ListRuns returns the scenario's past runs, newest first
func ListRuns(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "scenario_handler.ListRuns")
	defer span.End()

	companyID, scenarioID, err := pathIDs(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, repo, err := ectoinject.GetContext[*scenario.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.ListRuns(ctx, companyID, scenarioID, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ScenarioRunListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}
