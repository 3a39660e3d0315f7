package company

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/internal/repositories/company"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/pkg/cache"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

var validate = validator.New()

// Register registers company routes
func Register(g *echo.Group) {
	g.POST("", Create)
	g.GET("", List)
	g.GET("/:companyID", Get)
	g.POST("/:companyID/assign-investors", AssignInvestors)
}

// Create creates a new company
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.Create")
	defer span.End()

	var req models.CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*company.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// List returns companies, newest first
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, repo, err := ectoinject.GetContext[*company.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CompanyListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single company by id
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.Get")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	ctx, repo, err := ectoinject.GetContext[*company.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Get(ctx, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// AssignInvestorsRequest selects the investors to move into the company
type AssignInvestorsRequest struct {
	InvestorIDs []int64 `json:"investor_ids" validate:"required,min=1"`
}

// AssignInvestorsResponse reports how many investors were moved
type AssignInvestorsResponse struct {
	CompanyID  int64 `json:"company_id"`
	MovedCount int   `json:"moved_count"`
}

// AssignInvestors bulk-moves investors into the company. Investors already in
// the company count as moved; the update is idempotent.
func AssignInvestors(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.AssignInvestors")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	var req AssignInvestorsRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, companyRepo, err := ectoinject.GetContext[*company.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if _, err := companyRepo.Get(ctx, companyID); err != nil {
		return err
	}

	ctx, investorRepo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	moved, err := investorRepo.AssignToCompany(ctx, companyID, req.InvestorIDs)
	if err != nil {
		return err
	}

	// The moved investors change this company's feed inputs; their previous
	// companies' caches expire by TTL.
	ctx, feedCache, err := ectoinject.GetContext[*cache.FeedCache](ctx)
	if err == nil {
		feedCache.Invalidate(ctx, companyID)
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{
			"company_id":  companyID,
			"moved_count": moved,
		}).Info("Assigned investors to company")
	}

	return c.JSON(http.StatusOK, AssignInvestorsResponse{
		CompanyID:  companyID,
		MovedCount: moved,
	})
}
