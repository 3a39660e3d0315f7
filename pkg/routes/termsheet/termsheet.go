package termsheet

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/internal/repositories/termsheet"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/negotiation"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

var validate = validator.New()

// Register registers term sheet routes on the company group
func Register(g *echo.Group) {
	g.POST("/investors/:id/term-sheets", Create)
	g.GET("/investors/:id/term-sheets", List)
	g.GET("/investors/:id/clause-profile", ClauseProfile)
}

func pathIDs(c echo.Context) (companyID, investorID int64, err error) {
	companyID, err = strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return 0, 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}
	investorID, err = strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid investor id")
	}
	return companyID, investorID, nil
}

// Create records a new term sheet for the investor. The parsed terms document
// is stored as-is; clause extraction happens when the profile is read.
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "termsheet_handler.Create")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	var req models.CreateTermSheetRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, investorRepo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if _, err := investorRepo.GetForCompany(ctx, companyID, investorID); err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*termsheet.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, companyID, investorID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// List returns the investor's term sheets, newest first
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "termsheet_handler.List")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
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

	ctx, repo, err := ectoinject.GetContext[*termsheet.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.ListByInvestor(ctx, companyID, investorID, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TermSheetListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// ClauseProfile recomputes the investor's clause pattern from every stored
// term sheet and returns the refreshed row
func ClauseProfile(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "termsheet_handler.ClauseProfile")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*negotiation.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	pattern, err := svc.ClauseProfile(ctx, companyID, investorID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pattern)
}
