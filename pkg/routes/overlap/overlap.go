package overlap

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/internal/repositories/company"
	"github.com/Ramsey-B/trellis/internal/repositories/connection"
	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/overlap"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Register registers overlap intelligence routes
func Register(g *echo.Group) {
	g.GET("", GetIntelligence)
	g.GET("/matrix", GetMatrix)
}

// GetIntelligence returns the company-wide overlap report
func GetIntelligence(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "overlap_handler.GetIntelligence")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	investors, connections, err := loadNetwork(ctx, companyID)
	if err != nil {
		return err
	}

	_, engine, err := ectoinject.GetContext[*overlap.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get engine")
	}

	return c.JSON(http.StatusOK, engine.ComputeIntelligence(investors, connections))
}

// GetMatrix returns the investor-by-investor overlap matrix
func GetMatrix(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "overlap_handler.GetMatrix")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	investors, connections, err := loadNetwork(ctx, companyID)
	if err != nil {
		return err
	}

	_, engine, err := ectoinject.GetContext[*overlap.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get engine")
	}

	return c.JSON(http.StatusOK, engine.ComputeMatrix(investors, connections))
}

// loadNetwork gates on company existence and loads the overlap inputs
func loadNetwork(ctx context.Context, companyID int64) ([]models.Investor, []models.Connection, error) {
	ctx, companyRepo, err := ectoinject.GetContext[*company.Repository](ctx)
	if err != nil {
		return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	if _, err := companyRepo.Get(ctx, companyID); err != nil {
		return nil, nil, err
	}

	ctx, investorRepo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	investors, err := investorRepo.ListAllByCompany(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	ctx, connectionRepo, err := ectoinject.GetContext[*connection.Repository](ctx)
	if err != nil {
		return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	connections, err := connectionRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	return investors, connections, nil
}
