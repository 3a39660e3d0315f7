package nli

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/pkg/nli"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Register registers network liquidity index routes on the company group
func Register(g *echo.Group) {
	g.POST("/nli/compute", Compute)
	g.GET("/nli/history", History)
}

// Compute builds the company's NLI snapshot for the requested month. The month
// query parameter is YYYY-MM; when absent the current month is computed.
func Compute(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "nli_handler.Compute")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	month := time.Now().UTC()
	if raw := c.QueryParam("month"); raw != "" {
		month, err = time.Parse("2006-01", raw)
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid month, expected YYYY-MM")
		}
	}

	ctx, svc, err := ectoinject.GetContext[*nli.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	snapshot, err := svc.Compute(ctx, companyID, month)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snapshot)
}

// History returns the company's recent monthly snapshots, newest first
func History(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "nli_handler.History")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, svc, err := ectoinject.GetContext[*nli.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	history, err := svc.History(ctx, companyID, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, history)
}
