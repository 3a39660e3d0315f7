package behavior

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/pkg/behavior"
	"github.com/Ramsey-B/trellis/pkg/negotiation"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Register registers behavior profile routes on the company group
func Register(g *echo.Group) {
	g.GET("/investors/:id/behavior", Profile)
	g.GET("/behavior/compare", Compare)
}

// Profile recomputes and returns the investor's behavior profile
func Profile(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "behavior_handler.Profile")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}
	investorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid investor id")
	}

	ctx, svc, err := ectoinject.GetContext[*behavior.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	profile, err := svc.Profile(ctx, companyID, investorID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// Compare returns a side-by-side behavior and negotiation comparison for the
// investors named in the investor_ids query parameter
func Compare(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "behavior_handler.Compare")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	investorIDs, err := parseInvestorIDs(c.QueryParam("investor_ids"))
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*negotiation.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	comparisons, err := svc.CompareInvestors(ctx, companyID, investorIDs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, comparisons)
}

// parseInvestorIDs parses a comma-separated id list. Blank segments are
// skipped; a malformed id fails the whole request.
func parseInvestorIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "investor_ids query parameter is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "invalid investor id: "+part)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "investor_ids query parameter is required")
	}
	return ids, nil
}
