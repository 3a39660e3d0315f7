package suggested

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/suggested"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Register registers suggested-investor feed routes
func Register(g *echo.Group) {
	g.GET("", Feed)
	g.POST("/refresh", Refresh)
}

// Feed returns the company's suggested-investor feed with the request's
// filters, sort, and topN applied
func Feed(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "suggested_handler.Feed")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	query := parseFeedQuery(c)

	ctx, svc, err := ectoinject.GetContext[*suggested.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	feed, err := svc.Feed(ctx, companyID, query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, feed)
}

// Refresh recomputes the feed from scratch, replacing the cached copy. The
// response is the full unfiltered feed.
func Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "suggested_handler.Refresh")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	ctx, svc, err := ectoinject.GetContext[*suggested.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	feed, err := svc.Refresh(ctx, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, feed)
}

// parseFeedQuery reads the feed query parameters. An absent or unparseable
// topN stays 0 so the service applies its default; parsed values get a floor
// of 1 and the service caps the top end.
func parseFeedQuery(c echo.Context) models.FeedQuery {
	query := models.FeedQuery{
		Sort:         c.QueryParam("sort"),
		Industry:     strings.TrimSpace(c.QueryParam("industry")),
		Location:     strings.TrimSpace(c.QueryParam("location")),
		FirmType:     strings.TrimSpace(c.QueryParam("firm_type")),
		TitlePattern: strings.TrimSpace(c.QueryParam("title_pattern")),
	}

	if raw := c.QueryParam("topN"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			if n < 1 {
				n = 1
			}
			query.TopN = n
		}
	}

	return query
}
