// Package network exposes the access map: the whole graph, the rebuild
// trigger, and the orbit-view drill-down queries.
package network

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/internal/repositories/networkmap"
	"github.com/Ramsey-B/trellis/pkg/accessmap"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Register registers access map routes
func Register(g *echo.Group) {
	g.GET("/access-map", GetAccessMap)
	g.POST("/access-map/rebuild", RebuildAccessMap)
	g.GET("/network/investors", ListInvestorNodes)
	g.GET("/network/nodes/:nodeID/connections", GetNodeConnections)
}

// GetAccessMap returns the company's persisted access map. A company that has
// never been rebuilt gets one built on the spot, so the first read never
// returns an empty graph for a company with data.
func GetAccessMap(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.GetAccessMap")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	ctx, repo, err := ectoinject.GetContext[*networkmap.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	graph, err := repo.GetByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	if graph.Metrics.NodeCount == 0 {
		ctx, svc, err := ectoinject.GetContext[*accessmap.Service](ctx)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
		}
		graph, err = svc.Rebuild(ctx, companyID)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, graph)
}

// RebuildAccessMap rebuilds the company's access map from the current
// investors and connections, replacing the persisted graph atomically
func RebuildAccessMap(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.RebuildAccessMap")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	ctx, svc, err := ectoinject.GetContext[*accessmap.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	graph, err := svc.Rebuild(ctx, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, graph)
}

// ListInvestorNodes returns the investor nodes of the access map, the entry
// points for orbit navigation
func ListInvestorNodes(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.ListInvestorNodes")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	ctx, repo, err := ectoinject.GetContext[*networkmap.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	nodes, err := repo.ListInvestorNodes(ctx, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.SolarInvestorsResponse{Investors: nodes})
}

// GetNodeConnections returns one node with every adjacent node and edge
func GetNodeConnections(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.GetNodeConnections")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}
	nodeID, err := strconv.ParseInt(c.Param("nodeID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid node id")
	}

	ctx, repo, err := ectoinject.GetContext[*networkmap.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetNodeConnections(ctx, companyID, nodeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
