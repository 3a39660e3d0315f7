// Package investor exposes the investor CRUD surface plus the sub-resources
// that hang off a single investor: pipeline status, tags, interactions, and
// the orbit (imported connections).
package investor

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/internal/repositories/investor"
	"github.com/Ramsey-B/trellis/pkg/appcontext"
	"github.com/Ramsey-B/trellis/pkg/cache"
	"github.com/Ramsey-B/trellis/pkg/interactions"
	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/orbit"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

var validate = validator.New()

// Register registers investor routes
func Register(g *echo.Group) {
	g.POST("", Create)
	g.GET("", List)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
	g.POST("/:id/status", SetStatus)
	g.POST("/:id/tags", AddTag)
	g.POST("/:id/interactions", RecordInteraction)
	g.GET("/:id/interactions", ListInteractions)
	g.POST("/:id/orbit", UploadOrbit)
	g.DELETE("/:id/orbit", ClearOrbit)
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

// Create creates a new investor in the company
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.Create")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	var req models.CreateInvestorRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, companyID, req)
	if err != nil {
		return err
	}

	invalidateFeed(ctx, companyID)
	return c.JSON(http.StatusCreated, created)
}

// List returns the company's investors
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.List")
	defer span.End()

	companyID, err := strconv.ParseInt(c.Param("companyID"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.ListByCompany(ctx, companyID, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.InvestorListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single investor
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.Get")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetForCompany(ctx, companyID, investorID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Update updates an investor's fields
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.Update")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	var req models.UpdateInvestorRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	updated, err := repo.Update(ctx, companyID, investorID, req)
	if err != nil {
		return err
	}

	invalidateFeed(ctx, companyID)
	return c.JSON(http.StatusOK, updated)
}

// Delete soft deletes an investor
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.Delete")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, companyID, investorID); err != nil {
		return err
	}

	invalidateFeed(ctx, companyID)
	return c.NoContent(http.StatusNoContent)
}

// SetStatus appends a pipeline status change for the investor
func SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.SetStatus")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	var req models.UpdateInvestorStatusRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Status.IsValid() {
		return httperror.NewHTTPError(http.StatusBadRequest, "unknown status: "+string(req.Status))
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if _, err := repo.GetForCompany(ctx, companyID, investorID); err != nil {
		return err
	}

	byUser := req.ByUser
	if byUser == nil {
		if userID := appcontext.GetUserID(ctx); userID != "" {
			byUser = &userID
		}
	}

	change, err := repo.AddStatus(ctx, companyID, models.InvestorRef(investorID), req.Status, byUser)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, change)
}

// TagsResponse is the investor's full tag list after a change
type TagsResponse struct {
	InvestorID int64    `json:"investor_id"`
	Tags       []string `json:"tags"`
}

// AddTag attaches a tag to the investor and returns the full tag list
func AddTag(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.AddTag")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	var req models.AddInvestorTagRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if _, err := repo.GetForCompany(ctx, companyID, investorID); err != nil {
		return err
	}

	tags, err := repo.AddTags(ctx, companyID, investorID, []string{req.Tag})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TagsResponse{
		InvestorID: investorID,
		Tags:       tags,
	})
}

// RecordInteractionRequest logs an interaction against this investor. The
// entity is implied by the path, so callers only send the event itself.
type RecordInteractionRequest struct {
	EventType models.InteractionEventType `json:"event_type" validate:"required"`
	EventTS   *time.Time                  `json:"event_ts,omitempty"`
	Meta      map[string]any              `json:"meta,omitempty"`
}

// RecordInteraction appends an interaction event for the investor
func RecordInteraction(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.RecordInteraction")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	var req RecordInteractionRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*investor.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if _, err := repo.GetForCompany(ctx, companyID, investorID); err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*interactions.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	created, err := svc.Record(ctx, companyID, models.CreateInteractionRequest{
		ActorType: models.ActorTypeUser,
		Entity:    models.InvestorRef(investorID),
		EventType: req.EventType,
		EventTS:   req.EventTS,
		Meta:      req.Meta,
	}, interactions.SourceAPI)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// ListInteractions returns the investor's interaction log, newest first
func ListInteractions(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.ListInteractions")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, svc, err := ectoinject.GetContext[*interactions.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	result, err := svc.List(ctx, companyID, models.InvestorRef(investorID), page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// UploadOrbit replaces the investor's imported connections from a LinkedIn
// connections CSV. The file arrives as a multipart "file" field or as the
// raw request body.
func UploadOrbit(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.UploadOrbit")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	var reader io.Reader
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file")
		}
		defer f.Close()
		reader = f
	} else {
		reader = c.Request().Body
	}

	ctx, svc, err := ectoinject.GetContext[*orbit.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	summary, err := svc.Upload(ctx, companyID, investorID, reader)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

// ClearOrbit removes all of the investor's imported connections
func ClearOrbit(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "investor_handler.ClearOrbit")
	defer span.End()

	companyID, investorID, err := pathIDs(c)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*orbit.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	if err := svc.Clear(ctx, companyID, investorID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// invalidateFeed drops the company's cached feed after an investor write.
// Resolution failures are ignored; the cache expires by TTL anyway.
func invalidateFeed(ctx context.Context, companyID int64) {
	ctx, feedCache, err := ectoinject.GetContext[*cache.FeedCache](ctx)
	if err != nil {
		return
	}
	feedCache.Invalidate(ctx, companyID)
}
