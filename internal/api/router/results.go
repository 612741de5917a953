package router

import (
	"net/http"

	"github.com/DjordjeVuckovic/probe-report/internal/apperr"
	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/DjordjeVuckovic/probe-report/pkg/pagination"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ResultsRouter struct {
	e      *echo.Echo
	reader results.Reader
}

func NewResultsRouter(e *echo.Echo, reader results.Reader) *ResultsRouter {
	return &ResultsRouter{e: e, reader: reader}
}

func (r *ResultsRouter) Bind() {
	r.e.GET("/results", r.listHandler)
	r.e.GET("/runs/:run_id/results", r.runHandler)
}

type ResultsResponse = pagination.OffsetResult[results.Record]

// listHandler godoc
// @Summary List probe results
// @Description Stored report values, optionally filtered. NaN values are returned as null.
// @Tags results
// @Produce json
// @Param language query string false "Language code"
// @Param task query string false "Task name"
// @Param metric query string false "Metric (spearman, spearman_mean, uas, uuas, selected_dims, inter_dims)"
// @Param run_id query string false "Run id"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(100)
// @Success 200 {object} ResultsResponse
// @Failure 400 {object} map[string]string
// @Router /results [get]
func (r *ResultsRouter) listHandler(c echo.Context) error {
	filter, page, err := parseFilter(c)
	if err != nil {
		return err
	}
	if raw := c.QueryParam("run_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.NewValidationWrap("run_id must be a UUID", err)
		}
		filter.RunID = id
	}
	return r.list(c, filter, page)
}

// runHandler godoc
// @Summary List the results of one run
// @Tags results
// @Produce json
// @Param run_id path string true "Run id"
// @Param metric query string false "Metric"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(100)
// @Success 200 {object} ResultsResponse
// @Failure 400 {object} map[string]string
// @Router /runs/{run_id}/results [get]
func (r *ResultsRouter) runHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("run_id"))
	if err != nil {
		return apperr.NewValidationWrap("run_id must be a UUID", err)
	}
	filter, page, err := parseFilter(c)
	if err != nil {
		return err
	}
	filter.RunID = id
	return r.list(c, filter, page)
}

func (r *ResultsRouter) list(c echo.Context, filter results.Filter, page pagination.OffsetRequest) error {
	filter.Offset = page.Offset()
	filter.Limit = page.Fetch()

	records, err := r.reader.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewOffsetResult(records, page))
}

func parseFilter(c echo.Context) (results.Filter, pagination.OffsetRequest, error) {
	var page pagination.OffsetRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &page); err != nil {
		return results.Filter{}, page, apperr.NewValidationWrap("page and size must be integers", err)
	}
	if err := page.Validate(); err != nil {
		return results.Filter{}, page, apperr.NewValidationWrap("invalid pagination", err)
	}

	filter := results.Filter{
		Language: c.QueryParam("language"),
		Task:     c.QueryParam("task"),
		Metric:   c.QueryParam("metric"),
	}
	return filter, page, nil
}
