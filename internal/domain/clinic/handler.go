package clinic

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/drlist/drlist/internal/platform/auth"
	"github.com/drlist/drlist/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Clinic records are admin-only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/clinic", auth.RequireRole(auth.RoleAdmin))
	g.POST("/visits", h.RecordVisit)
	g.GET("/visits", h.ListVisits)
	g.GET("/visits/:id", h.GetVisit)
	g.DELETE("/visits/:id", h.DeleteVisit)
	g.GET("/summary", h.GetSummary)
}

func (h *Handler) RecordVisit(c echo.Context) error {
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	v.DoctorID = auth.UserIDFromContext(ctx)
	if err := h.svc.RecordVisit(ctx, &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

// ListVisits serves visits. With a from or to query param (YYYY-MM-DD) it
// runs the date-range stage over all visits; otherwise it pages from
// storage.
func (h *Handler) ListVisits(c echo.Context) error {
	from, to, ranged, err := dateRangeFromRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if ranged {
		visits, err := h.svc.BrowseVisits(c.Request().Context(), from, to)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(visits, len(visits), len(visits), 0))
	}

	pg := pagination.FromContext(c)
	visits, total, err := h.svc.ListVisits(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteVisit(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetSummary(c echo.Context) error {
	sum, err := h.svc.GetSummary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}

func dateRangeFromRequest(c echo.Context) (from, to time.Time, ranged bool, err error) {
	const layout = "2006-01-02"
	if v := c.QueryParam("from"); v != "" {
		from, err = time.Parse(layout, v)
		if err != nil {
			return from, to, false, fmt.Errorf("invalid from date")
		}
		ranged = true
	}
	if v := c.QueryParam("to"); v != "" {
		to, err = time.Parse(layout, v)
		if err != nil {
			return from, to, false, fmt.Errorf("invalid to date")
		}
		ranged = true
	}
	// A single-ended range defaults the missing bound to the given day.
	if ranged && from.IsZero() {
		from = to
	}
	if ranged && to.IsZero() {
		to = from
	}
	return from, to, ranged, nil
}
