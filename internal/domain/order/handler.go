package order

import (
	"net/http"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Customer endpoints – own orders only
	api.POST("/orders", h.PlaceOrder)
	api.GET("/orders", h.ListMyOrders)
	api.GET("/orders/:id", h.GetOrder)

	// Admin endpoints
	adminGroup := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	adminGroup.GET("/orders", h.AdminListOrders)
	adminGroup.GET("/orders/:id/history", h.GetStatusHistory)
	adminGroup.PATCH("/orders/:id/status", h.UpdateStatus)
	adminGroup.GET("/stats", h.DashboardStats)
}

type placeOrderRequest struct {
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) PlaceOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	o, err := h.svc.PlaceOrder(ctx, auth.UserIDFromContext(ctx), auth.EmailFromContext(ctx), req.Address, req.PaymentMethod)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	orders, err := h.svc.ListUserOrders(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder serves one order. Customers see their own orders; admins see
// any.
func (h *Handler) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	o, err := h.svc.GetOrder(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && o.UserID != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, o)
}

// AdminListOrders serves the admin order list. With a status or q query
// param it runs the filter stage over all orders; otherwise it pages from
// storage.
func (h *Handler) AdminListOrders(c echo.Context) error {
	status := c.QueryParam("status")
	query := c.QueryParam("q")

	if status != "" || query != "" {
		orders, err := h.svc.BrowseOrders(c.Request().Context(), status, query)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(orders, len(orders), len(orders), 0))
	}

	pg := pagination.FromContext(c)
	orders, total, err := h.svc.ListOrders(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.UpdateStatus(ctx, id, req.Status, auth.UserIDFromContext(ctx)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetStatusHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	history, err := h.svc.StatusHistory(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, history)
}

func (h *Handler) DashboardStats(c echo.Context) error {
	stats, err := h.svc.DashboardStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
