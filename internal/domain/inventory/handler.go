package inventory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/tenancy"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, az *auth.Authorizer) {
	g := api.Group("", az.Require(auth.ResourceInventory))
	g.GET("/inventory", h.ListItems)
	g.GET("/inventory/low_stock", h.ListLowStock)
	g.GET("/inventory/:id", h.GetItem)
	g.POST("/inventory", h.CreateItem)
	g.PUT("/inventory/:id", h.UpdateItem)
	g.DELETE("/inventory/:id", h.DeleteItem)
	g.POST("/inventory/:id/adjust", h.AdjustQuantity)
}

func (h *Handler) CreateItem(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "no tenant resolved for request")
	}
	var i Item
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i.TenantID = tenantID
	if err := h.svc.CreateItem(c.Request().Context(), &i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) GetItem(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	i, err := h.svc.GetItem(c.Request().Context(), tenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) ListItems(c echo.Context) error {
	pg := pagination.FromContext(c)

	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, pagination.NewResponse([]*Item{}, 0, pg.Limit, pg.Offset))
	}

	if q := c.QueryParam("q"); q != "" {
		items, total, err := h.svc.SearchItems(c.Request().Context(), tenantID, q, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.ListItems(c.Request().Context(), tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListLowStock(c echo.Context) error {
	pg := pagination.FromContext(c)

	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, pagination.NewResponse([]*Item{}, 0, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.ListLowStock(c.Request().Context(), tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateItem(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var i Item
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i.ID = id
	i.TenantID = tenantID
	if err := h.svc.UpdateItem(c.Request().Context(), &i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteItem(c.Request().Context(), tenantID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) AdjustQuantity(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in adjustRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i, err := h.svc.AdjustQuantity(c.Request().Context(), tenantID, id, in.Delta)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, i)
}
