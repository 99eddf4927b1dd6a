package acte

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
	g := api.Group("", az.Require(auth.ResourceActes))
	g.GET("/actes", h.ListActes)
	g.GET("/actes/:id", h.GetActe)
	g.GET("/actes/:id/children", h.ListChildren)
	g.POST("/actes", h.CreateActe)
	g.PUT("/actes/:id", h.UpdateActe)
	g.DELETE("/actes/:id", h.DeleteActe)
}

func (h *Handler) CreateActe(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "no tenant resolved for request")
	}
	var a Acte
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.TenantID = tenantID
	if err := h.svc.CreateActe(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetActe(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "acte not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetActe(c.Request().Context(), tenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "acte not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListActes(c echo.Context) error {
	pg := pagination.FromContext(c)

	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, pagination.NewResponse([]*Acte{}, 0, pg.Limit, pg.Offset))
	}

	actes, total, err := h.svc.ListActes(c.Request().Context(), tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(actes, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListChildren(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "acte not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	children, err := h.svc.ListChildren(c.Request().Context(), tenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, children)
}

func (h *Handler) UpdateActe(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "acte not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a Acte
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	a.TenantID = tenantID
	if err := h.svc.UpdateActe(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteActe(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "acte not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteActe(c.Request().Context(), tenantID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
