package billing

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
	g := api.Group("", az.Require(auth.ResourceBilling))
	g.GET("/billing", h.ListBillings)
	g.GET("/billing/totals", h.Totals)
	g.GET("/billing/:id", h.GetBilling)
	g.POST("/billing", h.CreateBilling)
	g.PUT("/billing/:id", h.UpdateBilling)
	g.DELETE("/billing/:id", h.DeleteBilling)
	g.POST("/billing/:id/add_payment", h.AddPayment)
}

func (h *Handler) CreateBilling(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "no tenant resolved for request")
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.CreateBilling(c.Request().Context(), tenantID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBilling(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "billing not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBilling(c.Request().Context(), tenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "billing not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBillings(c echo.Context) error {
	pg := pagination.FromContext(c)

	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, pagination.NewResponse([]*Billing{}, 0, pg.Limit, pg.Offset))
	}

	if patientID := c.QueryParam("patient_id"); patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		billings, total, err := h.svc.ListBillingsByPatient(c.Request().Context(), tenantID, pid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(billings, total, pg.Limit, pg.Offset))
	}

	billings, total, err := h.svc.ListBillings(c.Request().Context(), tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(billings, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateBilling(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "billing not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.UpdateBilling(c.Request().Context(), tenantID, id, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBilling(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "billing not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBilling(c.Request().Context(), tenantID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddPayment(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "billing not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in PaymentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.AddPayment(c.Request().Context(), tenantID, id, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Totals(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, []CurrencyTotals{})
	}
	totals, err := h.svc.Totals(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, totals)
}
