package patient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/tenancy"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes mounts patient endpoints. Billing staff can read patient
// records in addition to the clinical default roles.
func (h *Handler) RegisterRoutes(api *echo.Group, az *auth.Authorizer) {
	g := api.Group("", az.Require(auth.ResourcePatients,
		auth.RoleAdmin, auth.RoleReception, auth.RoleDoctor, auth.RoleNurse, auth.RoleBilling))
	g.GET("/patients", h.ListPatients)
	g.GET("/patients/:id", h.GetPatient)
	g.POST("/patients", h.CreatePatient)
	g.PUT("/patients/:id", h.UpdatePatient)
	g.DELETE("/patients/:id", h.DeletePatient)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		h.log.Warn().Str("path", c.Path()).Msg("patient create attempted without resolved tenant")
		return echo.NewHTTPError(http.StatusBadRequest, "no tenant resolved for request")
	}

	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.TenantID = tenantID

	source, err := h.svc.CreatePatient(c.Request().Context(), &p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if source == RecordNumberFallback {
		h.log.Warn().Str("patient_id", p.ID.String()).
			Msg("patient created with fallback record number")
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), tenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)

	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		// Fail closed: no tenant means an empty result set, never all rows.
		return c.JSON(http.StatusOK, pagination.NewResponse([]*Patient{}, 0, pg.Limit, pg.Offset))
	}

	if q := c.QueryParam("q"); q != "" {
		patients, total, err := h.svc.SearchPatients(c.Request().Context(), tenantID, q, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
	}

	patients, total, err := h.svc.ListPatients(c.Request().Context(), tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	p.TenantID = tenantID
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	tenantID, ok := tenancy.TenantID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), tenantID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
