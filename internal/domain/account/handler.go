package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

// StaffSummary is the staff/tenant slice of the /me profile. It is filled by
// the staff package through the StaffDirectory seam to keep this package free
// of a staff dependency.
type StaffSummary struct {
	ID         uuid.UUID  `json:"id"`
	Role       string     `json:"role"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	TenantName string     `json:"tenant_name,omitempty"`
	TenantSlug string     `json:"tenant_slug,omitempty"`
}

// StaffDirectory resolves the staff record linked to an account, if any.
// A nil summary with nil error means the account has no staff link.
type StaffDirectory interface {
	SummaryByAccount(ctx context.Context, accountID uuid.UUID) (*StaffSummary, error)
}

type Handler struct {
	svc   *Service
	staff StaffDirectory
}

func NewHandler(svc *Service, staff StaffDirectory) *Handler {
	return &Handler{svc: svc, staff: staff}
}

// RegisterRoutes mounts /auth/token on the public group and /me on the
// authenticated group.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/token", h.IssueToken)
	api.GET("/me", h.Me)
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) IssueToken(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, _, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

type meResponse struct {
	Account *Account      `json:"account"`
	Staff   *StaffSummary `json:"staff,omitempty"`
}

func (h *Handler) Me(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	a, err := h.svc.GetAccount(c.Request().Context(), actor.AccountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}

	resp := meResponse{Account: a}
	if h.staff != nil {
		summary, err := h.staff.SummaryByAccount(c.Request().Context(), actor.AccountID)
		if err == nil && summary != nil {
			resp.Staff = summary
		}
	}
	return c.JSON(http.StatusOK, resp)
}
