package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Role is a staff role. Roles are stored lowercase; ParseRole normalizes.
type Role string

const (
	RoleDoctor    Role = "doctor"
	RoleNurse     Role = "nurse"
	RoleReception Role = "reception"
	RoleBilling   Role = "billing"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleDoctor, RoleNurse, RoleReception, RoleBilling, RoleAdmin}

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Resource identifies an endpoint family for authorization purposes.
type Resource string

const (
	ResourcePatients     Resource = "patients"
	ResourceStaff        Resource = "staff"
	ResourceAppointments Resource = "appointments"
	ResourceBilling      Resource = "billing"
	ResourceInventory    Resource = "inventory"
	ResourceActes        Resource = "actes"
	ResourceTenants      Resource = "tenants"
)

// defaultCapabilities is the capability table: which roles may access each
// resource when the endpoint does not declare its own allow-list. Resources
// absent from the table deny everything except superusers.
var defaultCapabilities = map[Resource][]Role{
	ResourcePatients:     {RoleAdmin, RoleReception, RoleDoctor, RoleNurse},
	ResourceAppointments: {RoleAdmin, RoleReception, RoleDoctor, RoleNurse},
	ResourceBilling:      {RoleAdmin, RoleBilling},
	ResourceStaff:        {RoleAdmin},
	ResourceActes:        {RoleAdmin, RoleDoctor, RoleBilling},
	ResourceInventory:    {RoleAdmin, RoleBilling},
	// ResourceTenants intentionally unmapped: superuser only.
}

// DefaultAllowed returns the default allow-list for a resource.
func DefaultAllowed(res Resource) []Role {
	return defaultCapabilities[res]
}

// RoleResolver resolves the staff role linked to an account, if any.
type RoleResolver func(ctx context.Context, accountID uuid.UUID) (Role, bool)

// Authorizer makes allow/deny decisions for endpoint access.
type Authorizer struct {
	resolve RoleResolver
}

func NewAuthorizer(resolve RoleResolver) *Authorizer {
	return &Authorizer{resolve: resolve}
}

// Allow decides access for the given actor. overrides, when non-empty,
// replaces the resource's default allow-list.
func (a *Authorizer) Allow(ctx context.Context, actor *Actor, res Resource, overrides []Role) bool {
	if actor == nil {
		return false
	}
	if actor.Superuser {
		return true
	}

	role, ok := a.resolve(ctx, actor.AccountID)
	if !ok {
		return false
	}

	allowed := overrides
	if len(allowed) == 0 {
		allowed = defaultCapabilities[res]
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Require returns middleware enforcing access to a resource. An endpoint may
// declare its own allow-list through overrides; otherwise the capability
// table applies.
func (a *Authorizer) Require(res Resource, overrides ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			actor := ActorFromContext(ctx)
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !a.Allow(ctx, actor, res, overrides) {
				return echo.NewHTTPError(http.StatusForbidden, "role not permitted for this resource")
			}
			return next(c)
		}
	}
}
