package tenancy

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// HeaderTenantSlug is the explicit tenant selection header.
const HeaderTenantSlug = "X-Tenant-Slug"

// Resolver is the echo middleware performing layered tenant resolution.
type Resolver struct {
	bySlug  SlugLookup
	byStaff StaffTenantLookup
	log     zerolog.Logger
}

func NewResolver(bySlug SlugLookup, byStaff StaffTenantLookup, log zerolog.Logger) *Resolver {
	return &Resolver{bySlug: bySlug, byStaff: byStaff, log: log}
}

// Middleware resolves the tenant for each request and stores the resolution
// in the request context. Lookup failures never fail the request; they are
// logged and resolution falls through to the next layer.
func (r *Resolver) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			res := Resolution{Source: SourceNone}

			if slug := requestSlug(c); slug != "" {
				tenant, err := r.bySlug(ctx, slug)
				switch {
				case err != nil:
					r.log.Warn().Err(err).Str("slug", slug).Msg("tenant slug lookup failed")
				case tenant != nil:
					res = Resolution{Tenant: tenant, Source: SourceSlug}
				default:
					// Unknown slug is treated as absent, not an error.
					r.log.Debug().Str("slug", slug).Msg("unknown tenant slug ignored")
				}
			}

			if res.Tenant == nil {
				if actor := auth.ActorFromContext(ctx); actor != nil {
					tenant, err := r.byStaff(ctx, actor.AccountID)
					switch {
					case err != nil:
						r.log.Warn().Err(err).Str("account_id", actor.AccountID.String()).Msg("staff tenant lookup failed")
					case tenant != nil:
						res = Resolution{Tenant: tenant, Source: SourceStaff}
					}
				}
			}

			c.SetRequest(c.Request().WithContext(WithResolution(ctx, res)))
			return next(c)
		}
	}
}

func requestSlug(c echo.Context) string {
	if slug := c.Request().Header.Get(HeaderTenantSlug); slug != "" {
		return slug
	}
	return c.QueryParam("tenant")
}
