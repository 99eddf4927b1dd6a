package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Skipper decides whether a request bypasses authentication (health checks,
// token endpoint).
type Skipper func(echo.Context) bool

// Middleware verifies the Authorization bearer token and attaches the actor
// to the request context. Requests without a valid token are rejected with
// 401 unless the skipper matches.
func Middleware(ts *TokenService, skip Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := ts.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			actor, err := ActorFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			ctx := WithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// PathSkipper returns a Skipper that matches exact request paths.
func PathSkipper(paths ...string) Skipper {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(c echo.Context) bool {
		return set[c.Request().URL.Path]
	}
}
