package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role tags carried in the identity provider's token. Admin implies every
// other role.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// RequireRole returns middleware that checks the caller holds at least one of
// the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have := RoleFromContext(c.Request().Context())
			if have == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if have == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireSelfOrAdmin returns middleware that checks the caller either owns
// the record addressed by the uid path parameter or is an admin.
func RequireSelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if RoleFromContext(ctx) == RoleAdmin {
				return next(c)
			}
			if c.Param(param) == UserIDFromContext(ctx) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "not the record owner")
		}
	}
}
