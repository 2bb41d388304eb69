package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Staff and self-service roles. The same literals are stored in createdBy
// fields on patients and visits, so they are part of the record contract.
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleSecretary = "secretary"
	RoleVisitor   = "visitor"
)

// RequireRole checks that the user holds at least one of the given roles.
// Admins pass every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == RoleAdmin {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// ActingRole resolves the single role a request acts under. Staff roles win
// over the visitor role when a subject holds several; the precedence is
// admin > doctor > secretary > visitor.
func ActingRole(ctx context.Context) string {
	roles := RolesFromContext(ctx)
	for _, want := range []string{RoleAdmin, RoleDoctor, RoleSecretary, RoleVisitor} {
		for _, have := range roles {
			if have == want {
				return want
			}
		}
	}
	return ""
}
