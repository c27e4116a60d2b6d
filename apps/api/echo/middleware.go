package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core/user"
)

// roleMiddleware lets through the tokens carrying one of roles.
// Role only gates routes: services do not check it again.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role || (role == user.RoleAdmin && claims.IsAdmin) {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// adminMiddleware guards user management.
var adminMiddleware = roleMiddleware(user.RoleAdmin)
