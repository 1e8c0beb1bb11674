package middleware

import (
	"github.com/journeymate/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
)

// RequireRole aborts with 403 unless the caller holds one of roles. It must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return apperrors.Unauthorized("authentication required")
			}
			for _, r := range roles {
				if caller.HasRole(r) {
					return next(c)
				}
			}
			return apperrors.Forbidden("insufficient role")
		}
	}
}
