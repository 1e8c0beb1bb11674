package middleware

import (
	"errors"
	"strings"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/auth"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const callerKey = "caller"

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.Unauthorized("missing Authorization header")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperrors.Unauthorized("invalid Authorization header format")
	}
	return parts[1], nil
}

// JWTAuth checks the bearer token and resolves its subject to an active user. The caller is
// stored on the context for handlers and the rate limiter.
func JWTAuth(issuer *auth.TokenIssuer, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := BearerToken(c)
			if err != nil {
				return err
			}

			claims, err := issuer.Parse(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return apperrors.Unauthorized("token expired")
				}
				return apperrors.Unauthorized("invalid token")
			}

			user, err := users.GetActiveByUsername(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Unauthorized("user no longer active")
				}
				return apperrors.Internal("failed to load user", err)
			}

			SetCaller(c, authz.Caller{
				ID:       user.ID,
				UID:      user.UID,
				Username: user.Username,
				Roles:    user.RoleNames(),
			})
			return next(c)
		}
	}
}

func SetCaller(c echo.Context, caller authz.Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(c echo.Context) (authz.Caller, bool) {
	caller, ok := c.Get(callerKey).(authz.Caller)
	return caller, ok && caller.ID != 0
}
