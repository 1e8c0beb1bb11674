package handlers

import (
	"context"
	"net/http"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/auth"
	"github.com/journeymate/backend/internal/middleware"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FirebaseVerifier is the part of the Firebase auth client used for firebase-login.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users    *services.UserService
	issuer   *auth.TokenIssuer
	firebase FirebaseVerifier
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil.
func NewAuthHandler(users *services.UserService, issuer *auth.TokenIssuer, firebase FirebaseVerifier) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, firebase: firebase}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	if h.firebase != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

type tokenResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) tokenFor(c echo.Context, user *models.User) error {
	token, expiresAt, err := h.issuer.Issue(user.Username, user.RoleNames())
	if err != nil {
		return apperrors.Internal("failed to generate token", err)
	}
	return success(c, http.StatusOK, tokenResponse{Token: token, Username: user.Username, ExpiresAt: expiresAt})
}

// Register creates a local account and returns its public id and username
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"uid": user.UID, "username": user.Username})
}

// Login exchanges a username and password for a token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return h.tokenFor(c, user)
}

// Refresh issues a new token for a still valid one
func (h *AuthHandler) Refresh(c echo.Context) error {
	tokenString, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}
	if !h.issuer.RefreshEligible(tokenString) {
		return apperrors.Unauthorized("token is not eligible for refresh")
	}
	claims, err := h.issuer.Parse(tokenString)
	if err != nil {
		return apperrors.Unauthorized("invalid token")
	}

	user, err := h.users.ActiveByUsername(c.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return h.tokenFor(c, user)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return apperrors.Unauthorized("invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := h.users.FindOrCreateExternal(ctx, token.UID, email, name)
	if err != nil {
		return err
	}
	return h.tokenFor(c, user)
}
