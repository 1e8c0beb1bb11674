package handlers

import (
	"net/http"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/journeymate/backend/pkg/filestore"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("", h.ListUsers)
	g.GET("/me", h.GetCurrentUser)
	g.POST("/me/password", h.ResetPassword)
	g.POST("/me/image", h.UploadProfileImage)
	g.GET("/:uid", h.GetUser)
	g.PUT("/:uid", h.UpdateUser)
	g.DELETE("/:uid", h.DeleteUser)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	profiles, err := h.users.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profiles)
}

// GetCurrentUser returns the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetByID(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, h.users.Profile(user))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.users.GetByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, h.users.Profile(user))
}

// UpdateUser changes the fields present in the body. Owner or admin only.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), caller, c.Param("uid"), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, h.users.Profile(user))
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.users.ResetPassword(c.Request().Context(), caller, req); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "password updated"})
}

// UploadProfileImage replaces the caller's image with the multipart field "image"
func (h *UserHandler) UploadProfileImage(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return apperrors.Validation("multipart field \"image\" is required")
	}

	image, err := h.users.ReplaceProfileImage(c.Request().Context(), caller, filestore.FromFileHeader(fh))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"profile_image": image})
}

// DeleteUser soft-deletes an account. Admin only.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), caller, c.Param("uid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
