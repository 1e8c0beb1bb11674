package handlers

import (
	"net/http"

	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	saved *services.SavedPostService
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(saved *services.SavedPostService) *SavedPostHandler {
	return &SavedPostHandler{saved: saved}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("", h.SavePost)
	g.GET("", h.ListSavedPosts)
	g.GET("/user/:userUid", h.ListByUser)
	g.GET("/user/:userUid/trip/:tripUid", h.IsSaved)
	g.DELETE("/user/:userUid/trip/:tripUid", h.UnsavePost)
	g.GET("/trip/:tripUid", h.ListByTrip)
}

// SavePost bookmarks a trip post for the caller
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.SavePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.saved.Save(c.Request().Context(), caller, req.TripPostUID)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, view)
}

// UnsavePost removes a post from saved
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	if err := h.saved.Unsave(c.Request().Context(), caller, c.Param("userUid"), c.Param("tripUid")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"saved": false})
}

func (h *SavedPostHandler) IsSaved(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	saved, err := h.saved.IsSaved(c.Request().Context(), caller, c.Param("userUid"), c.Param("tripUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"saved": saved})
}

func (h *SavedPostHandler) ListByUser(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.saved.ListByUser(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *SavedPostHandler) ListByTrip(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.saved.ListByTrip(c.Request().Context(), caller, c.Param("tripUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *SavedPostHandler) ListSavedPosts(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.saved.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}
