package handlers

import (
	"net/http"
	"strconv"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ActivityHandler exposes the Mongo activity log to admins
type ActivityHandler struct {
	activities repositories.ActivityRepository
}

func NewActivityHandler(activities repositories.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// RegisterActivityRoutes expects g to be guarded by RequireRole(ADMIN)
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.GET("/activities", h.ListRecent)
	g.GET("/activities/:subjectUid", h.ListBySubject)
}

func activityLimit(c echo.Context) int64 {
	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil || limit < 1 {
		return defaultActivityLimit
	}
	if limit > maxActivityLimit {
		return maxActivityLimit
	}
	return limit
}

func (h *ActivityHandler) ListRecent(c echo.Context) error {
	activities, err := h.activities.ListRecent(c.Request().Context(), activityLimit(c))
	if err != nil {
		return apperrors.Internal("failed to load activities", err)
	}
	return success(c, http.StatusOK, activities)
}

func (h *ActivityHandler) ListBySubject(c echo.Context) error {
	activities, err := h.activities.ListBySubject(c.Request().Context(), c.Param("subjectUid"), activityLimit(c))
	if err != nil {
		return apperrors.Internal("failed to load activities", err)
	}
	return success(c, http.StatusOK, activities)
}
