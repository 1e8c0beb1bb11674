package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.POST("", h.CreateNotification)
	g.GET("", h.ListNotifications)
	g.GET("/user/:userUid", h.GetNotifications)
	g.GET("/user/:userUid/unread", h.GetUnread)
	g.GET("/user/:userUid/unread-count", h.GetUnreadCount)
	g.PUT("/user/:userUid/read-all", h.MarkAllAsRead)
	g.GET("/:id", h.GetNotification)
	g.PUT("/:id/read", h.MarkAsRead)
	g.DELETE("/:id", h.DeleteNotification)
}

// CreateNotification lets an admin notify a user
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.notifications.Create(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, view)
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.notifications.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	views, total, err := h.notifications.ListByUser(c.Request().Context(), caller, c.Param("userUid"), page, limit)
	if err != nil {
		return err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": views,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

func (h *NotificationHandler) GetUnread(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.notifications.ListUnreadByUser(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) GetNotification(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	view, err := h.notifications.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"read": true})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllRead(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
