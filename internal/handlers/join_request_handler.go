package handlers

import (
	"net/http"

	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// JoinRequestHandler handles requests to join trips
type JoinRequestHandler struct {
	requests *services.JoinRequestService
}

func NewJoinRequestHandler(requests *services.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{requests: requests}
}

// RegisterJoinRequestRoutes registers join request routes
func (h *JoinRequestHandler) RegisterJoinRequestRoutes(g *echo.Group) {
	g.POST("", h.CreateJoinRequest)
	g.GET("", h.ListJoinRequests)
	g.GET("/trip/:tripUid", h.ListByTrip)
	g.GET("/user/:userUid", h.ListByUser)
	g.GET("/:uid", h.GetJoinRequest)
	g.PUT("/:uid", h.UpdateJoinRequest)
	g.PATCH("/:uid/status", h.UpdateStatus)
	g.DELETE("/:uid", h.DeleteJoinRequest)
}

func (h *JoinRequestHandler) CreateJoinRequest(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.CreateJoinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.requests.Create(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, view)
}

func (h *JoinRequestHandler) ListJoinRequests(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.requests.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *JoinRequestHandler) GetJoinRequest(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	view, err := h.requests.Get(c.Request().Context(), caller, c.Param("uid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

func (h *JoinRequestHandler) ListByTrip(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.requests.ListByTrip(c.Request().Context(), caller, c.Param("tripUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *JoinRequestHandler) ListByUser(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.requests.ListByUser(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *JoinRequestHandler) UpdateJoinRequest(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.UpdateJoinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.requests.Update(c.Request().Context(), caller, c.Param("uid"), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

// UpdateStatus lets the trip owner accept, reject or otherwise mark a request
func (h *JoinRequestHandler) UpdateStatus(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.UpdateJoinRequestStatus
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.requests.UpdateStatus(c.Request().Context(), caller, c.Param("uid"), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

func (h *JoinRequestHandler) DeleteJoinRequest(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	if err := h.requests.Delete(c.Request().Context(), caller, c.Param("uid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
