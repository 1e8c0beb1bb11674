package handlers

import (
	"net/http"

	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedbackHandler handles trip feedback requests
type FeedbackHandler struct {
	feedback *services.FeedbackService
}

func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// RegisterFeedbackRoutes registers trip feedback routes
func (h *FeedbackHandler) RegisterFeedbackRoutes(g *echo.Group) {
	g.POST("", h.CreateFeedback)
	g.GET("", h.ListFeedback)
	g.GET("/trip/:tripUid", h.ListByTrip)
	g.GET("/giver/:userUid", h.ListByGiver)
	g.GET("/receiver/:userUid", h.ListByReceiver)
	g.GET("/:id", h.GetFeedback)
	g.PUT("/:id", h.UpdateFeedback)
	g.DELETE("/:id", h.DeleteFeedback)
}

func (h *FeedbackHandler) CreateFeedback(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.CreateFeedbackRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.feedback.Create(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, view)
}

func (h *FeedbackHandler) ListFeedback(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.feedback.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *FeedbackHandler) GetFeedback(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	view, err := h.feedback.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

func (h *FeedbackHandler) ListByTrip(c echo.Context) error {
	views, err := h.feedback.ListByTrip(c.Request().Context(), c.Param("tripUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *FeedbackHandler) ListByGiver(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.feedback.ListByGiver(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *FeedbackHandler) ListByReceiver(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.feedback.ListByReceiver(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *FeedbackHandler) UpdateFeedback(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateFeedbackRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.feedback.Update(c.Request().Context(), caller, id, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

func (h *FeedbackHandler) DeleteFeedback(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.feedback.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
