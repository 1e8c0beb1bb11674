package handlers

import (
	"net/http"

	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles direct messages
type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// RegisterMessageRoutes registers message routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("", h.SendMessage)
	g.GET("", h.ListMessages)
	g.GET("/sent/:userUid", h.ListSent)
	g.GET("/received/:userUid", h.ListReceived)
	g.GET("/between/:userA/:userB", h.ListBetween)
	g.GET("/:id", h.GetMessage)
	g.DELETE("/:id", h.DeleteMessage)
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.messages.Send(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, view)
}

func (h *MessageHandler) ListMessages(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.messages.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *MessageHandler) GetMessage(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	view, err := h.messages.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

func (h *MessageHandler) ListSent(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.messages.ListSent(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *MessageHandler) ListReceived(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.messages.ListReceived(c.Request().Context(), caller, c.Param("userUid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

// ListBetween returns a conversation, oldest message first
func (h *MessageHandler) ListBetween(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.messages.ListBetween(c.Request().Context(), caller, c.Param("userA"), c.Param("userB"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.messages.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
