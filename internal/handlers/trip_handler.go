package handlers

import (
	"net/http"
	"strings"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/services"
	"github.com/journeymate/backend/pkg/filestore"
	"github.com/labstack/echo/v4"
)

// TripHandler handles HTTP requests related to trip posts
type TripHandler struct {
	trips *services.TripService
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(trips *services.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// RegisterTripRoutes registers trip post routes
func (h *TripHandler) RegisterTripRoutes(g *echo.Group) {
	g.POST("", h.CreateTrip)
	g.GET("", h.ListActiveTrips)
	g.GET("/mine", h.ListMyTrips)
	g.GET("/:uid", h.GetTrip)
	g.PUT("/:uid", h.UpdateTrip)
	g.DELETE("/:uid", h.DeleteTrip)
}

// tripImages collects the repeatable multipart field "images". JSON bodies carry none.
func tripImages(c echo.Context) ([]filestore.Upload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.Validation("invalid multipart form")
	}
	files := form.File["images"]
	uploads := make([]filestore.Upload, len(files))
	for i, fh := range files {
		uploads[i] = filestore.FromFileHeader(fh)
	}
	return uploads, nil
}

func (h *TripHandler) bindTrip(c echo.Context) (models.TripPostRequest, []filestore.Upload, error) {
	var req models.TripPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return req, nil, err
	}
	uploads, err := tripImages(c)
	return req, uploads, err
}

// CreateTrip creates a post owned by the caller
func (h *TripHandler) CreateTrip(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	req, uploads, err := h.bindTrip(c)
	if err != nil {
		return err
	}

	view, err := h.trips.Create(c.Request().Context(), caller, req, uploads)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, view)
}

// ListActiveTrips lists posts that have not expired
func (h *TripHandler) ListActiveTrips(c echo.Context) error {
	views, err := h.trips.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *TripHandler) ListMyTrips(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	views, err := h.trips.ListByOwner(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, views)
}

func (h *TripHandler) GetTrip(c echo.Context) error {
	view, err := h.trips.GetByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

// UpdateTrip replaces the post fields, and the images when any are sent
func (h *TripHandler) UpdateTrip(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	req, uploads, err := h.bindTrip(c)
	if err != nil {
		return err
	}

	view, err := h.trips.Update(c.Request().Context(), caller, c.Param("uid"), req, uploads)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, view)
}

func (h *TripHandler) DeleteTrip(c echo.Context) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	if err := h.trips.Delete(c.Request().Context(), caller, c.Param("uid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
