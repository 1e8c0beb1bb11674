package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", apperrors.NotFound("trip post %s not found", "abc"), http.StatusNotFound, "NOT_FOUND", "trip post abc not found"},
		{"duplicate", apperrors.Duplicate("post already saved by user"), http.StatusConflict, "DUPLICATE_RESOURCE", "post already saved by user"},
		{"forbidden", apperrors.Forbidden("nope"), http.StatusForbidden, "FORBIDDEN", "nope"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, "RATE_LIMITED", "slow down"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success || body.Error.Code != tt.code || body.Error.Message != tt.message {
				t.Fatalf("unexpected envelope %+v", body)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	e := echo.New()
	for _, raw := range []string{"0", "-1", "abc", ""} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		if _, err := idParam(c, "id"); !apperrors.Is(err, apperrors.KindValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := idParam(c, "id")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
}
