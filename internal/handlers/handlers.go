// Package handlers exposes the services over HTTP. Handlers bind and validate the request,
// call one service method and wrap the result in the {"success": true, "data": ...} envelope.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

func success(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// currentCaller returns the user resolved by the JWT middleware.
func currentCaller(c echo.Context) (authz.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return authz.Caller{}, apperrors.Unauthorized("user not authenticated")
	}
	return caller, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("invalid request payload")
	}
	return c.Validate(req)
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// ErrorHandler renders every error as {"success": false, "error": {"code", "message"}}.
// Anything that is not an application or echo error is logged and hidden behind a 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal server error"

	var appErr *apperrors.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status, code, message = appErr.Status(), appErr.Code(), appErr.Message
	case errors.As(err, &httpErr):
		status, code = httpErr.Code, codeForStatus(httpErr.Code)
		message = fmt.Sprint(httpErr.Message)
	}

	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{
			"success": false,
			"error":   echo.Map{"code": code, "message": message},
		})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "DUPLICATE_RESOURCE"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "HTTP_ERROR"
}
