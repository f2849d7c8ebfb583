package controller

import (
	"errors"
	"net/http"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, dto.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dto.ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, dto.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, dto.ErrExternalFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logrus.Errorf("Request %s %s failed: %v", c.Request().Method, c.Path(), err)
		return c.JSON(status, dto.ErrorResponse{Error: http.StatusText(status)})
	}
	return c.JSON(status, dto.ErrorResponse{Error: http.StatusText(status), Message: err.Error()})
}
