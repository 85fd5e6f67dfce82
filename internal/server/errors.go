package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/npywrite/pkg/npy"
)

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{Message: msg, Type: errType},
	})
}

// writeConvertError maps conversion failures onto HTTP statuses.
func writeConvertError(c *echo.Context, err error) error {
	var (
		tooLarge *http.MaxBytesError
		parseErr *npy.ParseError
		shapeErr *npy.ShapeError
		cfgErr   *npy.ConfigError
	)
	switch {
	case errors.As(err, &tooLarge):
		return writeError(c, http.StatusRequestEntityTooLarge, "request_too_large", err.Error())
	case errors.As(err, &parseErr):
		return writeError(c, http.StatusBadRequest, "parse_error", err.Error())
	case errors.As(err, &shapeErr):
		return writeError(c, http.StatusBadRequest, "shape_error", err.Error())
	case errors.As(err, &cfgErr):
		return writeBadRequest(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}
