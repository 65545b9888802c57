package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/zwhub/pkg/api/types"
	"github.com/urmzd/zwhub/pkg/device"
)

type errorMapping struct {
	err    error
	status int
	code   string
	// message replaces err.Error() when set
	message string
}

// errorMappings are checked in order with errors.Is.
var errorMappings = []errorMapping{
	{device.ErrNotFound, http.StatusNotFound, "not_found", "Device not found"},
	{device.ErrValidation, http.StatusBadRequest, "validation_error", ""},
	{device.ErrUnsupported, http.StatusUnprocessableEntity, "unsupported", ""},
	{device.ErrNotConnected, http.StatusServiceUnavailable, "controller_disconnected", ""},
	{device.ErrTimeout, http.StatusGatewayTimeout, "timeout", "Request timed out waiting for controller response"},
}

// writeError maps controller errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		c.JSON(m.status, types.ErrorResponse{Error: m.code, Message: msg})
		return
	}
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{
		Error:   "controller_error",
		Message: err.Error(),
	})
}
