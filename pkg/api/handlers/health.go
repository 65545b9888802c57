package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/zwhub/pkg/api/types"
	"github.com/urmzd/zwhub/pkg/device"
)

// HealthHandler reports stick connectivity and, when units are known, how
// many sit in each status.
type HealthHandler struct {
	controller device.Controller
	units      UnitController
}

// NewHealthHandler creates a health handler. units may be nil.
func NewHealthHandler(controller device.Controller, units UnitController) *HealthHandler {
	return &HealthHandler{controller: controller, units: units}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns controller connectivity and unit counts by status
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Stick connected"
// @Failure      503  {object}  types.HealthResponse  "No stick"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := types.HealthResponse{
		Status:     "healthy",
		Controller: "connected",
		Timestamp:  time.Now(),
	}
	code := http.StatusOK
	if !h.controller.IsConnected() {
		resp.Status = "degraded"
		resp.Controller = "disconnected"
		code = http.StatusServiceUnavailable
	}

	if h.units != nil {
		resp.Units = make(map[string]int)
		for _, info := range h.units.Units() {
			resp.Units[info.Status]++
		}
	}

	c.JSON(code, resp)
}
