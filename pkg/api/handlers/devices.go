package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/zwhub/pkg/api/types"
	"github.com/urmzd/zwhub/pkg/device"
)

// DevicesHandler handles device CRUD endpoints
type DevicesHandler struct {
	controller device.Controller
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(controller device.Controller) *DevicesHandler {
	return &DevicesHandler{controller: controller}
}

// ListDevices handles GET /devices
// @Summary      List all devices
// @Description  Returns every Z-Wave unit as a device, ordered by node id
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      504  {object}  types.ErrorResponse  "Request timed out"
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	ctx := c.Request.Context()

	devices, err := h.controller.ListDevices(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	result := make([]types.DeviceWithState, 0, len(devices))
	for i := range devices {
		dws := toDeviceWithState(&devices[i])

		// State is best effort
		if state, err := h.controller.GetDeviceState(ctx, devices[i].ID); err == nil {
			dws.State = state
		}

		result = append(result, dws)
	}

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: result,
		Count:   len(result),
	})
}

// GetDevice handles GET /devices/:id
// @Summary      Get device details
// @Description  Returns details for a specific device by node id or name
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Node id or device name"
// @Success      200  {object}  types.DeviceResponse
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices/{id} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.controller.GetDevice(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	result := toDeviceWithState(d)
	if state, err := h.controller.GetDeviceState(ctx, d.ID); err == nil {
		result.State = state
	}

	c.JSON(http.StatusOK, types.DeviceResponse{
		Device: result,
	})
}

// RenameDevice handles PATCH /devices/:id
// @Summary      Rename a device
// @Description  Changes the name of a device. Names must be unique.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Node id or device name"
// @Param        request  body      types.RenameDeviceRequest  true  "New name"
// @Success      200      {object}  types.DeviceResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request or duplicate name"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      500      {object}  types.ErrorResponse  "Controller error"
// @Router       /devices/{id} [patch]
func (h *DevicesHandler) RenameDevice(c *gin.Context) {
	ctx := c.Request.Context()

	var req types.RenameDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "name is required",
		})
		return
	}

	d, err := h.controller.GetDevice(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.controller.RenameDevice(ctx, d.ID, req.Name); err != nil {
		writeError(c, err)
		return
	}

	renamed, err := h.controller.GetDevice(ctx, d.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeviceResponse{
		Device: toDeviceWithState(renamed),
	})
}

// RemoveDevice handles DELETE /devices/:id
// @Summary      Remove a device
// @Description  Starts exclusion for a device, or with force drops a failed node immediately
// @Tags         devices
// @Produce      json
// @Param        id     path   string  true   "Node id or device name"
// @Param        force  query  bool    false  "Remove a failed node without its cooperation"
// @Success      204    "Device removed or exclusion started"
// @Failure      404    {object}  types.ErrorResponse  "Device not found"
// @Failure      504    {object}  types.ErrorResponse  "Request timed out"
// @Failure      500    {object}  types.ErrorResponse  "Controller error"
// @Router       /devices/{id} [delete]
func (h *DevicesHandler) RemoveDevice(c *gin.Context) {
	ctx := c.Request.Context()
	force := c.Query("force") == "true"

	d, err := h.controller.GetDevice(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.controller.RemoveDevice(ctx, d.ID, force); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toDeviceWithState(d *device.Device) types.DeviceWithState {
	return types.DeviceWithState{
		ID:          d.ID,
		Name:        d.Name,
		Type:        d.Type,
		Model:       d.Model,
		Vendor:      d.Manufacturer,
		StateSchema: d.StateSchema,
		Exposes:     d.Exposes,
	}
}
