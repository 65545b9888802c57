package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/zwhub/pkg/api/types"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/unit"
	"github.com/urmzd/zwhub/pkg/zwave"
)

// UnitController is the Z-Wave unit layer below device.Controller.
type UnitController interface {
	Units() []zwave.UnitInfo
	SendCommand(ctx context.Context, id string, op unit.Op, value1, value2 uint32) error
}

// UnitsHandler handles unit diagnostics and raw unit commands
type UnitsHandler struct {
	units UnitController
}

// NewUnitsHandler creates a new units handler
func NewUnitsHandler(units UnitController) *UnitsHandler {
	return &UnitsHandler{units: units}
}

// ListUnits handles GET /units
// @Summary      List units
// @Description  Returns every unit with status, retry count, poll lag and capabilities
// @Tags         units
// @Produce      json
// @Success      200  {object}  types.ListUnitsResponse
// @Router       /units [get]
func (h *UnitsHandler) ListUnits(c *gin.Context) {
	infos := h.units.Units()
	result := make([]types.UnitResponse, 0, len(infos))
	for _, u := range infos {
		result = append(result, toUnitResponse(u))
	}

	c.JSON(http.StatusOK, types.ListUnitsResponse{
		Units: result,
		Count: len(result),
	})
}

// GetUnit handles GET /units/:id
// @Summary      Get unit
// @Description  Returns diagnostics for one unit by node id or name
// @Tags         units
// @Produce      json
// @Param        id   path      string  true  "Node id or unit name"
// @Success      200  {object}  types.UnitResponse
// @Failure      404  {object}  types.ErrorResponse  "Unit not found"
// @Router       /units/{id} [get]
func (h *UnitsHandler) GetUnit(c *gin.Context) {
	id := c.Param("id")
	for _, u := range h.units.Units() {
		if u.Name == id || strconv.Itoa(int(u.ID)) == id {
			c.JSON(http.StatusOK, toUnitResponse(u))
			return
		}
	}
	writeError(c, device.ErrNotFound)
}

// SendCommand handles POST /units/:id/commands
// @Summary      Send a unit command
// @Description  Encodes an operation for the unit and transmits it (ramp_start, ramp_end, set_level, off_on, add_association, delete_association, get_group_association, set_config_parameter, get_report)
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Node id or unit name"
// @Param        request  body      types.UnitCommandRequest  true  "Operation and operands"
// @Success      202      {object}  types.UnitCommandResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request or operand above 255 for a one byte operand"
// @Failure      404      {object}  types.ErrorResponse  "Unit not found"
// @Failure      422      {object}  types.ErrorResponse  "Operation not supported by the unit"
// @Failure      504      {object}  types.ErrorResponse  "Request timed out"
// @Router       /units/{id}/commands [post]
func (h *UnitsHandler) SendCommand(c *gin.Context) {
	id := c.Param("id")

	var req types.UnitCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "op is required",
		})
		return
	}

	op, err := unit.ParseOp(req.Op)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_op",
			Message: err.Error(),
		})
		return
	}

	if err := h.units.SendCommand(c.Request.Context(), id, op, req.Value1, req.Value2); err != nil {
		writeError(c, err)
		return
	}

	status := "sent"
	if op.Ignored() {
		status = "ignored"
	}
	c.JSON(http.StatusAccepted, types.UnitCommandResponse{
		Unit:   id,
		Op:     op.String(),
		Status: status,
	})
}

func toUnitResponse(u zwave.UnitInfo) types.UnitResponse {
	return types.UnitResponse{
		ID:           u.ID,
		Name:         u.Name,
		Kind:         u.Kind,
		TypeInfo:     u.TypeInfo,
		Status:       u.Status,
		Retries:      u.Retries,
		LagMillis:    u.Lag.Milliseconds(),
		PollPeriodMs: u.PollPeriod.Milliseconds(),
		NextPoll:     u.NextPoll,
		Listening:    u.Listening,
		Capabilities: u.Capabilities,
		Generic:      u.Generic,
		Specific:     u.Specific,
	}
}
