package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/unit"
)

const (
	defaultInclusionSeconds = 120
	maxInclusionSeconds     = 254
)

type toolResult = *mcp.CallToolResult

func jsonResult(out any) (toolResult, error) {
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %s", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// errorResult reports a tool failure to the model. The Go error stays nil
// so the session carries on.
func errorResult(format string, args ...any) (toolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}

func (s *Server) handleGetHealth(_ context.Context, _ mcp.CallToolRequest) (toolResult, error) {
	out := GetHealthOutput{
		Status:     "healthy",
		Controller: "connected",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if !s.controller.IsConnected() {
		out.Status = "unhealthy"
		out.Controller = "disconnected"
	}
	if s.units != nil {
		out.Units = make(map[string]int)
		for _, info := range s.units.Units() {
			out.Units[info.Status]++
		}
	}
	return jsonResult(out)
}

func (s *Server) handleListDevices(ctx context.Context, _ mcp.CallToolRequest) (toolResult, error) {
	devices, err := s.controller.ListDevices(ctx)
	if err != nil {
		return errorResult("failed to list devices: %s", err)
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for i := range devices {
		infos = append(infos, s.describe(ctx, &devices[i]))
	}
	return jsonResult(ListDevicesOutput{Devices: infos, Count: len(infos)})
}

// describe attaches the last known state when there is one.
func (s *Server) describe(ctx context.Context, d *device.Device) DeviceInfo {
	info := DeviceToInfo(d)
	if state, err := s.controller.GetDeviceState(ctx, d.ID); err == nil {
		info.State = state
	}
	return info
}

func (s *Server) handleGetDevice(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	d, res := s.lookup(ctx, request)
	if res != nil {
		return res, nil
	}
	return jsonResult(GetDeviceOutput{Device: s.describe(ctx, d)})
}

func (s *Server) handleRenameDevice(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	id, err := idArg(request, "id")
	if err != nil {
		return errorResult("%s", err)
	}
	newName, err := idArg(request, "new_name")
	if err != nil {
		return errorResult("%s", err)
	}

	if err := s.controller.RenameDevice(ctx, id, newName); err != nil {
		return errorResult("failed to rename device: %s", err)
	}
	return jsonResult(RenameDeviceOutput{
		Success: true,
		Message: fmt.Sprintf("Device %q renamed to %q", id, newName),
	})
}

func (s *Server) handleRemoveDevice(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	id, err := idArg(request, "id")
	if err != nil {
		return errorResult("%s", err)
	}

	if err := s.controller.RemoveDevice(ctx, id, request.GetBool("force", false)); err != nil {
		return errorResult("failed to remove device: %s", err)
	}
	return jsonResult(RemoveDeviceOutput{
		Success: true,
		Message: fmt.Sprintf("Device %q excluded from the network", id),
	})
}

func (s *Server) handleGetDeviceState(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	id, err := idArg(request, "id")
	if err != nil {
		return errorResult("%s", err)
	}

	state, err := s.controller.GetDeviceState(ctx, id)
	if err != nil {
		return errorResult("failed to get device state: %s", err)
	}
	return jsonResult(GetDeviceStateOutput{DeviceID: id, State: state})
}

// handleSetDeviceState accepts the fields either nested under "state" or
// as flat arguments next to "id".
func (s *Server) handleSetDeviceState(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	d, res := s.lookup(ctx, request)
	if res != nil {
		return res, nil
	}

	args := request.GetArguments()
	fields, nested := args["state"].(map[string]any)
	if !nested {
		fields = make(map[string]any, len(args))
		for k, v := range args {
			if k != "id" && k != "state" {
				fields[k] = v
			}
		}
	}

	state, res := s.write(ctx, d, fields)
	if res != nil {
		return res, nil
	}
	return jsonResult(SetDeviceStateOutput{DeviceID: d.ID, State: state})
}

func (s *Server) handleStartDiscovery(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	seconds := int(request.GetFloat("duration_seconds", 0))
	switch {
	case seconds <= 0:
		seconds = defaultInclusionSeconds
	case seconds > maxInclusionSeconds:
		return errorResult("duration cannot exceed %d seconds", maxInclusionSeconds)
	}

	if err := s.controller.PermitJoin(ctx, true, seconds); err != nil {
		return errorResult("failed to start discovery: %s", err)
	}
	return jsonResult(StartDiscoveryOutput{
		Success:         true,
		Message:         fmt.Sprintf("Inclusion open for %d seconds", seconds),
		DurationSeconds: seconds,
	})
}

func (s *Server) handleStopDiscovery(ctx context.Context, _ mcp.CallToolRequest) (toolResult, error) {
	if err := s.controller.PermitJoin(ctx, false, 0); err != nil {
		return errorResult("failed to stop discovery: %s", err)
	}
	return jsonResult(StopDiscoveryOutput{Success: true, Message: "Inclusion closed"})
}

func (s *Server) handleTurnOn(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	state, res := s.switchPower(ctx, request, true)
	if res != nil {
		return res, nil
	}
	return jsonResult(TurnOnOutput{DeviceID: state.id, State: state.values})
}

func (s *Server) handleTurnOff(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	state, res := s.switchPower(ctx, request, false)
	if res != nil {
		return res, nil
	}
	return jsonResult(TurnOffOutput{DeviceID: state.id, State: state.values})
}

type written struct {
	id     string
	values device.DeviceState
}

// switchPower maps on/off onto the field the device actually has: a dimmer
// level or a switch state.
func (s *Server) switchPower(ctx context.Context, request mcp.CallToolRequest, on bool) (written, toolResult) {
	d, res := s.lookup(ctx, request)
	if res != nil {
		return written{}, res
	}

	var fields map[string]any
	switch d.Type {
	case device.DeviceTypeLight:
		level := 0.0
		if on {
			level = request.GetFloat("level", float64(unit.MaxLevel))
		}
		fields = map[string]any{"level": level}
	case device.DeviceTypeSwitch:
		fields = map[string]any{"state": onOffWord(on)}
	default:
		res, _ := errorResult("device %q is a %s and cannot be switched", d.Name, d.Type)
		return written{}, res
	}

	state, res := s.write(ctx, d, fields)
	if res != nil {
		return written{}, res
	}
	return written{id: d.ID, values: state}, nil
}

func (s *Server) handleSetLevel(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	level, err := request.RequireFloat("level")
	if err != nil {
		return errorResult("%s", err)
	}
	d, res := s.lookup(ctx, request)
	if res != nil {
		return res, nil
	}

	state, res := s.write(ctx, d, map[string]any{"level": level})
	if res != nil {
		return res, nil
	}
	return jsonResult(SetLevelOutput{DeviceID: d.ID, State: state})
}

func (s *Server) handleLock(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	return s.setLocked(ctx, request, true)
}

func (s *Server) handleUnlock(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	return s.setLocked(ctx, request, false)
}

func (s *Server) setLocked(ctx context.Context, request mcp.CallToolRequest, locked bool) (toolResult, error) {
	d, res := s.lookup(ctx, request)
	if res != nil {
		return res, nil
	}
	if d.Type != device.DeviceTypeLock {
		return errorResult("device %q is not a lock", d.Name)
	}

	state, res := s.write(ctx, d, map[string]any{"locked": locked})
	if res != nil {
		return res, nil
	}
	return jsonResult(LockOutput{DeviceID: d.ID, State: state})
}

func (s *Server) handleListUnits(_ context.Context, _ mcp.CallToolRequest) (toolResult, error) {
	units := s.units.Units()
	summaries := make([]UnitSummary, 0, len(units))
	for _, u := range units {
		summaries = append(summaries, UnitToSummary(u))
	}
	return jsonResult(ListUnitsOutput{Units: summaries, Count: len(summaries)})
}

func (s *Server) handleSendUnitCommand(ctx context.Context, request mcp.CallToolRequest) (toolResult, error) {
	id, err := idArg(request, "id")
	if err != nil {
		return errorResult("%s", err)
	}
	opName, err := request.RequireString("op")
	if err != nil {
		return errorResult("%s", err)
	}
	op, err := unit.ParseOp(opName)
	if err != nil {
		return errorResult("%s", err)
	}

	var values [2]uint32
	for i, key := range []string{"value1", "value2"} {
		if values[i], err = optionalCard(request, key); err != nil {
			return errorResult("%s", err)
		}
	}

	if err := s.units.SendCommand(ctx, id, op, values[0], values[1]); err != nil {
		return errorResult("failed to send %s: %s", op, err)
	}
	msg := fmt.Sprintf("Sent %s to %q", op, id)
	if op.Ignored() {
		msg = fmt.Sprintf("%s is recognised but has no wire encoding; nothing was sent to %q", op, id)
	}
	return jsonResult(SendUnitCommandOutput{Success: true, Message: msg})
}

// --- helpers ---

// lookup resolves the "id" argument to a device. A non-nil result is the
// error to hand back.
func (s *Server) lookup(ctx context.Context, request mcp.CallToolRequest) (*device.Device, toolResult) {
	id, err := idArg(request, "id")
	if err != nil {
		res, _ := errorResult("%s", err)
		return nil, res
	}
	d, err := s.controller.GetDevice(ctx, id)
	if err != nil {
		res, _ := errorResult("device not found: %s", err)
		return nil, res
	}
	return d, nil
}

// write validates fields against the device's schema, then sets them.
func (s *Server) write(ctx context.Context, d *device.Device, fields map[string]any) (device.DeviceState, toolResult) {
	if s.validator != nil {
		if err := s.validator.Validate(d.StateSchema, fields); err != nil {
			res, _ := errorResult("%s", err)
			return nil, res
		}
	}
	state, err := s.controller.SetDeviceState(ctx, d.ID, fields)
	if err != nil {
		res, _ := errorResult("failed to set state of %q: %s", d.Name, err)
		return nil, res
	}
	return state, nil
}

func idArg(request mcp.CallToolRequest, key string) (string, error) {
	v, err := request.RequireString(key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("parameter %q must not be empty", key)
	}
	return v, nil
}

func optionalCard(request mcp.CallToolRequest, key string) (uint32, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok || f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, fmt.Errorf("parameter %q must be a non-negative integer", key)
	}
	return uint32(f), nil
}

func onOffWord(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
