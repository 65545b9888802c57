package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/device/schema"
	"github.com/urmzd/zwhub/pkg/unit"
	"github.com/urmzd/zwhub/pkg/zwave"
)

type fakeController struct {
	devices map[string]*device.Device
	states  map[string]device.DeviceState
	joining bool
	sets    []map[string]any
}

func newFakeController() *fakeController {
	lamp := unit.NewMultiLevelSwitch()
	lamp.AssignID(7)
	door := unit.NewEntryControl()
	door.AssignID(8)

	return &fakeController{
		devices: map[string]*device.Device{
			"5": {ID: "5", Name: "BinSwitch_05", Type: device.DeviceTypeSwitch, Protocol: device.ProtocolZWave},
			"6": {ID: "6", Name: "BinSensor_06", Type: device.DeviceTypeSensor, Protocol: device.ProtocolZWave},
			"7": {ID: "7", Name: "MLSwitch_07", Type: device.DeviceTypeLight, Protocol: device.ProtocolZWave,
				StateSchema: schema.FromFields(lamp.DescribeFields())},
			"8": {ID: "8", Name: "EntryCtrl_08", Type: device.DeviceTypeLock, Protocol: device.ProtocolZWave,
				StateSchema: schema.FromFields(door.DescribeFields())},
		},
		states: map[string]device.DeviceState{
			"5": {"state": false},
			"7": {"level": uint32(0)},
		},
	}
}

func (f *fakeController) ListDevices(context.Context) ([]device.Device, error) {
	var out []device.Device
	for _, id := range []string{"5", "6", "7", "8"} {
		out = append(out, *f.devices[id])
	}
	return out, nil
}

func (f *fakeController) GetDevice(_ context.Context, id string) (*device.Device, error) {
	if d, ok := f.devices[id]; ok {
		return d, nil
	}
	for _, d := range f.devices {
		if d.Name == id {
			return d, nil
		}
	}
	return nil, device.ErrNotFound
}

func (f *fakeController) RenameDevice(_ context.Context, id, newName string) error {
	d, err := f.GetDevice(context.Background(), id)
	if err != nil {
		return err
	}
	d.Name = newName
	return nil
}

func (f *fakeController) RemoveDevice(_ context.Context, id string, _ bool) error {
	if _, err := f.GetDevice(context.Background(), id); err != nil {
		return err
	}
	delete(f.devices, id)
	return nil
}

func (f *fakeController) GetDeviceState(_ context.Context, id string) (device.DeviceState, error) {
	if s, ok := f.states[id]; ok {
		return s, nil
	}
	return device.DeviceState{}, nil
}

func (f *fakeController) SetDeviceState(_ context.Context, id string, state map[string]any) (device.DeviceState, error) {
	f.sets = append(f.sets, state)
	return device.DeviceState(state), nil
}

func (f *fakeController) PermitJoin(_ context.Context, enable bool, _ int) error {
	f.joining = enable
	return nil
}

func (f *fakeController) IsConnected() bool { return true }
func (f *fakeController) Close()            {}

type sentCommand struct {
	id             string
	op             unit.Op
	value1, value2 uint32
}

type fakeUnits struct {
	sent []sentCommand
}

func (f *fakeUnits) Units() []zwave.UnitInfo {
	return []zwave.UnitInfo{{
		ID:           7,
		Name:         "MLSwitch_07",
		Kind:         "multilevel_switch",
		Status:       "ready",
		Lag:          40 * time.Millisecond,
		PollPeriod:   2 * time.Second,
		Listening:    true,
		Capabilities: []string{"pollable", "level_ramp"},
	}}
}

func (f *fakeUnits) SendCommand(_ context.Context, id string, op unit.Op, value1, value2 uint32) error {
	f.sent = append(f.sent, sentCommand{id: id, op: op, value1: value1, value2: value2})
	return nil
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func newTestServer() (*Server, *fakeController, *fakeUnits) {
	ctrl := newFakeController()
	units := &fakeUnits{}
	return NewServer(ctrl, units, schema.NewValidator()), ctrl, units
}

func TestHandleGetHealth(t *testing.T) {
	s, _, _ := newTestServer()

	res, err := s.handleGetHealth(context.Background(), call(nil))
	require.NoError(t, err)
	out := decode[GetHealthOutput](t, res)
	assert.Equal(t, "healthy", out.Status)
	assert.Equal(t, "connected", out.Controller)
	assert.Equal(t, map[string]int{"ready": 1}, out.Units)
}

func TestHandleListDevices(t *testing.T) {
	s, _, _ := newTestServer()

	res, err := s.handleListDevices(context.Background(), call(nil))
	require.NoError(t, err)
	out := decode[ListDevicesOutput](t, res)
	assert.Equal(t, 4, out.Count)
	assert.Equal(t, "BinSwitch_05", out.Devices[0].Name)
}

func TestHandleGetDevice_Missing(t *testing.T) {
	s, _, _ := newTestServer()

	res, err := s.handleGetDevice(context.Background(), call(map[string]any{"id": "42"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGetDevice(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleSetDeviceState_Validates(t *testing.T) {
	s, ctrl, _ := newTestServer()

	res, err := s.handleSetDeviceState(context.Background(), call(map[string]any{
		"id":    "MLSwitch_07",
		"state": map[string]any{"level": 150.0},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Empty(t, ctrl.sets)

	res, err = s.handleSetDeviceState(context.Background(), call(map[string]any{
		"id":    "MLSwitch_07",
		"level": 30.0,
	}))
	require.NoError(t, err)
	out := decode[SetDeviceStateOutput](t, res)
	assert.Equal(t, 30.0, out.State["level"])
}

func TestHandleTurnOnOff(t *testing.T) {
	s, ctrl, _ := newTestServer()
	ctx := context.Background()

	_, err := s.handleTurnOn(ctx, call(map[string]any{"id": "5"}))
	require.NoError(t, err)
	_, err = s.handleTurnOn(ctx, call(map[string]any{"id": "7", "level": 40.0}))
	require.NoError(t, err)
	_, err = s.handleTurnOn(ctx, call(map[string]any{"id": "7"}))
	require.NoError(t, err)
	_, err = s.handleTurnOff(ctx, call(map[string]any{"id": "7"}))
	require.NoError(t, err)

	assert.Equal(t, []map[string]any{
		{"state": "on"},
		{"level": 40.0},
		{"level": float64(unit.MaxLevel)},
		{"level": 0.0},
	}, ctrl.sets)

	res, err := s.handleTurnOn(ctx, call(map[string]any{"id": "6"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "sensors cannot be switched")
}

func TestHandleSetLevel(t *testing.T) {
	s, ctrl, _ := newTestServer()
	ctx := context.Background()

	res, err := s.handleSetLevel(ctx, call(map[string]any{"id": "7", "level": 25.0}))
	require.NoError(t, err)
	out := decode[SetLevelOutput](t, res)
	assert.Equal(t, 25.0, out.State["level"])

	res, err = s.handleSetLevel(ctx, call(map[string]any{"id": "7", "level": 100.0}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleSetLevel(ctx, call(map[string]any{"id": "7"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Len(t, ctrl.sets, 1)
}

func TestHandleLock(t *testing.T) {
	s, ctrl, _ := newTestServer()
	ctx := context.Background()

	res, err := s.handleLock(ctx, call(map[string]any{"id": "EntryCtrl_08"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	res, err = s.handleUnlock(ctx, call(map[string]any{"id": "8"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []map[string]any{{"locked": true}, {"locked": false}}, ctrl.sets)

	res, err = s.handleLock(ctx, call(map[string]any{"id": "5"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleDiscovery(t *testing.T) {
	s, ctrl, _ := newTestServer()

	res, err := s.handleStartDiscovery(context.Background(), call(map[string]any{"duration_seconds": 60.0}))
	require.NoError(t, err)
	out := decode[StartDiscoveryOutput](t, res)
	assert.Equal(t, 60, out.DurationSeconds)
	assert.True(t, ctrl.joining)

	_, err = s.handleStopDiscovery(context.Background(), call(nil))
	require.NoError(t, err)
	assert.False(t, ctrl.joining)

	res, err = s.handleStartDiscovery(context.Background(), call(map[string]any{"duration_seconds": 600.0}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.False(t, ctrl.joining)

	res, err = s.handleStartDiscovery(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, 120, decode[StartDiscoveryOutput](t, res).DurationSeconds)
}

func TestHandleListUnits(t *testing.T) {
	s, _, _ := newTestServer()

	res, err := s.handleListUnits(context.Background(), call(nil))
	require.NoError(t, err)
	out := decode[ListUnitsOutput](t, res)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, int64(40), out.Units[0].LagMillis)
	assert.Equal(t, int64(2000), out.Units[0].PollPeriodMs)
	assert.Equal(t, "ready", out.Units[0].Status)
}

func TestHandleSendUnitCommand(t *testing.T) {
	s, _, units := newTestServer()
	ctx := context.Background()

	res, err := s.handleSendUnitCommand(ctx, call(map[string]any{"id": "7", "op": "ramp_start", "value1": 1.0}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, units.sent, 1)
	assert.Equal(t, sentCommand{id: "7", op: unit.OpRampStart, value1: unit.RampUp}, units.sent[0])

	res, err = s.handleSendUnitCommand(ctx, call(map[string]any{"id": "7", "op": "explode"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleSendUnitCommand(ctx, call(map[string]any{"id": "7", "op": "set_level", "value1": -3.0}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Len(t, units.sent, 1)

	res, err = s.handleSendUnitCommand(ctx, call(map[string]any{"id": "5", "op": "delete_association", "value1": 1.0, "value2": 2.0}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "nothing was sent")
}
