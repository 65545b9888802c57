package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/zwhub/pkg/api/types"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/device/schema"
	"github.com/urmzd/zwhub/pkg/unit"
	"github.com/urmzd/zwhub/pkg/zwave"
)

type fakeController struct {
	devices   []*device.Device
	connected bool
	joinSecs  int
	removed   []string
	lastSet   map[string]any
}

func newFakeController() *fakeController {
	lamp := unit.NewMultiLevelSwitch()
	lamp.AssignID(7)
	return &fakeController{
		connected: true,
		devices: []*device.Device{
			{ID: "5", Name: "BinSwitch_05", Type: device.DeviceTypeSwitch, Protocol: device.ProtocolZWave},
			{ID: "7", Name: "MLSwitch_07", Type: device.DeviceTypeLight, Protocol: device.ProtocolZWave,
				StateSchema: schema.FromFields(lamp.DescribeFields())},
		},
	}
}

func (f *fakeController) ListDevices(context.Context) ([]device.Device, error) {
	out := make([]device.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeController) GetDevice(_ context.Context, id string) (*device.Device, error) {
	for _, d := range f.devices {
		if d.ID == id || d.Name == id {
			return d, nil
		}
	}
	return nil, device.ErrNotFound
}

func (f *fakeController) RenameDevice(ctx context.Context, id, newName string) error {
	for _, d := range f.devices {
		if d.Name == newName {
			return fmt.Errorf("%w: name %q already in use", device.ErrValidation, newName)
		}
	}
	d, err := f.GetDevice(ctx, id)
	if err != nil {
		return err
	}
	d.Name = newName
	return nil
}

func (f *fakeController) RemoveDevice(_ context.Context, id string, force bool) error {
	f.removed = append(f.removed, fmt.Sprintf("%s:%t", id, force))
	return nil
}

func (f *fakeController) GetDeviceState(_ context.Context, id string) (device.DeviceState, error) {
	if id == "7" {
		return device.DeviceState{"level": 20}, nil
	}
	return device.DeviceState{"state": true}, nil
}

func (f *fakeController) SetDeviceState(_ context.Context, _ string, state map[string]any) (device.DeviceState, error) {
	f.lastSet = state
	return device.DeviceState(state), nil
}

func (f *fakeController) PermitJoin(_ context.Context, enable bool, duration int) error {
	if !f.connected {
		return device.ErrNotConnected
	}
	if enable {
		f.joinSecs = duration
	} else {
		f.joinSecs = 0
	}
	return nil
}

func (f *fakeController) IsConnected() bool { return f.connected }
func (f *fakeController) Close()            {}

func (f *fakeController) Subscribe() chan device.DiscoveryEvent {
	return make(chan device.DiscoveryEvent)
}

func (f *fakeController) Unsubscribe(chan device.DiscoveryEvent) {}

type fakeUnits struct {
	lastOp unit.Op
	err    error
}

func (f *fakeUnits) Units() []zwave.UnitInfo {
	return []zwave.UnitInfo{
		{ID: 5, Name: "BinSwitch_05", Kind: "binary_switch", Status: "ready", PollPeriod: 2 * time.Second},
		{ID: 7, Name: "MLSwitch_07", Kind: "multilevel_switch", Status: "error", Retries: 2, Lag: 120 * time.Millisecond},
	}
}

func (f *fakeUnits) SendCommand(_ context.Context, _ string, op unit.Op, _, _ uint32) error {
	f.lastOp = op
	return f.err
}

func newTestRouter() (*Router, *fakeController, *fakeUnits) {
	ctrl := newFakeController()
	units := &fakeUnits{}
	return NewRouter(ctrl, ctrl, units, schema.NewValidator()), ctrl, units
}

func do(t *testing.T, r *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, ctrl, _ := newTestRouter()

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health types.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, map[string]int{"ready": 1, "error": 1}, health.Units)

	ctrl.connected = false
	w = do(t, r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDevices(t *testing.T) {
	r, _, _ := newTestRouter()

	w := do(t, r, http.MethodGet, "/api/v1/devices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list types.ListDevicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "MLSwitch_07", list.Devices[1].Name)
	assert.EqualValues(t, 20, list.Devices[1].State["level"])

	w = do(t, r, http.MethodGet, "/api/v1/devices/MLSwitch_07", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/devices/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenameDevice(t *testing.T) {
	r, _, _ := newTestRouter()

	w := do(t, r, http.MethodPatch, "/api/v1/devices/5", types.RenameDeviceRequest{Name: "porch"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.DeviceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "porch", resp.Device.Name)

	w = do(t, r, http.MethodPatch, "/api/v1/devices/7", types.RenameDeviceRequest{Name: "porch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/api/v1/devices/7", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveDevice(t *testing.T) {
	r, ctrl, _ := newTestRouter()

	w := do(t, r, http.MethodDelete, "/api/v1/devices/BinSwitch_05?force=true", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"5:true"}, ctrl.removed)

	w = do(t, r, http.MethodDelete, "/api/v1/devices/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeviceState(t *testing.T) {
	r, ctrl, _ := newTestRouter()

	w := do(t, r, http.MethodGet, "/api/v1/devices/7/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/devices/7/state", map[string]any{"level": 120})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "validation_error", errResp.Error)
	assert.Nil(t, ctrl.lastSet)

	w = do(t, r, http.MethodPost, "/api/v1/devices/7/state", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/devices/7/state", map[string]any{"level": 60})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 60, ctrl.lastSet["level"])
}

func TestDiscovery(t *testing.T) {
	r, ctrl, _ := newTestRouter()

	w := do(t, r, http.MethodPost, "/api/v1/discovery/start", types.StartDiscoveryRequest{DurationSeconds: 60})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60, ctrl.joinSecs)

	w = do(t, r, http.MethodPost, "/api/v1/discovery/start", types.StartDiscoveryRequest{DurationSeconds: 300})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/discovery/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 120, ctrl.joinSecs)

	w = do(t, r, http.MethodPost, "/api/v1/discovery/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, ctrl.joinSecs)

	ctrl.connected = false
	w = do(t, r, http.MethodPost, "/api/v1/discovery/stop", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUnits(t *testing.T) {
	r, _, _ := newTestRouter()

	w := do(t, r, http.MethodGet, "/api/v1/units", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list types.ListUnitsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, int64(2000), list.Units[0].PollPeriodMs)
	assert.Equal(t, int64(120), list.Units[1].LagMillis)
	assert.Equal(t, 2, list.Units[1].Retries)

	w = do(t, r, http.MethodGet, "/api/v1/units/7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/units/BinSwitch_05", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/units/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnitCommands(t *testing.T) {
	r, _, units := newTestRouter()

	w := do(t, r, http.MethodPost, "/api/v1/units/7/commands", types.UnitCommandRequest{Op: "ramp_start", Value1: unit.RampUp})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, unit.OpRampStart, units.lastOp)

	w = do(t, r, http.MethodPost, "/api/v1/units/7/commands", types.UnitCommandRequest{Op: "warp"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	units.err = fmt.Errorf("ramp_start on BinSwitch_05: %w", device.ErrUnsupported)
	w = do(t, r, http.MethodPost, "/api/v1/units/5/commands", types.UnitCommandRequest{Op: "ramp_start"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	units.err = fmt.Errorf("send: %w", device.ErrTimeout)
	w = do(t, r, http.MethodPost, "/api/v1/units/5/commands", types.UnitCommandRequest{Op: "off_on", Value1: 1})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	units.err = fmt.Errorf("%w: set_config_parameter value2=300: operand out of range", device.ErrValidation)
	w = do(t, r, http.MethodPost, "/api/v1/units/5/commands", types.UnitCommandRequest{Op: "set_config_parameter", Value1: 7, Value2: 300})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "validation_error", errResp.Error)

	units.err = nil
	w = do(t, r, http.MethodPost, "/api/v1/units/5/commands", types.UnitCommandRequest{Op: "delete_association", Value1: 1, Value2: 2})
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp types.UnitCommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp.Status)
}

func TestUnitsNotMounted(t *testing.T) {
	ctrl := newFakeController()
	r := NewRouter(ctrl, ctrl, nil, schema.NewValidator())

	w := do(t, r, http.MethodGet, "/api/v1/units", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetrics(t *testing.T) {
	r, _, _ := newTestRouter()

	do(t, r, http.MethodGet, "/api/v1/devices/99", nil)

	w := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, `zwhub_http_requests_total{method="GET",route="/api/v1/devices/:id",status="404"}`)
}
