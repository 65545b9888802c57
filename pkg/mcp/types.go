package mcp

import (
	"encoding/json"

	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/zwave"
)

// --- Health Tool ---

// GetHealthInput is the input for the get_health tool
type GetHealthInput struct{}

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status     string         `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Controller string         `json:"controller" jsonschema:"description=Device controller connection status"`
	Units      map[string]int `json:"units,omitempty" jsonschema:"description=Unit count per status (ready, error, failed, missing)"`
	Timestamp  string         `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- List Devices Tool ---

// ListDevicesInput is the input for the list_devices tool
type ListDevicesInput struct{}

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	Devices []DeviceInfo `json:"devices" jsonschema:"description=List of paired devices"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// DeviceInfo represents a device in tool outputs
type DeviceInfo struct {
	ID           string          `json:"id" jsonschema:"description=Unique device identifier (Z-Wave node id)"`
	Name         string          `json:"name" jsonschema:"description=User-friendly device name"`
	Type         string          `json:"type" jsonschema:"description=Device type (light/switch/sensor/lock)"`
	Protocol     string          `json:"protocol" jsonschema:"description=Communication protocol"`
	Manufacturer string          `json:"manufacturer,omitempty" jsonschema:"description=Device manufacturer"`
	Model        string          `json:"model,omitempty" jsonschema:"description=Device model"`
	StateSchema  json.RawMessage `json:"state_schema,omitempty" jsonschema:"description=JSON Schema for settable state"`
	State        map[string]any  `json:"state,omitempty" jsonschema:"description=Current device state"`
}

// --- Get Device Tool ---

// GetDeviceInput is the input for the get_device tool
type GetDeviceInput struct {
	ID string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
}

// GetDeviceOutput is the output for the get_device tool
type GetDeviceOutput struct {
	Device DeviceInfo `json:"device" jsonschema:"description=Device information"`
}

// --- Rename Device Tool ---

// RenameDeviceInput is the input for the rename_device tool
type RenameDeviceInput struct {
	ID      string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or current friendly name"`
	NewName string `json:"new_name" jsonschema:"required,description=New friendly name for the device"`
}

// RenameDeviceOutput is the output for the rename_device tool
type RenameDeviceOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the rename succeeded"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Remove Device Tool ---

// RemoveDeviceInput is the input for the remove_device tool
type RemoveDeviceInput struct {
	ID    string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
	Force bool   `json:"force,omitempty" jsonschema:"description=Force removal even if device is unavailable"`
}

// RemoveDeviceOutput is the output for the remove_device tool
type RemoveDeviceOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the removal succeeded"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Get Device State Tool ---

// GetDeviceStateInput is the input for the get_device_state tool
type GetDeviceStateInput struct {
	ID string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
}

// GetDeviceStateOutput is the output for the get_device_state tool
type GetDeviceStateOutput struct {
	DeviceID string         `json:"device_id" jsonschema:"description=Device identifier"`
	State    map[string]any `json:"state" jsonschema:"description=Current device state"`
}

// --- Set Device State Tool ---

// SetDeviceStateInput is the input for the set_device_state tool
type SetDeviceStateInput struct {
	ID    string         `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
	State map[string]any `json:"state" jsonschema:"required,description=State properties to set (validated against device schema)"`
}

// SetDeviceStateOutput is the output for the set_device_state tool
type SetDeviceStateOutput struct {
	DeviceID string         `json:"device_id" jsonschema:"description=Device identifier"`
	State    map[string]any `json:"state" jsonschema:"description=New device state after the change"`
}

// --- Start Discovery Tool ---

// StartDiscoveryInput is the input for the start_discovery tool
type StartDiscoveryInput struct {
	DurationSeconds int `json:"duration_seconds,omitempty" jsonschema:"description=How long to enable pairing mode (default 120 seconds)"`
}

// StartDiscoveryOutput is the output for the start_discovery tool
type StartDiscoveryOutput struct {
	Success         bool   `json:"success" jsonschema:"description=Whether pairing mode was enabled"`
	Message         string `json:"message" jsonschema:"description=Status message"`
	DurationSeconds int    `json:"duration_seconds" jsonschema:"description=Duration pairing mode will be active"`
}

// --- Stop Discovery Tool ---

// StopDiscoveryInput is the input for the stop_discovery tool
type StopDiscoveryInput struct{}

// StopDiscoveryOutput is the output for the stop_discovery tool
type StopDiscoveryOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether pairing mode was disabled"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Turn On Tool ---

// TurnOnInput is the input for the turn_on tool
type TurnOnInput struct {
	ID    string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
	Level *int   `json:"level,omitempty" jsonschema:"description=Dimmer level 0-99 (optional)"`
}

// TurnOnOutput is the output for the turn_on tool
type TurnOnOutput struct {
	DeviceID string         `json:"device_id" jsonschema:"description=Device identifier"`
	State    map[string]any `json:"state" jsonschema:"description=New device state"`
}

// --- Turn Off Tool ---

// TurnOffInput is the input for the turn_off tool
type TurnOffInput struct {
	ID string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
}

// TurnOffOutput is the output for the turn_off tool
type TurnOffOutput struct {
	DeviceID string         `json:"device_id" jsonschema:"description=Device identifier"`
	State    map[string]any `json:"state" jsonschema:"description=New device state"`
}

// --- Set Level Tool ---

// SetLevelInput is the input for the set_level tool
type SetLevelInput struct {
	ID    string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
	Level int    `json:"level" jsonschema:"required,description=Dimmer level 0-99"`
}

// SetLevelOutput is the output for the set_level tool
type SetLevelOutput struct {
	DeviceID string         `json:"device_id" jsonschema:"description=Device identifier"`
	State    map[string]any `json:"state" jsonschema:"description=New device state"`
}

// --- Lock / Unlock Tools ---

// LockInput is the input for the lock and unlock tools
type LockInput struct {
	ID string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
}

// LockOutput is the output for the lock and unlock tools
type LockOutput struct {
	DeviceID string         `json:"device_id" jsonschema:"description=Device identifier"`
	State    map[string]any `json:"state" jsonschema:"description=New device state"`
}

// --- List Units Tool ---

// ListUnitsOutput is the output for the list_units tool
type ListUnitsOutput struct {
	Units []UnitSummary `json:"units" jsonschema:"description=Z-Wave units ordered by node id"`
	Count int           `json:"count" jsonschema:"description=Total number of units"`
}

// UnitSummary describes one unit in tool outputs
type UnitSummary struct {
	ID           uint8    `json:"id" jsonschema:"description=Z-Wave node id"`
	Name         string   `json:"name" jsonschema:"description=Unit name"`
	Kind         string   `json:"kind" jsonschema:"description=Unit kind"`
	Status       string   `json:"status" jsonschema:"description=ready, error, failed or missing"`
	Retries      int      `json:"retries" jsonschema:"description=Consecutive failed polls"`
	LagMillis    int64    `json:"lag_ms" jsonschema:"description=How late the last poll started"`
	PollPeriodMs int64    `json:"poll_period_ms" jsonschema:"description=Poll period"`
	Listening    bool     `json:"listening" jsonschema:"description=Whether the node keeps its receiver on"`
	Capabilities []string `json:"capabilities" jsonschema:"description=Capability flags"`
}

// --- Send Unit Command Tool ---

// SendUnitCommandInput is the input for the send_unit_command tool
type SendUnitCommandInput struct {
	ID     string `json:"id" jsonschema:"required,description=Device ID (Z-Wave node id) or friendly name"`
	Op     string `json:"op" jsonschema:"required,description=Operation name"`
	Value1 uint32 `json:"value1,omitempty" jsonschema:"description=First operand"`
	Value2 uint32 `json:"value2,omitempty" jsonschema:"description=Second operand"`
}

// SendUnitCommandOutput is the output for the send_unit_command tool
type SendUnitCommandOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the frame was accepted by the stick"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Helper conversions ---

// DeviceToInfo converts a device.Device to DeviceInfo
func DeviceToInfo(d *device.Device) DeviceInfo {
	return DeviceInfo{
		ID:           d.ID,
		Name:         d.Name,
		Type:         d.Type,
		Protocol:     d.Protocol,
		Manufacturer: d.Manufacturer,
		Model:        d.Model,
		StateSchema:  d.StateSchema,
	}
}

// UnitToSummary converts a zwave.UnitInfo to UnitSummary
func UnitToSummary(u zwave.UnitInfo) UnitSummary {
	return UnitSummary{
		ID:           u.ID,
		Name:         u.Name,
		Kind:         u.Kind,
		Status:       u.Status,
		Retries:      u.Retries,
		LagMillis:    u.Lag.Milliseconds(),
		PollPeriodMs: u.PollPeriod.Milliseconds(),
		Listening:    u.Listening,
		Capabilities: u.Capabilities,
	}
}
