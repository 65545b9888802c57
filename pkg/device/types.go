package device

import (
	"encoding/json"
	"time"
)

// Device is the surface view of one network node. For Z-Wave the ID is the
// decimal node id and Name defaults to the unit name (BinSwitch_07).
type Device struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Protocol     string          `json:"protocol"`
	Manufacturer string          `json:"manufacturer"`
	Model        string          `json:"model"`
	StateSchema  json.RawMessage `json:"state_schema"` // JSON Schema a state write must satisfy
	Exposes      json.RawMessage `json:"exposes"`      // kind, status, capabilities and field names
}

// DeviceState maps field names to their last known values.
type DeviceState map[string]any

// DiscoveryEvent is one message on the controller event stream. Data
// carries the node for joins and unit, field and value for state changes.
type DiscoveryEvent struct {
	Type      string         `json:"type"`
	Device    *Device        `json:"device,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

const (
	EventDeviceJoining = "device_joining"
	EventDeviceJoined  = "device_joined"
	EventDeviceLeft    = "device_left"
	EventStateChanged  = "state_changed"
	EventUnitEvent     = "unit_event"
)

const ProtocolZWave = "zwave"

// Device types. A unit kind maps onto exactly one of them.
const (
	DeviceTypeLight  = "light"
	DeviceTypeSwitch = "switch"
	DeviceTypeSensor = "sensor"
	DeviceTypeLock   = "lock"
)
