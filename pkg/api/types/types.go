package types

import (
	"encoding/json"
	"time"
)

// --- Request DTOs ---

// StartDiscoveryRequest is the request body for POST /discovery/start
type StartDiscoveryRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

// RenameDeviceRequest is the request body for PATCH /devices/:id
type RenameDeviceRequest struct {
	Name string `json:"name" binding:"required"`
}

// UnitCommandRequest is the request body for POST /units/:id/commands
type UnitCommandRequest struct {
	Op     string `json:"op" binding:"required" example:"ramp_start"`
	Value1 uint32 `json:"value1"`
	Value2 uint32 `json:"value2"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status     string         `json:"status"`
	Controller string         `json:"controller"`
	Units      map[string]int `json:"units,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ListDevicesResponse is returned from GET /devices
type ListDevicesResponse struct {
	Devices []DeviceWithState `json:"devices"`
	Count   int               `json:"count"`
}

// DeviceWithState combines device info with current state
type DeviceWithState struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Model       string          `json:"model,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
	Type        string          `json:"type"`
	StateSchema json.RawMessage `json:"state_schema,omitempty"`
	Exposes     json.RawMessage `json:"exposes,omitempty"`
	State       map[string]any  `json:"state,omitempty"`
}

// DeviceResponse is returned from GET /devices/:id
type DeviceResponse struct {
	Device DeviceWithState `json:"device"`
}

// StateResponse is returned from GET/POST /devices/:id/state
type StateResponse struct {
	Device    string         `json:"device"`
	State     map[string]any `json:"state"`
	Timestamp time.Time      `json:"timestamp"`
}

// StartDiscoveryResponse is returned from POST /discovery/start
type StartDiscoveryResponse struct {
	Status          string    `json:"status"`
	ExpiresAt       time.Time `json:"expires_at"`
	DurationSeconds int       `json:"duration_seconds"`
}

// StopDiscoveryResponse is returned from POST /discovery/stop
type StopDiscoveryResponse struct {
	Status string `json:"status"`
}

// UnitResponse is one entry of GET /units
type UnitResponse struct {
	ID           uint8     `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	TypeInfo     string    `json:"type_info"`
	Status       string    `json:"status"`
	Retries      int       `json:"retries"`
	LagMillis    int64     `json:"lag_ms"`
	PollPeriodMs int64     `json:"poll_period_ms"`
	NextPoll     time.Time `json:"next_poll"`
	Listening    bool      `json:"listening"`
	Capabilities []string  `json:"capabilities"`
	Generic      uint8     `json:"generic"`
	Specific     uint8     `json:"specific"`
}

// ListUnitsResponse is returned from GET /units
type ListUnitsResponse struct {
	Units []UnitResponse `json:"units"`
	Count int            `json:"count"`
}

// UnitCommandResponse is returned from POST /units/:id/commands
type UnitCommandResponse struct {
	Unit   string `json:"unit"`
	Op     string `json:"op"`
	Status string `json:"status"`
}
