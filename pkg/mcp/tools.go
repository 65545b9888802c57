package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// Health check
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the health status of the zwhub service and device controller connectivity"),
		),
		s.handleGetHealth,
	)

	// List devices
	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List all paired devices with their current state"),
		),
		s.handleListDevices,
	)

	// Get device
	s.mcpServer.AddTool(
		mcp.NewTool("get_device",
			mcp.WithDescription("Get detailed information about a specific device by ID or friendly name"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
		),
		s.handleGetDevice,
	)

	// Rename device
	s.mcpServer.AddTool(
		mcp.NewTool("rename_device",
			mcp.WithDescription("Change a device's friendly name"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or current friendly name"),
			),
			mcp.WithString("new_name",
				mcp.Required(),
				mcp.Description("New friendly name for the device"),
			),
		),
		s.handleRenameDevice,
	)

	// Remove device
	s.mcpServer.AddTool(
		mcp.NewTool("remove_device",
			mcp.WithDescription("Remove a device from the network. Without force the controller waits for the device's exclusion button to be pressed."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
			mcp.WithBoolean("force",
				mcp.Description("Drop a failed device without its cooperation (default false)"),
			),
		),
		s.handleRemoveDevice,
	)

	// Get device state
	s.mcpServer.AddTool(
		mcp.NewTool("get_device_state",
			mcp.WithDescription("Get the current state of a device (state, level, motion, locked)"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
		),
		s.handleGetDeviceState,
	)

	// Set device state
	s.mcpServer.AddTool(
		mcp.NewTool("set_device_state",
			mcp.WithDescription("Set the state of a device. Pass device-specific properties validated against the device's schema."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
			mcp.WithObject("state",
				mcp.Required(),
				mcp.Description("State properties to set (e.g. {\"state\": \"on\"} or {\"level\": 50})"),
			),
		),
		s.handleSetDeviceState,
	)

	// Start discovery
	s.mcpServer.AddTool(
		mcp.NewTool("start_discovery",
			mcp.WithDescription("Enable pairing mode to allow new devices to join the network"),
			mcp.WithNumber("duration_seconds",
				mcp.Description("How long to enable pairing mode in seconds (default 120, at most 254)"),
			),
		),
		s.handleStartDiscovery,
	)

	// Stop discovery
	s.mcpServer.AddTool(
		mcp.NewTool("stop_discovery",
			mcp.WithDescription("Disable pairing mode"),
		),
		s.handleStopDiscovery,
	)

	// Turn on (convenience)
	s.mcpServer.AddTool(
		mcp.NewTool("turn_on",
			mcp.WithDescription("Turn on a switch or dimmer, optionally setting the dimmer level"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
			mcp.WithNumber("level",
				mcp.Description("Dimmer level 0-99 (optional, dimmers only)"),
			),
		),
		s.handleTurnOn,
	)

	// Turn off (convenience)
	s.mcpServer.AddTool(
		mcp.NewTool("turn_off",
			mcp.WithDescription("Turn off a switch or dimmer"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
		),
		s.handleTurnOff,
	)

	// Dimmer level
	s.mcpServer.AddTool(
		mcp.NewTool("set_level",
			mcp.WithDescription("Set a dimmer to a level between 0 (off) and 99 (full)"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
			mcp.WithNumber("level",
				mcp.Required(),
				mcp.Description("Dimmer level 0-99"),
			),
		),
		s.handleSetLevel,
	)

	// Door locks
	s.mcpServer.AddTool(
		mcp.NewTool("lock",
			mcp.WithDescription("Lock an entry control device"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
		),
		s.handleLock,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("unlock",
			mcp.WithDescription("Unlock an entry control device"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
		),
		s.handleUnlock,
	)

	if s.units == nil {
		return
	}

	// Unit diagnostics
	s.mcpServer.AddTool(
		mcp.NewTool("list_units",
			mcp.WithDescription("List Z-Wave units with status, retry count, poll lag and capabilities"),
		),
		s.handleListUnits,
	)

	// Raw unit operation
	s.mcpServer.AddTool(
		mcp.NewTool("send_unit_command",
			mcp.WithDescription("Send a unit operation such as ramp_start, ramp_end, add_association or set_config_parameter"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID (Z-Wave node id) or friendly name"),
			),
			mcp.WithString("op",
				mcp.Required(),
				mcp.Description("Operation name"),
				mcp.Enum("get_report", "get_group_association", "add_association", "delete_association",
					"off_on", "set_config_parameter", "ramp_start", "ramp_end", "set_level"),
			),
			mcp.WithNumber("value1",
				mcp.Description("First operand (group, parameter number, on/off, direction or level)"),
			),
			mcp.WithNumber("value2",
				mcp.Description("Second operand (target node or parameter value)"),
			),
		),
		s.handleSendUnitCommand,
	)
}
