package device

import "context"

// Reader answers questions about devices without touching the network.
type Reader interface {
	ListDevices(ctx context.Context) ([]Device, error)
	// GetDevice looks a device up by id or by name.
	GetDevice(ctx context.Context, id string) (*Device, error)
	GetDeviceState(ctx context.Context, id string) (DeviceState, error)
}

// Writer changes devices. Calls that transmit block until the stick
// acknowledges or ctx ends.
type Writer interface {
	RenameDevice(ctx context.Context, id, newName string) error
	// RemoveDevice excludes the node from the network. With force the
	// device is dropped locally even if exclusion fails.
	RemoveDevice(ctx context.Context, id string, force bool) error
	SetDeviceState(ctx context.Context, id string, state map[string]any) (DeviceState, error)
}

// Controller is what the HTTP and MCP surfaces drive. The Z-Wave driver
// implements it over a USB stick; NullController stands in without one.
type Controller interface {
	Reader
	Writer

	// PermitJoin opens inclusion for duration seconds, or closes it.
	PermitJoin(ctx context.Context, enable bool, duration int) error
	IsConnected() bool
	Close()
}

// EventSubscriber fans controller events out to listeners. Slow listeners
// miss events rather than block the driver.
type EventSubscriber interface {
	Subscribe() chan DiscoveryEvent
	Unsubscribe(ch chan DiscoveryEvent)
}
