package device

import "context"

var (
	_ Controller      = (*NullController)(nil)
	_ EventSubscriber = (*NullEventSubscriber)(nil)
)

// NullController serves the API when no Z-Wave stick could be opened.
// Reads come back empty and every write fails with ErrNotConnected.
type NullController struct{}

func NewNullController() *NullController {
	return &NullController{}
}

func (*NullController) ListDevices(context.Context) ([]Device, error) {
	return []Device{}, nil
}

func (*NullController) GetDevice(context.Context, string) (*Device, error) {
	return nil, ErrNotFound
}

func (*NullController) GetDeviceState(context.Context, string) (DeviceState, error) {
	return nil, ErrNotFound
}

func (*NullController) RenameDevice(context.Context, string, string) error {
	return ErrNotConnected
}

func (*NullController) RemoveDevice(context.Context, string, bool) error {
	return ErrNotConnected
}

func (*NullController) SetDeviceState(context.Context, string, map[string]any) (DeviceState, error) {
	return nil, ErrNotConnected
}

func (*NullController) PermitJoin(context.Context, bool, int) error {
	return ErrNotConnected
}

func (*NullController) IsConnected() bool { return false }
func (*NullController) Close()            {}

// NullEventSubscriber hands out channels that never receive.
type NullEventSubscriber struct{}

func NewNullEventSubscriber() *NullEventSubscriber {
	return &NullEventSubscriber{}
}

func (*NullEventSubscriber) Subscribe() chan DiscoveryEvent {
	return make(chan DiscoveryEvent)
}

func (*NullEventSubscriber) Unsubscribe(ch chan DiscoveryEvent) {
	close(ch)
}
