package hub

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/zwhub/pkg/config"
	"github.com/urmzd/zwhub/pkg/db"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/zwave"
)

func TestOpen_WithoutStick(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath:     filepath.Join(dir, "zwhub.db"),
		SerialPort: filepath.Join(dir, "no-such-tty"),
	}

	h, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer h.Close()

	require.NotNil(t, h.Config)
	require.NotNil(t, h.Config.Profile)
	assert.Nil(t, h.Units)
	assert.IsType(t, &device.NullController{}, h.Controller)
	assert.False(t, h.Controller.IsConnected())
	assert.NotNil(t, h.Events)
}

func TestOpen_Twice(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath:     filepath.Join(dir, "zwhub.db"),
		SerialPort: filepath.Join(dir, "no-such-tty"),
	}

	h, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	profile := h.Config.Profile.ID
	h.Close()

	// second start skips bootstrap and finds the same profile
	h, err = Open(context.Background(), cfg)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, profile, h.Config.Profile.ID)
}

func TestSettings(t *testing.T) {
	assert.Equal(t, zwave.DefaultSettings(), Settings(nil))

	s := Settings(&db.ControllerSettings{
		PollPeriod:      5 * time.Second,
		PollInterval:    100 * time.Millisecond,
		MaxRetries:      4,
		ResponseTimeout: time.Second,
	})
	assert.Equal(t, 5*time.Second, s.PollPeriod)
	assert.Equal(t, 100*time.Millisecond, s.PollInterval)
	assert.Equal(t, 4, s.MaxRetries)
	assert.Equal(t, time.Second, s.ResponseTimeout)
}
