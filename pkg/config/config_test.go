package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ZWHUB_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, "zwhub", cfg.MQTT.BaseTopic)
	assert.False(t, cfg.MQTT.Enabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ZWHUB_CONFIG_FILE", "")
	t.Setenv("ZWHUB_LOG_LEVEL", "debug")
	t.Setenv("ZWHUB_SERIAL_PORT", "/dev/ttyUSB1")
	t.Setenv("ZWHUB_MQTT_HOST", "broker.local")
	t.Setenv("ZWHUB_MQTT_BASE_TOPIC", "Home_ZWave")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, "/dev/ttyUSB1", cfg.SerialPort)
	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, "broker.local", cfg.MQTT.Host)
	assert.Equal(t, "home_zwave", cfg.MQTT.BaseTopic)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zwhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: warn
db_path: /var/lib/zwhub/zwhub.db
mqtt:
  host: 10.0.0.2
  port: 8883
  username: hub
  password: secret
`), 0o600))
	t.Setenv("ZWHUB_CONFIG_FILE", path)
	t.Setenv("ZWHUB_MQTT_PORT", "1884")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
	assert.Equal(t, "/var/lib/zwhub/zwhub.db", cfg.DBPath)
	assert.Equal(t, "10.0.0.2", cfg.MQTT.Host)
	assert.Equal(t, "hub", cfg.MQTT.Username)
	// environment wins over the file
	assert.Equal(t, 1884, cfg.MQTT.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("ZWHUB_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadTopic(t *testing.T) {
	t.Setenv("ZWHUB_CONFIG_FILE", "")
	t.Setenv("ZWHUB_MQTT_BASE_TOPIC", "zw/hub")

	_, err := Load()
	assert.Error(t, err)
}

func TestLevel_Fallback(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}
