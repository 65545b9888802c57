// Package config loads process level settings from the environment and an
// optional YAML file. Per-profile settings live in the database.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const envPrefix = "zwhub"

// Config is the process configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	DBPath   string `mapstructure:"db_path"`

	// SerialPort overrides the port stored in the active profile.
	SerialPort string     `mapstructure:"serial_port"`
	MQTT       MQTTConfig `mapstructure:"mqtt"`
}

// MQTTConfig configures the event publisher. An empty Host disables it.
type MQTTConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	ClientID  string `mapstructure:"client_id"`
	BaseTopic string `mapstructure:"base_topic"`
}

// Enabled reports whether a broker is configured.
func (c MQTTConfig) Enabled() bool {
	return c.Host != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("db_path", "")
	v.SetDefault("serial_port", "")
	v.SetDefault("mqtt.host", "")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.base_topic", "zwhub")
}

// Load reads ZWHUB_* environment variables, plus the YAML file named by
// ZWHUB_CONFIG_FILE when it is set.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile := os.Getenv("ZWHUB_CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, err
	}
	cfg.MQTT.BaseTopic = baseTopic

	return &cfg, nil
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

var topicPattern = regexp.MustCompile("^[a-z0-9_]+$")

// CheckMQTTTopic lower-cases a base topic and rejects anything but
// letters, digits and underscores.
func CheckMQTTTopic(baseTopic string) (string, error) {
	lower := strings.ToLower(baseTopic)
	if !topicPattern.MatchString(lower) {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lower, nil
}
