package db

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// Bootstrap provisions an active "default" profile on first run. It is a
// no-op once any profile exists.
func (db *DB) Bootstrap(ctx context.Context) error {
	needs, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check profiles: %w", err)
	}
	if !needs {
		return nil
	}

	profile := &Profile{Name: "default", Timezone: detectTimezone(), IsActive: true}
	ctrl := &ControllerSettings{SerialPort: defaultSerialPort()}
	if err := db.Profiles().Provision(ctx, profile, nil, ctrl); err != nil {
		return fmt.Errorf("failed to provision default profile: %w", err)
	}
	return nil
}

// defaultSerialPort guesses where the Z-Wave stick shows up.
func defaultSerialPort() string {
	if runtime.GOOS == "darwin" {
		return "/dev/cu.usbmodem1401"
	}
	return "/dev/ttyACM0"
}

// detectTimezone returns the IANA zone of the host: $TZ, then
// /etc/timezone, then the /etc/localtime link target. It falls back to UTC.
func detectTimezone() string {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		if tz := strings.TrimSpace(string(data)); tz != "" {
			return tz
		}
	}
	if link, err := os.Readlink("/etc/localtime"); err == nil {
		if _, tz, ok := strings.Cut(link, "zoneinfo/"); ok {
			return tz
		}
	}
	return "UTC"
}

// NeedsBootstrap returns true if the database needs initial setup.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
