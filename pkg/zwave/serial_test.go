package zwave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStickName(t *testing.T) {
	for _, p := range []string{"/dev/ttyACM0", "/dev/ttyUSB1", "/dev/cu.usbmodem1401", "COM3"} {
		assert.True(t, isStickName(p), p)
	}
	for _, p := range []string{"/dev/ttyS0", "/dev/tty", "/dev/cu.Bluetooth-Incoming-Port"} {
		assert.False(t, isStickName(p), p)
	}
}
