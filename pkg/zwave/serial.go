package zwave

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// stickMode is the serial API framing: 115200 baud, 8N1, no flow control.
var stickMode = &serial.Mode{
	BaudRate: 115200,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

// SerialPort is the USB stick's serial device. Writes are serialised;
// reads belong to the link's reader goroutine.
type SerialPort struct {
	port serial.Port
	mu   sync.Mutex
}

// OpenSerial opens the stick at portPath and drops whatever the stick
// buffered before we attached.
func OpenSerial(portPath string) (*SerialPort, error) {
	port, err := serial.Open(portPath, stickMode)
	if err != nil {
		if candidates := CandidatePorts(); len(candidates) > 0 {
			log.Info().Strs("candidates", candidates).Msg("Serial ports that look like a stick")
		}
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}

	// Reads time out so the reader goroutine can notice Close.
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		log.Warn().Err(err).Str("port", portPath).Msg("Could not flush serial input")
	}

	log.Info().Str("port", portPath).Msg("Serial port opened")
	return &SerialPort{port: port}, nil
}

// CandidatePorts lists serial devices named like USB CDC or USB serial
// adapters, which is how Z-Wave sticks enumerate.
func CandidatePorts() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range ports {
		if isStickName(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func isStickName(path string) bool {
	for _, prefix := range []string{"/dev/ttyACM", "/dev/ttyUSB", "/dev/cu.usbmodem", "/dev/cu.usbserial", "COM"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (s *SerialPort) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Write(data)
}

// Read returns 0, nil when the read timeout expires.
func (s *SerialPort) Read(buf []byte) (int, error) {
	return s.port.Read(buf)
}

func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
