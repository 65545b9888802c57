package zwave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/zwhub/pkg/device"
)

const (
	linkMaxRetries     = 3
	linkACKTimeout     = 1600 * time.Millisecond
	linkRetryBackoff   = 100 * time.Millisecond
	readTimeout        = 200 * time.Millisecond
	incomingBufferSize = 32
)

var (
	// ErrNoACK indicates the stick never acknowledged a frame
	ErrNoACK = errors.New("no ACK from controller")

	// ErrLinkClosed indicates the link was closed
	ErrLinkClosed = errors.New("link closed")
)

// Link handles serial API framing, acknowledgement and retransmission over
// a byte stream.
type Link struct {
	port    io.ReadWriteCloser
	writeMu sync.Mutex

	// one request in flight at a time
	reqMu sync.Mutex

	acks      chan uint8
	responses chan *Packet
	incoming  chan *Packet

	stopChan chan struct{}
	stopped  bool
	stopMu   sync.Mutex
	done     chan struct{}

	ackTimeout time.Duration
}

// NewLink starts a link over port. The reader goroutine runs until Close.
func NewLink(port io.ReadWriteCloser) *Link {
	l := &Link{
		port:       port,
		acks:       make(chan uint8, 1),
		responses:  make(chan *Packet, 1),
		incoming:   make(chan *Packet, incomingBufferSize),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		ackTimeout: linkACKTimeout,
	}
	go l.readLoop()

	return l
}

// Incoming returns the channel of unsolicited requests from the stick:
// application commands, node updates and callbacks.
func (l *Link) Incoming() <-chan *Packet {
	return l.incoming
}

// IsConnected reports whether the link is running.
func (l *Link) IsConnected() bool {
	l.stopMu.Lock()
	defer l.stopMu.Unlock()
	return !l.stopped
}

// Close stops the reader and closes the port.
func (l *Link) Close() error {
	if !l.shutdown() {
		return nil
	}
	err := l.port.Close()
	<-l.done
	return err
}

// shutdown marks the link stopped and reports whether this call did it.
func (l *Link) shutdown() bool {
	l.stopMu.Lock()
	defer l.stopMu.Unlock()
	if l.stopped {
		return false
	}
	l.stopped = true
	close(l.stopChan)
	return true
}

// Request writes p, retrying until the stick ACKs it. When wantResponse is
// set it then waits for a RESPONSE frame with the same function id.
func (l *Link) Request(ctx context.Context, p *Packet, wantResponse bool) (*Packet, error) {
	frame, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}

	l.reqMu.Lock()
	defer l.reqMu.Unlock()

	if !l.IsConnected() {
		return nil, ErrLinkClosed
	}
	l.drain()

	if err := l.send(ctx, frame); err != nil {
		return nil, err
	}
	if !wantResponse {
		return nil, nil
	}

	for {
		select {
		case resp := <-l.responses:
			if resp.Function == p.Function {
				return resp, nil
			}
			log.Debug().Stringer("packet", resp).Msg("Dropping unexpected response")
		case <-ctx.Done():
			return nil, fmt.Errorf("response to 0x%02X: %w", p.Function, device.ErrTimeout)
		case <-l.stopChan:
			return nil, ErrLinkClosed
		}
	}
}

func (l *Link) send(ctx context.Context, frame []byte) error {
	for attempt := 0; attempt <= linkMaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Int("attempt", attempt).Hex("frame", frame).Msg("Retransmitting frame")
			select {
			case <-time.After(linkRetryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		l.writeMu.Lock()
		_, err := l.port.Write(frame)
		l.writeMu.Unlock()
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		metrics.frames.WithLabelValues("tx").Inc()

		timer := time.NewTimer(l.ackTimeout)
		select {
		case a := <-l.acks:
			timer.Stop()
			if a == preambleACK {
				return nil
			}
			log.Debug().Uint8("preamble", a).Msg("Frame rejected")
		case <-timer.C:
			log.Debug().Msg("ACK timeout")
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-l.stopChan:
			timer.Stop()
			return ErrLinkClosed
		}
	}
	return ErrNoACK
}

// drain discards stale acknowledgements and responses left over from a
// request that gave up.
func (l *Link) drain() {
	for {
		select {
		case <-l.acks:
		case <-l.responses:
		default:
			return
		}
	}
}

func (l *Link) readLoop() {
	defer close(l.done)

	var parser Parser
	buf := make([]byte, 256)

	for {
		select {
		case <-l.stopChan:
			return
		default:
		}

		n, err := l.port.Read(buf)
		if err != nil {
			if !l.IsConnected() {
				return
			}
			if errors.Is(err, io.EOF) {
				log.Error().Msg("Serial port closed unexpectedly")
				l.shutdown()
				return
			}
			log.Error().Err(err).Msg("Serial read error")
			continue
		}

		for _, b := range buf[:n] {
			p, err := parser.Parse(b)
			if err != nil {
				log.Warn().Err(err).Msg("Serial API parse error")
				if errors.Is(err, ErrChecksum) {
					l.write([]byte{preambleNAK})
				}
				continue
			}
			if p != nil {
				l.dispatch(p)
			}
		}
	}
}

func (l *Link) dispatch(p *Packet) {
	if !p.IsData() {
		select {
		case l.acks <- p.Preamble:
		default:
			log.Debug().Stringer("packet", p).Msg("Unsolicited acknowledgement")
		}
		return
	}

	metrics.frames.WithLabelValues("rx").Inc()
	l.write([]byte{preambleACK})

	if p.Type == TypeResponse {
		select {
		case l.responses <- p:
		default:
			log.Warn().Stringer("packet", p).Msg("Response channel full, dropping frame")
		}
		return
	}

	select {
	case l.incoming <- p:
	default:
		log.Warn().Stringer("packet", p).Msg("Incoming channel full, dropping frame")
	}
}

func (l *Link) write(b []byte) {
	l.writeMu.Lock()
	_, err := l.port.Write(b)
	l.writeMu.Unlock()
	if err != nil && l.IsConnected() {
		log.Error().Err(err).Msg("Serial write failed")
	}
}
