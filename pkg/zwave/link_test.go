package zwave

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/zwhub/pkg/device"
)

// fakePort is an in-memory serial port. The test plays the stick: it feeds
// bytes the link reads and takes the bytes the link writes.
type fakePort struct {
	rx     chan []byte
	tx     chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{
		rx:     make(chan []byte, 16),
		tx:     make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (p *fakePort) Read(buf []byte) (int, error) {
	select {
	case b := <-p.rx:
		return copy(buf, b), nil
	case <-p.closed:
		return 0, io.EOF
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	cp := append([]byte(nil), b...)
	select {
	case p.tx <- cp:
		return len(b), nil
	case <-p.closed:
		return 0, io.ErrClosedPipe
	}
}

func (p *fakePort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *fakePort) feed(t *testing.T, pkt *Packet) {
	t.Helper()
	b, err := pkt.MarshalBinary()
	require.NoError(t, err)
	p.rx <- b
}

func (p *fakePort) nextWrite(t *testing.T) []byte {
	t.Helper()
	select {
	case b := <-p.tx:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a write")
		return nil
	}
}

var (
	ack = &Packet{Preamble: preambleACK}
	nak = &Packet{Preamble: preambleNAK}
)

type requestResult struct {
	resp *Packet
	err  error
}

func startRequest(ctx context.Context, l *Link, p *Packet, wantResponse bool) <-chan requestResult {
	done := make(chan requestResult, 1)
	go func() {
		resp, err := l.Request(ctx, p, wantResponse)
		done <- requestResult{resp, err}
	}()
	return done
}

func waitResult(t *testing.T, done <-chan requestResult) requestResult {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("request did not return")
		return requestResult{}
	}
}

func newTestLink(t *testing.T) (*Link, *fakePort) {
	t.Helper()
	port := newFakePort()
	l := NewLink(port)
	t.Cleanup(func() { _ = l.Close() })
	return l, port
}

func TestLink_RequestResponse(t *testing.T) {
	l, port := newTestLink(t)
	req := NewRequest(FuncSerialAPIGetInitData)
	want, err := req.MarshalBinary()
	require.NoError(t, err)

	done := startRequest(context.Background(), l, req, true)
	assert.Equal(t, want, port.nextWrite(t))

	port.feed(t, ack)
	port.feed(t, &Packet{Preamble: preambleSOF, Type: TypeResponse, Function: FuncSerialAPIGetInitData, Body: []byte{0x05, 0x00, 0x1D}})

	r := waitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, []byte{0x05, 0x00, 0x1D}, r.resp.Body)

	// the response is acknowledged
	assert.Equal(t, []byte{preambleACK}, port.nextWrite(t))
	assert.True(t, l.IsConnected())
}

func TestLink_RetransmitsAfterNAK(t *testing.T) {
	l, port := newTestLink(t)
	req := NewRequest(FuncSendData, 0x07, 0x02, 0x20, 0x02, 0x05, 0x01)
	want, err := req.MarshalBinary()
	require.NoError(t, err)

	done := startRequest(context.Background(), l, req, false)
	assert.Equal(t, want, port.nextWrite(t))
	port.feed(t, nak)
	assert.Equal(t, want, port.nextWrite(t))
	port.feed(t, ack)

	r := waitResult(t, done)
	require.NoError(t, r.err)
	assert.Nil(t, r.resp)
}

func TestLink_NoACK(t *testing.T) {
	l, port := newTestLink(t)
	l.ackTimeout = 10 * time.Millisecond

	done := startRequest(context.Background(), l, NewRequest(FuncSerialAPIGetInitData), false)
	for i := 0; i <= linkMaxRetries; i++ {
		port.nextWrite(t)
	}

	r := waitResult(t, done)
	assert.ErrorIs(t, r.err, ErrNoACK)
}

func TestLink_ResponseTimeout(t *testing.T) {
	l, port := newTestLink(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	done := startRequest(ctx, l, NewRequest(FuncGetNodeProtocolInfo, 0x05), true)
	port.nextWrite(t)
	port.feed(t, ack)

	r := waitResult(t, done)
	assert.ErrorIs(t, r.err, device.ErrTimeout)
}

func TestLink_IncomingRequest(t *testing.T) {
	l, port := newTestLink(t)

	port.feed(t, NewRequest(FuncApplicationCommandHandler, 0x00, 0x05, 0x03, 0x20, 0x03, 0xFF))

	select {
	case p := <-l.Incoming():
		assert.Equal(t, FuncApplicationCommandHandler, p.Function)
		assert.Equal(t, []byte{0x00, 0x05, 0x03, 0x20, 0x03, 0xFF}, p.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("no incoming packet")
	}
	assert.Equal(t, []byte{preambleACK}, port.nextWrite(t))
}

func TestLink_NAKsBadChecksum(t *testing.T) {
	_, port := newTestLink(t)

	frame, err := NewRequest(FuncApplicationUpdate, 0x84, 0x05).MarshalBinary()
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0xFF
	port.rx <- frame

	assert.Equal(t, []byte{preambleNAK}, port.nextWrite(t))
}

func TestLink_Close(t *testing.T) {
	l, _ := newTestLink(t)

	require.NoError(t, l.Close())
	assert.False(t, l.IsConnected())
	require.NoError(t, l.Close())

	_, err := l.Request(context.Background(), NewRequest(FuncSerialAPIGetInitData), false)
	assert.ErrorIs(t, err, ErrLinkClosed)
}
