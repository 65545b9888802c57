package zwave

import (
	"errors"
	"fmt"
)

// Serial API preambles
const (
	preambleSOF uint8 = 0x01
	preambleACK uint8 = 0x06
	preambleNAK uint8 = 0x15
	preambleCAN uint8 = 0x18
)

// Packet types
const (
	TypeRequest  uint8 = 0x00
	TypeResponse uint8 = 0x01
)

// Serial API function ids
const (
	FuncSerialAPIGetInitData      uint8 = 0x02
	FuncApplicationCommandHandler uint8 = 0x04
	FuncSendData                  uint8 = 0x13
	FuncGetNodeProtocolInfo       uint8 = 0x41
	FuncRequestNodeInfo           uint8 = 0x60
	FuncApplicationUpdate         uint8 = 0x49
	FuncAddNodeToNetwork          uint8 = 0x4A
	FuncRemoveNodeFromNetwork     uint8 = 0x4B
	FuncRemoveFailedNode          uint8 = 0x61
)

const maxBodyLen = 0xFF - 3

var (
	ErrBadPreamble = errors.New("bad preamble")
	ErrBadLength   = errors.New("bad length")
	ErrBadType     = errors.New("bad packet type")
	ErrChecksum    = errors.New("checksum mismatch")
	ErrBodyTooLong = errors.New("packet body too long")
	ErrShortFrame  = errors.New("frame too short")
)

// Packet is one serial API frame. Single byte ACK, NAK and CAN frames only
// carry a preamble.
type Packet struct {
	Preamble uint8
	Type     uint8
	Function uint8
	Body     []byte
}

// NewRequest returns a SOF request packet.
func NewRequest(function uint8, body ...byte) *Packet {
	return &Packet{Preamble: preambleSOF, Type: TypeRequest, Function: function, Body: body}
}

// PacketFromFrame wraps an encoded unit frame, which starts with its own
// type and function bytes.
func PacketFromFrame(frame []byte) (*Packet, error) {
	if len(frame) < 2 {
		return nil, ErrShortFrame
	}
	body := make([]byte, len(frame)-2)
	copy(body, frame[2:])
	return &Packet{Preamble: preambleSOF, Type: frame[0], Function: frame[1], Body: body}, nil
}

// IsData reports whether p is a SOF frame rather than a single byte one.
func (p *Packet) IsData() bool {
	return p.Preamble == preambleSOF
}

func (p *Packet) String() string {
	switch p.Preamble {
	case preambleACK:
		return "ACK"
	case preambleNAK:
		return "NAK"
	case preambleCAN:
		return "CAN"
	}
	return fmt.Sprintf("SOF type=%02X func=%02X body=% X", p.Type, p.Function, p.Body)
}

// checksum covers everything after the SOF byte.
func checksum(length, typ, function uint8, body []byte) uint8 {
	sum := uint8(0xFF) ^ length ^ typ ^ function
	for _, b := range body {
		sum ^= b
	}
	return sum
}

// MarshalBinary encodes p for the wire.
func (p *Packet) MarshalBinary() ([]byte, error) {
	if !p.IsData() {
		return []byte{p.Preamble}, nil
	}
	if len(p.Body) > maxBodyLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrBodyTooLong, len(p.Body), maxBodyLen)
	}

	length := uint8(3 + len(p.Body))
	out := make([]byte, 0, len(p.Body)+5)
	out = append(out, preambleSOF, length, p.Type, p.Function)
	out = append(out, p.Body...)
	out = append(out, checksum(length, p.Type, p.Function, p.Body))
	return out, nil
}

type parseState int

const (
	stateSOF parseState = iota
	stateLength
	stateType
	stateFunction
	stateBody
	stateChecksum
)

// Parser decodes a serial byte stream one byte at a time. After an error it
// resets and picks up again at the next preamble.
type Parser struct {
	state  parseState
	length uint8
	pkt    *Packet
}

// Parse feeds one byte. It returns a packet once one is complete.
func (ps *Parser) Parse(b byte) (*Packet, error) {
	switch ps.state {
	case stateSOF:
		switch b {
		case preambleACK, preambleNAK, preambleCAN:
			return &Packet{Preamble: b}, nil
		case preambleSOF:
			ps.pkt = &Packet{Preamble: b}
			ps.state = stateLength
			return nil, nil
		}
		return nil, fmt.Errorf("%w: 0x%02X", ErrBadPreamble, b)

	case stateLength:
		if b < 3 {
			return nil, ps.reset(fmt.Errorf("%w: %d", ErrBadLength, b))
		}
		ps.length = b
		ps.state = stateType

	case stateType:
		if b != TypeRequest && b != TypeResponse {
			return nil, ps.reset(fmt.Errorf("%w: 0x%02X", ErrBadType, b))
		}
		ps.pkt.Type = b
		ps.state = stateFunction

	case stateFunction:
		ps.pkt.Function = b
		if ps.length == 3 {
			ps.state = stateChecksum
		} else {
			ps.pkt.Body = make([]byte, 0, ps.length-3)
			ps.state = stateBody
		}

	case stateBody:
		ps.pkt.Body = append(ps.pkt.Body, b)
		if len(ps.pkt.Body) == int(ps.length)-3 {
			ps.state = stateChecksum
		}

	case stateChecksum:
		pkt := ps.pkt
		want := checksum(ps.length, pkt.Type, pkt.Function, pkt.Body)
		if b != want {
			return nil, ps.reset(fmt.Errorf("%w: got 0x%02X want 0x%02X", ErrChecksum, b, want))
		}
		_ = ps.reset(nil)
		return pkt, nil
	}

	return nil, nil
}

func (ps *Parser) reset(err error) error {
	ps.state = stateSOF
	ps.length = 0
	ps.pkt = nil
	return err
}
