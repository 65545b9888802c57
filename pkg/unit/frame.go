package unit

import (
	"errors"
	"fmt"
)

// Op is a generic driver operation a unit may be asked to encode.
type Op int

const (
	OpNone Op = iota

	// get ops
	OpGetReport
	OpGetGroupAssociation

	// set ops
	OpAddAssociation
	OpDeleteAssociation
	OpOffOn
	OpSetConfigParameter
	OpRampStart
	OpRampEnd
	OpSetLevel
)

var opNames = map[Op]string{
	OpGetReport:           "get_report",
	OpGetGroupAssociation: "get_group_association",
	OpAddAssociation:      "add_association",
	OpDeleteAssociation:   "delete_association",
	OpOffOn:               "off_on",
	OpSetConfigParameter:  "set_config_parameter",
	OpRampStart:           "ramp_start",
	OpRampEnd:             "ramp_end",
	OpSetLevel:            "set_level",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// ParseOp returns the op with the given name.
func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return OpNone, fmt.Errorf("unknown op %q", name)
}

// ErrOperandRange reports an operand too large for the byte it is sent in.
var ErrOperandRange = errors.New("operand out of range")

// byteOperands is how many leading operands an op encodes as single bytes.
var byteOperands = map[Op]int{
	OpGetGroupAssociation: 1,
	OpAddAssociation:      2,
	OpDeleteAssociation:   2,
	OpSetConfigParameter:  2,
}

// CheckOperands rejects operands that would be truncated on the wire.
func (o Op) CheckOperands(value1, value2 uint32) error {
	for i, v := range []uint32{value1, value2}[:byteOperands[o]] {
		if v > 0xFF {
			return fmt.Errorf("%s value%d=%d: %w", o, i+1, v, ErrOperandRange)
		}
	}
	return nil
}

// Ignored reports ops that are recognised but encode to nothing. Sending
// one does nothing and is not an error.
func (o Op) Ignored() bool {
	return o == OpDeleteAssociation
}

// Expect describes the report a get frame should provoke. For variable
// length reports Length is the minimum.
type Expect struct {
	Class   uint8
	Command uint8
	Length  int
}

// Frame is an encoded SendData request.
type Frame struct {
	Bytes  []byte
	Expect Expect
}

// Frame offsets
const (
	offsetUnitID    = 2
	offsetPayloadLn = 3
	offsetPayload   = 4
)

// Expected report sizes, counted from the command class byte.
const (
	basicReportLength       = 3
	associationReportLength = 5
)

// frameWriter builds a SendData frame. The payload length byte is a
// placeholder until finish patches it.
type frameWriter struct {
	buf []byte
}

func newFrameWriter(unitID uint8) *frameWriter {
	buf := make([]byte, 0, 16)
	buf = append(buf, FrameRequest, FuncSendData, unitID, 0)
	return &frameWriter{buf: buf}
}

func (w *frameWriter) command(class, cmd uint8, params ...uint8) *frameWriter {
	w.buf = append(w.buf, class, cmd)
	w.buf = append(w.buf, params...)
	return w
}

// finish patches the payload length, which covers the command class
// sub-frame only, then appends the transmit options and callback id.
func (w *frameWriter) finish(callbackID uint8) []byte {
	w.buf[offsetPayloadLn] = uint8(len(w.buf) - offsetPayload)
	w.buf = append(w.buf, DefaultTransmitOptions, callbackID)
	return w.buf
}

// BuildGetFrame encodes the generic get ops every unit supports.
func (u *Unit) BuildGetFrame(op Op, value1, value2 uint32, callbackID uint8) (Frame, bool) {
	if op.CheckOperands(value1, value2) != nil {
		return Frame{}, false
	}
	w := newFrameWriter(u.id)

	switch op {
	case OpGetReport:
		w.command(ClassBasic, CmdGet)
		return Frame{
			Bytes:  w.finish(callbackID),
			Expect: Expect{Class: ClassBasic, Command: CmdReport, Length: basicReportLength},
		}, true

	case OpGetGroupAssociation:
		w.command(ClassAssociation, CmdAssociationGet, uint8(value1))
		return Frame{
			Bytes:  w.finish(callbackID),
			Expect: Expect{Class: ClassAssociation, Command: CmdAssociationReport, Length: associationReportLength},
		}, true
	}

	return Frame{}, false
}

// BuildSetFrame encodes the generic set ops every unit supports.
func (u *Unit) BuildSetFrame(op Op, value1, value2 uint32, callbackID uint8) (Frame, bool) {
	if op.CheckOperands(value1, value2) != nil {
		return Frame{}, false
	}
	w := newFrameWriter(u.id)

	switch op {
	case OpAddAssociation:
		w.command(ClassAssociation, CmdAssociationSet, uint8(value1), uint8(value2))

	case OpDeleteAssociation:
		// See Op.Ignored.
		return Frame{}, false

	case OpOffOn:
		w.command(ClassBasic, CmdSet, onOffByte(value1))

	case OpSetConfigParameter:
		w.command(ClassConfiguration, CmdConfigurationSet, uint8(value1), 1, uint8(value2))

	default:
		return Frame{}, false
	}

	return Frame{Bytes: w.finish(callbackID)}, true
}

func onOffByte(v uint32) uint8 {
	if v == 0 {
		return 0x00
	}
	return 0xFF
}

// UnitID returns the addressed node of an encoded frame.
func (f Frame) UnitID() uint8 {
	if len(f.Bytes) <= offsetUnitID {
		return UnassignedID
	}
	return f.Bytes[offsetUnitID]
}

// PayloadLength returns the patched payload length byte of an encoded frame.
func (f Frame) PayloadLength() int {
	if len(f.Bytes) <= offsetPayloadLn {
		return 0
	}
	return int(f.Bytes[offsetPayloadLn])
}

// Payload returns the command class sub-frame of an encoded frame.
func (f Frame) Payload() []byte {
	n := f.PayloadLength()
	if len(f.Bytes) < offsetPayload+n {
		return nil
	}
	return f.Bytes[offsetPayload : offsetPayload+n]
}

// CallbackID returns the trailing callback id of an encoded frame.
func (f Frame) CallbackID() uint8 {
	if len(f.Bytes) == 0 {
		return 0
	}
	return f.Bytes[len(f.Bytes)-1]
}
