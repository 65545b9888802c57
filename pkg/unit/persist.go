package unit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// RecordVersion is the current persisted record format.
const RecordVersion uint16 = 1

const (
	recordStart uint8 = 0xA5
	recordEnd   uint8 = 0x5A
)

// MarshalBinary encodes the persisted part of the unit: id, name, status,
// wire flags and poll period. The retry count is not stored.
func (u *Unit) MarshalBinary() ([]byte, error) {
	if len(u.name) > math.MaxUint16 {
		return nil, fmt.Errorf("unit name is %d bytes long", len(u.name))
	}

	var buf bytes.Buffer
	buf.WriteByte(recordStart)
	_ = binary.Write(&buf, binary.LittleEndian, RecordVersion)
	buf.WriteByte(u.id)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(u.name)))
	buf.WriteString(u.name)
	buf.WriteByte(uint8(u.status))
	buf.WriteByte(u.zwFlags)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(u.pollPeriod))
	buf.WriteByte(recordEnd)
	return buf.Bytes(), nil
}

// UnmarshalBinary restores a record written by MarshalBinary. A format
// version other than RecordVersion yields a *FormatVersionError. The retry
// count is reset.
func (u *Unit) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	marker, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if marker != recordStart {
		return fmt.Errorf("%w: start marker 0x%02X", ErrBadRecord, marker)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: version: %v", ErrBadRecord, err)
	}
	if version == 0 || version != RecordVersion {
		return &FormatVersionError{Version: version, TypeName: u.typeName}
	}

	var rec struct {
		id         uint8
		name       string
		status     uint8
		flags      uint8
		pollPeriod uint64
	}
	if rec.id, err = r.ReadByte(); err != nil {
		return fmt.Errorf("%w: id: %v", ErrBadRecord, err)
	}
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return fmt.Errorf("%w: name length: %v", ErrBadRecord, err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return fmt.Errorf("%w: name: %v", ErrBadRecord, err)
	}
	rec.name = string(name)
	if rec.status, err = r.ReadByte(); err != nil {
		return fmt.Errorf("%w: status: %v", ErrBadRecord, err)
	}
	if !Status(rec.status).valid() {
		return fmt.Errorf("%w: status %d", ErrBadRecord, rec.status)
	}
	if rec.flags, err = r.ReadByte(); err != nil {
		return fmt.Errorf("%w: flags: %v", ErrBadRecord, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.pollPeriod); err != nil {
		return fmt.Errorf("%w: poll period: %v", ErrBadRecord, err)
	}
	if rec.pollPeriod > math.MaxInt64 {
		return fmt.Errorf("%w: poll period out of range", ErrBadRecord)
	}

	marker, err = r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if marker != recordEnd {
		return fmt.Errorf("%w: end marker 0x%02X", ErrBadRecord, marker)
	}

	u.id = rec.id
	u.name = rec.name
	u.status = Status(rec.status)
	u.zwFlags = rec.flags
	u.pollPeriod = time.Duration(rec.pollPeriod)
	u.retries = 0
	return nil
}
