package unit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinarySensor_HandleFrame(t *testing.T) {
	tgt := newFakeTarget()
	s := NewBinarySensor()
	s.AssignID(0x04)
	s.BindFields(tgt)
	id := s.FieldIDs()["motion"]

	require.True(t, s.OwnsField(id))
	assert.False(t, tgt.defs[id].Writable())

	assert.True(t, s.HandleFrame(tgt, ClassBasic, CmdSet, []byte{0xFF}))
	assert.True(t, tgt.bools[id])
	require.Len(t, tgt.events, 1)
	assert.Equal(t, Event{Kind: EventMotion, Source: "motion", Value: "on", UnitID: 0x04, UnitName: "BinSensor_04"}, tgt.events[0])

	// same value, pollable: no new event
	assert.True(t, s.HandleFrame(tgt, ClassSensorBinary, CmdReport, []byte{0xFF}))
	assert.Len(t, tgt.events, 1)

	assert.True(t, s.HandleFrame(tgt, ClassBasic, CmdReport, []byte{0x00}))
	require.Len(t, tgt.events, 2)
	assert.Equal(t, "off", tgt.events[1].Value)

	assert.False(t, s.HandleFrame(tgt, ClassBasic, CmdGet, nil))
	assert.False(t, s.HandleFrame(tgt, ClassBasic, CmdReport, nil))
	assert.False(t, s.HandleFrame(tgt, ClassSwitchBinary, CmdReport, []byte{0xFF}))
}

func TestBinarySensor_AlwaysWriteWhenNotPollable(t *testing.T) {
	s := NewBinarySensor()
	assert.False(t, s.DescribeFields()[0].AlwaysWrite)

	s.SetWireFlags(0x00)
	assert.True(t, s.DescribeFields()[0].AlwaysWrite)

	tgt := newFakeTarget()
	s.BindFields(tgt)
	s.HandleFrame(tgt, ClassBasic, CmdSet, []byte{0xFF})
	s.HandleFrame(tgt, ClassBasic, CmdSet, []byte{0xFF})
	assert.Len(t, tgt.events, 2)
}

func TestBinarySensor_RejectsWrites(t *testing.T) {
	s := NewBinarySensor()
	_, err := s.CommandFor("motion", true)
	assert.True(t, errors.Is(err, ErrReadOnlyField))
	_, err = s.CommandFor("level", 3)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestBinarySwitch_HandleFrame(t *testing.T) {
	tgt := newFakeTarget()
	s := NewBinarySwitch()
	s.AssignID(0x0B)
	s.BindFields(tgt)
	id := s.FieldIDs()["state"]

	assert.True(t, tgt.defs[id].Writable())
	assert.True(t, s.HandleFrame(tgt, ClassSwitchBinary, CmdReport, []byte{0xFF}))
	require.Len(t, tgt.events, 1)
	assert.Equal(t, EventLoadChange, tgt.events[0].Kind)
	assert.Equal(t, "on", tgt.events[0].Value)
}

func TestBinarySwitch_CommandFor(t *testing.T) {
	s := NewBinarySwitch()

	cmd, err := s.CommandFor("state", true)
	require.NoError(t, err)
	assert.Equal(t, Command{Op: OpOffOn, Value1: 1}, cmd)

	cmd, err = s.CommandFor("state", "OFF")
	require.NoError(t, err)
	assert.Equal(t, Command{Op: OpOffOn, Value1: 0}, cmd)

	_, err = s.CommandFor("state", 12.5)
	assert.True(t, errors.Is(err, ErrBadValue))
}

func TestEntryControl_OffOnUsesLockClass(t *testing.T) {
	e := NewEntryControl()
	e.AssignID(0x11)

	for _, v1 := range []uint32{0, 1, 0xFF} {
		f, ok := e.BuildSetFrame(OpOffOn, v1, 0, 0x03)
		require.True(t, ok)
		payload := f.Payload()
		assert.Equal(t, ClassLock, payload[0])
		assert.NotEqual(t, ClassBasic, payload[0])
		assert.Equal(t, CmdSet, payload[1])
		if v1 == 0 {
			assert.Equal(t, uint8(0x00), payload[2])
		} else {
			assert.Equal(t, uint8(0x01), payload[2])
		}
		assertLengthPrefix(t, f)
	}

	// other ops still go through the shared builder
	f, ok := e.BuildSetFrame(OpSetConfigParameter, 1, 2, 0)
	require.True(t, ok)
	assert.Equal(t, ClassConfiguration, f.Payload()[0])

	f, ok = e.BuildGetFrame(OpGetReport, 0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, ClassBasic, f.Payload()[0])
}

func TestEntryControl_HandleFrame(t *testing.T) {
	tgt := newFakeTarget()
	e := NewEntryControl()
	e.AssignID(0x11)
	e.BindFields(tgt)
	id := e.FieldIDs()["locked"]

	assert.True(t, e.HandleFrame(tgt, ClassLock, CmdReport, []byte{0x01}))
	assert.True(t, tgt.bools[id])
	assert.True(t, e.HandleFrame(tgt, ClassBasic, CmdSet, []byte{0x00}))
	assert.False(t, tgt.bools[id])
	assert.True(t, e.HandleFrame(tgt, ClassWakeUp, CmdWakeUpNotification, nil))
	assert.Empty(t, tgt.events)

	assert.False(t, e.HandleFrame(tgt, ClassSwitchMultilevel, CmdReport, []byte{0x10}))
}

func TestMultiLevelSwitch_Ramp(t *testing.T) {
	m := NewMultiLevelSwitch()
	m.AssignID(0x06)

	f, ok := m.BuildSetFrame(OpRampStart, RampUp, 0, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{0x26, 0x04, 0x00, 0x00}, f.Payload())

	f, ok = m.BuildSetFrame(OpRampStart, RampDown, 0, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{0x26, 0x04, 0x40, 0x63}, f.Payload())

	f, ok = m.BuildSetFrame(OpRampEnd, 0, 0, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{0x26, 0x05}, f.Payload())
}

func TestMultiLevelSwitch_SetLevel(t *testing.T) {
	m := NewMultiLevelSwitch()
	m.AssignID(0x06)

	f, ok := m.BuildSetFrame(OpSetLevel, 42, 0, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{0x00, 0x13, 0x06, 0x03, 0x26, 0x01, 42, 0x05, 0x01}, f.Bytes)

	_, ok = m.BuildSetFrame(OpSetLevel, LevelRestore, 0, 1)
	assert.True(t, ok)

	_, ok = m.BuildSetFrame(OpSetLevel, 100, 0, 1)
	assert.False(t, ok)

	// shared ops come first
	f, ok = m.BuildSetFrame(OpOffOn, 1, 0, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{0x20, 0x01, 0xFF}, f.Payload())
}

func TestMultiLevelSwitch_HandleFrame(t *testing.T) {
	tgt := newFakeTarget()
	m := NewMultiLevelSwitch()
	m.BindFields(tgt)
	id := m.FieldIDs()["level"]

	assert.Equal(t, SemanticDimmer, tgt.defs[id].Semantic)
	assert.Equal(t, uint32(99), tgt.defs[id].Max)

	assert.True(t, m.HandleFrame(tgt, ClassSwitchMultilevel, CmdReport, []byte{37}))
	assert.Equal(t, uint32(37), tgt.cards[id])
	assert.True(t, m.HandleFrame(tgt, ClassBasic, CmdReport, []byte{0xFF}))
	assert.Equal(t, uint32(99), tgt.cards[id])
	assert.Empty(t, tgt.events)
}

func TestMultiLevelSwitch_CommandFor(t *testing.T) {
	m := NewMultiLevelSwitch()

	cmd, err := m.CommandFor("level", float64(60))
	require.NoError(t, err)
	assert.Equal(t, Command{Op: OpSetLevel, Value1: 60}, cmd)

	_, err = m.CommandFor("level", float64(120))
	assert.True(t, errors.Is(err, ErrBadValue))
	_, err = m.CommandFor("level", "high")
	assert.True(t, errors.Is(err, ErrBadValue))
	_, err = m.CommandFor("state", true)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestMarkFieldsInError(t *testing.T) {
	for _, d := range []Device{NewBinarySensor(), NewBinarySwitch(), NewEntryControl(), NewMultiLevelSwitch()} {
		tgt := newFakeTarget()
		d.BindFields(tgt)
		d.MarkFieldsInError(tgt)
		for _, id := range d.FieldIDs() {
			assert.True(t, tgt.errored[id], d.Kind().String())
			assert.True(t, d.OwnsField(id))
		}
		assert.False(t, d.OwnsField(NoField))
	}
}
