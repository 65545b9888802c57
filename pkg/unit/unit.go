// Package unit models individual Z-Wave devices. A unit turns generic driver
// operations into Z-Wave command class frames and maps incoming reports onto
// field updates and events of the driver that owns it.
//
// Units are not safe for concurrent use. The driver serialises access.
package unit

import (
	"fmt"
	"strings"
	"time"
)

// UnassignedID is the id of a unit that has not been given a node address yet.
const UnassignedID uint8 = 0xFF

// DefaultPollPeriod is the poll period of a freshly constructed unit.
const DefaultPollPeriod = 2 * time.Second

// now is swapped out in tests.
var now = time.Now

// Device is the behaviour every unit variant provides on top of the shared
// Unit state.
type Device interface {
	// Base returns the shared unit state.
	Base() *Unit

	// Kind returns the variant tag.
	Kind() Kind

	// BuildGetFrame encodes a get op. handled is false when neither the
	// variant nor the base can encode it; the frame must not be sent.
	BuildGetFrame(op Op, value1, value2 uint32, callbackID uint8) (Frame, bool)

	// BuildSetFrame encodes a set op, with the same handled contract.
	BuildSetFrame(op Op, value1, value2 uint32, callbackID uint8) (Frame, bool)

	// OwnsField reports whether id is bound to this unit.
	OwnsField(id FieldID) bool

	// BindFields registers the unit's fields with t.
	BindFields(t Target)

	// DescribeFields lists the fields the unit exposes.
	DescribeFields() []FieldDef

	// HandleFrame applies an incoming command class message and reports
	// whether the unit consumed it.
	HandleFrame(t Target, class, cmd uint8, data []byte) bool

	// MarkFieldsInError flags every field of the unit as unreliable.
	MarkFieldsInError(t Target)

	// FieldIDs maps field names to their bound ids.
	FieldIDs() map[string]FieldID

	// CommandFor maps a write of a field to a set op.
	CommandFor(field string, value any) (Command, error)
}

// Command is a set op with its arguments.
type Command struct {
	Op     Op
	Value1 uint32
	Value2 uint32
}

// Unit is the state shared by all variants.
type Unit struct {
	id       uint8
	name     string
	typeName string
	typeInfo string

	generic  uint8
	specific uint8

	caps    Capabilities
	zwFlags uint8
	status  Status
	retries int

	lastPoll   time.Time
	pollPeriod time.Duration
	lag        time.Duration
}

func newUnit(typeName, typeInfo string, generic, specific uint8, caps Capabilities) Unit {
	return Unit{
		id:         UnassignedID,
		typeName:   typeName,
		typeInfo:   typeInfo,
		generic:    generic,
		specific:   specific,
		caps:       caps,
		status:     StatusReady,
		pollPeriod: DefaultPollPeriod,
	}
}

// Base returns u. Variants embed Unit, so this satisfies Device for them.
func (u *Unit) Base() *Unit { return u }

func (u *Unit) ID() uint8                     { return u.id }
func (u *Unit) Name() string                  { return u.name }
func (u *Unit) TypeName() string              { return u.typeName }
func (u *Unit) TypeInfo() string              { return u.typeInfo }
func (u *Unit) GenericClass() uint8           { return u.generic }
func (u *Unit) SpecificClass() uint8          { return u.specific }
func (u *Unit) Capabilities() Capabilities    { return u.caps }
func (u *Unit) WireFlags() uint8              { return u.zwFlags }
func (u *Unit) Status() Status                { return u.status }
func (u *Unit) PollPeriod() time.Duration     { return u.pollPeriod }
func (u *Unit) LastPollTime() time.Time       { return u.lastPoll }
func (u *Unit) LagTime() time.Duration        { return u.lag }
func (u *Unit) NextPollTime() time.Time       { return u.lastPoll.Add(u.pollPeriod) }
func (u *Unit) SetName(name string)           { u.name = name }
func (u *Unit) SetPollPeriod(d time.Duration) { u.pollPeriod = d }

// AssignID sets the node address. The first assignment to an unnamed unit
// also gives it a default name such as "BinSwitch_07".
func (u *Unit) AssignID(id uint8) {
	u.id = id
	if u.name == "" {
		u.name = fmt.Sprintf("%s_%02X", u.typeName, id)
	}
}

var topicLevelReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")

// TopicLevel is name as it appears in a single MQTT topic level: slashes,
// wildcards and spaces become underscores.
func TopicLevel(name string) string {
	return topicLevelReplacer.Replace(name)
}

// HasCapability reports whether every bit of flag is set.
func (u *Unit) HasCapability(flag Capabilities) bool {
	return u.caps.Has(flag)
}

// AddCapability sets flag. Used when discovery learns the unit supports an
// optional command class.
func (u *Unit) AddCapability(flag Capabilities) {
	u.caps |= flag
}

// IsListening reports whether the node keeps its radio on.
func (u *Unit) IsListening() bool {
	return u.zwFlags&ListeningFlag != 0
}

// Classify compares a wire device descriptor against the unit's own classes.
func (u *Unit) Classify(base, generic, specific uint8) Match {
	if !slaveBase(base) || generic != u.generic {
		return NoMatch
	}
	if specific == u.specific {
		return ExactMatch
	}
	if u.specific == SpecificNotUsed {
		return GenericMatch
	}
	return NoMatch
}

func (u *Unit) IncrementRetryCount() int {
	u.retries++
	return u.retries
}

func (u *Unit) RetryCount() int     { return u.retries }
func (u *Unit) SetRetryCount(n int) { u.retries = n }

func (u *Unit) setStatus(s Status) {
	u.status = s
	u.retries = 0
}

// SetFailedState marks the unit failed.
func (u *Unit) SetFailedState() {
	u.setStatus(StatusFailed)
}

// SetMissingState marks the unit missing from the controller's node list.
func (u *Unit) SetMissingState() {
	u.setStatus(StatusMissing)
}

// SetReadyState marks the unit ready. A unit with a poll period starts a
// fresh poll interval.
func (u *Unit) SetReadyState() {
	u.setStatus(StatusReady)
	if u.pollPeriod != 0 {
		u.lastPoll = now()
	}
}

// SetErrorState marks d in error and has t flag all of its fields.
func SetErrorState(d Device, t Target) {
	d.Base().setStatus(StatusError)
	d.MarkFieldsInError(t)
}

// SetWireFlags stores the node capability byte. A node that does not listen
// loses CapPollable. Setting the flag again later does not give it back.
func (u *Unit) SetWireFlags(flags uint8) {
	u.zwFlags = flags
	if flags&ListeningFlag == 0 {
		u.caps &^= CapPollable
	}
}

// MarkPolled restarts the poll interval at the current time.
func (u *Unit) MarkPolled() {
	u.lastPoll = now()
}

// ForcePoll makes the unit due on the next poll pass.
func (u *Unit) ForcePoll() {
	u.lastPoll = time.Time{}
}

// IsDue reports whether a poll is due at t.
func (u *Unit) IsDue(t time.Time) bool {
	return u.pollPeriod != 0 && !t.Before(u.NextPollTime())
}

// RecordLagTime records how far past its scheduled time the current poll runs.
func (u *Unit) RecordLagTime() time.Duration {
	lag := now().Sub(u.NextPollTime())
	if lag < 0 {
		lag = 0
	}
	u.lag = lag
	return lag
}

// Equal compares the persisted identity of two units. Retry counts and
// field bindings are ignored.
func (u *Unit) Equal(o *Unit) bool {
	if u == nil || o == nil {
		return u == o
	}
	return u.id == o.id &&
		u.name == o.name &&
		u.status == o.status &&
		u.zwFlags == o.zwFlags &&
		u.pollPeriod == o.pollPeriod
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s(%s id=%02X status=%s)", u.typeName, u.name, u.id, u.status)
}

func slaveBase(base uint8) bool {
	return base == BasicSlave || base == BasicRoutingSlave
}
