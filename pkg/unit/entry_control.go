package unit

import "fmt"

// EntryControl is a door lock. Its bool field is true when locked.
type EntryControl struct {
	Unit
	field FieldID
}

const fieldLocked = "locked"

// NewEntryControl returns an unassigned entry control unit.
func NewEntryControl() *EntryControl {
	return &EntryControl{
		Unit: newUnit("EntryCtrl", "Entry control", GenericEntryControl,
			SpecificDoorLock, CapPollable|CapBinaryPoll),
	}
}

func (e *EntryControl) Kind() Kind { return KindEntryControl }

// BuildSetFrame sends OffOn as a lock set. A basic set must never reach a
// lock, so OffOn is handled here before the shared ops.
func (e *EntryControl) BuildSetFrame(op Op, value1, value2 uint32, callbackID uint8) (Frame, bool) {
	if op == OpOffOn {
		var locked uint8
		if value1 != 0 {
			locked = 0x01
		}
		w := newFrameWriter(e.id).command(ClassLock, CmdSet, locked)
		return Frame{Bytes: w.finish(callbackID)}, true
	}
	return e.Unit.BuildSetFrame(op, value1, value2, callbackID)
}

func (e *EntryControl) OwnsField(id FieldID) bool {
	return id != NoField && id == e.field
}

func (e *EntryControl) DescribeFields() []FieldDef {
	return []FieldDef{{
		Name:     fieldLocked,
		Type:     FieldBool,
		Access:   AccessReadWrite,
		Semantic: SemanticLock,
	}}
}

func (e *EntryControl) BindFields(t Target) {
	e.field = t.RegisterField(e.id, e.DescribeFields()[0])
}

func (e *EntryControl) FieldIDs() map[string]FieldID {
	return map[string]FieldID{fieldLocked: e.field}
}

// HandleFrame stores basic and lock values. Wake up notifications are
// consumed and dropped. No event is raised for lock changes.
func (e *EntryControl) HandleFrame(t Target, class, cmd uint8, data []byte) bool {
	if class == ClassWakeUp {
		return true
	}
	if !isValueMessage(class, cmd, ClassLock) || len(data) < 1 {
		return false
	}
	t.StoreBool(e.field, data[0] != 0)
	return true
}

func (e *EntryControl) MarkFieldsInError(t Target) {
	t.MarkFieldError(e.field)
}

func (e *EntryControl) CommandFor(field string, value any) (Command, error) {
	if field != fieldLocked {
		return Command{}, fmt.Errorf("%s: %w", field, ErrUnknownField)
	}
	return boolCommand(value)
}
