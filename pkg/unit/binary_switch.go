package unit

import "fmt"

// BinarySwitch is an on/off load switch.
type BinarySwitch struct {
	Unit
	field FieldID
}

const fieldState = "state"

// NewBinarySwitch returns an unassigned binary switch.
func NewBinarySwitch() *BinarySwitch {
	return &BinarySwitch{
		Unit: newUnit("BinSwitch", "Binary switch", GenericSwitchBinary,
			SpecificPowerSwitchBinary, CapPollable|CapBinaryPoll),
	}
}

func (s *BinarySwitch) Kind() Kind { return KindBinarySwitch }

func (s *BinarySwitch) OwnsField(id FieldID) bool {
	return id != NoField && id == s.field
}

func (s *BinarySwitch) DescribeFields() []FieldDef {
	return []FieldDef{{
		Name:        fieldState,
		Type:        FieldBool,
		Access:      AccessReadWrite,
		Semantic:    SemanticSwitch,
		AlwaysWrite: !s.HasCapability(CapPollable),
	}}
}

func (s *BinarySwitch) BindFields(t Target) {
	s.field = t.RegisterField(s.id, s.DescribeFields()[0])
}

func (s *BinarySwitch) FieldIDs() map[string]FieldID {
	return map[string]FieldID{fieldState: s.field}
}

func (s *BinarySwitch) HandleFrame(t Target, class, cmd uint8, data []byte) bool {
	if !isValueMessage(class, cmd, ClassSwitchBinary) || len(data) < 1 {
		return false
	}
	on := data[0] != 0
	if t.StoreBool(s.field, on) {
		t.TriggerEvent(Event{
			Kind:     EventLoadChange,
			Source:   fieldState,
			Value:    onOff(on),
			UnitID:   s.id,
			UnitName: s.name,
		})
	}
	return true
}

func (s *BinarySwitch) MarkFieldsInError(t Target) {
	t.MarkFieldError(s.field)
}

func (s *BinarySwitch) CommandFor(field string, value any) (Command, error) {
	if field != fieldState {
		return Command{}, fmt.Errorf("%s: %w", field, ErrUnknownField)
	}
	return boolCommand(value)
}
