package unit

import "fmt"

// BinarySensor is a motion or contact style sensor with one read-only bool.
type BinarySensor struct {
	Unit
	field FieldID
}

const fieldMotion = "motion"

// NewBinarySensor returns an unassigned binary sensor.
func NewBinarySensor() *BinarySensor {
	return &BinarySensor{
		Unit: newUnit("BinSensor", "Binary sensor", GenericSensorBinary,
			SpecificRoutingSensorBinary, CapPollable|CapBinaryPoll),
	}
}

func (s *BinarySensor) Kind() Kind { return KindBinarySensor }

func (s *BinarySensor) OwnsField(id FieldID) bool {
	return id != NoField && id == s.field
}

func (s *BinarySensor) DescribeFields() []FieldDef {
	return []FieldDef{{
		Name:        fieldMotion,
		Type:        FieldBool,
		Access:      AccessRead,
		Semantic:    SemanticMotion,
		AlwaysWrite: !s.HasCapability(CapPollable),
	}}
}

func (s *BinarySensor) BindFields(t Target) {
	s.field = t.RegisterField(s.id, s.DescribeFields()[0])
}

func (s *BinarySensor) FieldIDs() map[string]FieldID {
	return map[string]FieldID{fieldMotion: s.field}
}

func (s *BinarySensor) HandleFrame(t Target, class, cmd uint8, data []byte) bool {
	if !isValueMessage(class, cmd, ClassSensorBinary) || len(data) < 1 {
		return false
	}
	on := data[0] != 0
	if t.StoreBool(s.field, on) {
		t.TriggerEvent(Event{
			Kind:     EventMotion,
			Source:   fieldMotion,
			Value:    onOff(on),
			UnitID:   s.id,
			UnitName: s.name,
		})
	}
	return true
}

func (s *BinarySensor) MarkFieldsInError(t Target) {
	t.MarkFieldError(s.field)
}

func (s *BinarySensor) CommandFor(field string, value any) (Command, error) {
	if field == fieldMotion {
		return Command{}, fmt.Errorf("%s: %w", field, ErrReadOnlyField)
	}
	return Command{}, fmt.Errorf("%s: %w", field, ErrUnknownField)
}
