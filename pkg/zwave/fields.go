package zwave

import (
	"sort"

	"github.com/urmzd/zwhub/pkg/unit"
)

// field is the stored value of one unit field.
type field struct {
	id      unit.FieldID
	unitID  uint8
	def     unit.FieldDef
	value   any
	set     bool
	inError bool
}

// fieldStore holds every field the driver's units registered. It is guarded
// by the controller mutex.
type fieldStore struct {
	next   unit.FieldID
	fields map[unit.FieldID]*field
}

func newFieldStore() *fieldStore {
	return &fieldStore{fields: make(map[unit.FieldID]*field)}
}

func (s *fieldStore) register(unitID uint8, def unit.FieldDef) unit.FieldID {
	s.next++
	s.fields[s.next] = &field{id: s.next, unitID: unitID, def: def}
	return s.next
}

// store writes v. changed reports a new value, a first write or an
// always-write field; units raise events on it. republish is changed or a
// field leaving error, so listeners see it recover.
func (s *fieldStore) store(id unit.FieldID, v any) (f *field, changed, republish bool) {
	f, ok := s.fields[id]
	if !ok {
		return nil, false, false
	}
	changed = !f.set || f.value != v || f.def.AlwaysWrite
	republish = changed || f.inError
	f.value = v
	f.set = true
	f.inError = false
	return f, changed, republish
}

func (s *fieldStore) markError(id unit.FieldID) {
	if f, ok := s.fields[id]; ok {
		f.inError = true
	}
}

func (s *fieldStore) forUnit(unitID uint8) []*field {
	var out []*field
	for _, f := range s.fields {
		if f.unitID == unitID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *fieldStore) dropUnit(unitID uint8) {
	for id, f := range s.fields {
		if f.unitID == unitID {
			delete(s.fields, id)
		}
	}
}
