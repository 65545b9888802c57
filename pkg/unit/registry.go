package unit

import "fmt"

// Kind tags a unit variant.
type Kind uint8

const (
	KindBinarySensor Kind = iota + 1
	KindBinarySwitch
	KindEntryControl
	KindMultiLevelSwitch
)

var kindNames = map[Kind]string{
	KindBinarySensor:     "binary_sensor",
	KindBinarySwitch:     "binary_switch",
	KindEntryControl:     "entry_control",
	KindMultiLevelSwitch: "multilevel_switch",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown unit kind %q", name)
}

// New returns a default constructed unit of kind k, or nil for an unknown kind.
func New(k Kind) Device {
	switch k {
	case KindBinarySensor:
		return NewBinarySensor()
	case KindBinarySwitch:
		return NewBinarySwitch()
	case KindEntryControl:
		return NewEntryControl()
	case KindMultiLevelSwitch:
		return NewMultiLevelSwitch()
	}
	return nil
}

// RegistryEntry maps a device class pair to a unit kind.
type RegistryEntry struct {
	Kind     Kind
	Generic  uint8
	Specific uint8
}

// Registry resolves wire device descriptors to unit kinds. Entry order
// matters; see FindBestMatch.
type Registry struct {
	entries []RegistryEntry
}

// NewRegistry returns a registry scanning entries in the given order.
func NewRegistry(entries ...RegistryEntry) *Registry {
	return &Registry{entries: append([]RegistryEntry(nil), entries...)}
}

// DefaultRegistry returns the table of supported device classes.
func DefaultRegistry() *Registry {
	return NewRegistry(
		RegistryEntry{KindBinarySensor, GenericSensorBinary, SpecificNotUsed},
		RegistryEntry{KindBinarySensor, GenericSensorBinary, SpecificRoutingSensorBinary},
		RegistryEntry{KindBinarySwitch, GenericSwitchBinary, SpecificPowerSwitchBinary},
		RegistryEntry{KindBinarySwitch, GenericSwitchBinary, SpecificSceneSwitchBinary},
		RegistryEntry{KindEntryControl, GenericEntryControl, SpecificDoorLock},
		RegistryEntry{KindEntryControl, GenericEntryControl, SpecificSecureKeypadDoorLock},
		RegistryEntry{KindMultiLevelSwitch, GenericSwitchMultilevel, SpecificPowerSwitchMultilevel},
		RegistryEntry{KindMultiLevelSwitch, GenericSwitchMultilevel, SpecificSceneSwitchMultilevel},
		RegistryEntry{KindMultiLevelSwitch, GenericSwitchMultilevel, SpecificMotorMultipositionA},
	)
}

// Entries returns a copy of the table.
func (r *Registry) Entries() []RegistryEntry {
	return append([]RegistryEntry(nil), r.entries...)
}

// Lookup resolves a descriptor to a table entry.
//
// Only slave and routing slave nodes are considered. The first entry with a
// matching generic class is remembered. An entry matching the specific class
// as well wins at once, and so does the first generic match when the incoming
// specific class is SpecificNotUsed. Otherwise the scan carries on looking
// for an exact match and falls back to the first generic one.
func (r *Registry) Lookup(base, generic, specific uint8) (RegistryEntry, Match) {
	if !slaveBase(base) {
		return RegistryEntry{}, NoMatch
	}

	var (
		found RegistryEntry
		match = NoMatch
	)
	for _, e := range r.entries {
		if e.Generic != generic {
			continue
		}
		if e.Specific == specific {
			return e, ExactMatch
		}
		if match == NoMatch {
			found, match = e, GenericMatch
			if specific == SpecificNotUsed {
				break
			}
		}
	}
	return found, match
}

// FindBestMatch constructs a unit for the descriptor, or returns nil when no
// entry matches its generic class. A unit created from a generic match takes
// SpecificNotUsed as its specific class so it classifies as generic later.
func (r *Registry) FindBestMatch(base, generic, specific uint8) Device {
	e, match := r.Lookup(base, generic, specific)
	if match == NoMatch {
		return nil
	}
	d := New(e.Kind)
	if d == nil {
		return nil
	}
	b := d.Base()
	b.generic = e.Generic
	b.specific = e.Specific
	if match == GenericMatch {
		b.specific = SpecificNotUsed
	}
	return d
}
