package unit

// FieldID identifies a field in the driver's field storage.
type FieldID uint32

// NoField marks an unbound field slot.
const NoField FieldID = 0

// FieldType is the value type of a field.
type FieldType int

const (
	FieldBool FieldType = iota
	FieldCard
)

func (t FieldType) String() string {
	if t == FieldCard {
		return "card"
	}
	return "bool"
}

// Access describes who may write a field.
type Access int

const (
	AccessRead Access = iota
	AccessReadWrite
)

// Semantic hints at what a field means to clients.
type Semantic string

const (
	SemanticMotion Semantic = "motion"
	SemanticSwitch Semantic = "switch"
	SemanticLock   Semantic = "lock"
	SemanticDimmer Semantic = "dimmer"
)

// FieldDef describes one field a unit exposes.
type FieldDef struct {
	Name     string
	Type     FieldType
	Access   Access
	Semantic Semantic
	// AlwaysWrite makes the store raise a change even when the stored value
	// repeats. Set for units that cannot be polled, since every report they
	// send is news.
	AlwaysWrite bool
	Min, Max    uint32
}

// Writable reports whether clients may write the field.
func (d FieldDef) Writable() bool {
	return d.Access == AccessReadWrite
}

// EventKind names an event a unit can trigger.
type EventKind string

const (
	EventMotion     EventKind = "motion"
	EventLoadChange EventKind = "load_change"
)

// Event is a change notification raised by a unit through its driver.
type Event struct {
	Kind     EventKind
	Source   string
	Value    string
	UnitID   uint8
	UnitName string
}

// Target is the driver side a unit works against. Units never keep a
// reference to it; it is passed into each call that needs it.
type Target interface {
	// RegisterField creates storage for def on behalf of unit and returns its id.
	RegisterField(unitID uint8, def FieldDef) FieldID

	// StoreBool writes a bool field, clears its error flag and reports
	// whether the value changed. Clearing the error flag alone is not a
	// change.
	StoreBool(id FieldID, value bool) bool

	// StoreCard writes a card field, clears its error flag and reports
	// whether the value changed.
	StoreCard(id FieldID, value uint32) bool

	// MarkFieldError flags a field's value as unreliable.
	MarkFieldError(id FieldID)

	// TriggerEvent dispatches an event.
	TriggerEvent(ev Event)
}
