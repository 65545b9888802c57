package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/unit"
)

func dimmerSchema() json.RawMessage {
	return FromFields(unit.NewMultiLevelSwitch().DescribeFields())
}

func lockSchema() json.RawMessage {
	return FromFields(unit.NewEntryControl().DescribeFields())
}

func TestValidate_ValidLevel(t *testing.T) {
	v := NewValidator()

	err := v.Validate(dimmerSchema(), map[string]any{"level": float64(42)})
	if err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
}

func TestValidate_LevelOutOfRange(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(dimmerSchema(), map[string]any{"level": float64(100)}); err == nil {
		t.Error("expected validation error for level above 99")
	}
	if err := v.Validate(dimmerSchema(), map[string]any{"level": float64(-1)}); err == nil {
		t.Error("expected validation error for negative level")
	}
}

func TestValidate_LevelNotInteger(t *testing.T) {
	v := NewValidator()

	err := v.Validate(dimmerSchema(), map[string]any{"level": float64(12.5)})
	if err == nil {
		t.Error("expected validation error for fractional level")
	}
}

func TestValidate_LockWords(t *testing.T) {
	v := NewValidator()
	schema := lockSchema()

	for _, value := range []any{true, false, "locked", "unlocked"} {
		if err := v.Validate(schema, map[string]any{"locked": value}); err != nil {
			t.Errorf("expected %v to be valid, got: %v", value, err)
		}
	}
	if err := v.Validate(schema, map[string]any{"locked": "on"}); err == nil {
		t.Error("expected validation error for switch word on a lock")
	}
}

func TestValidate_SwitchWords(t *testing.T) {
	v := NewValidator()
	schema := FromFields(unit.NewBinarySwitch().DescribeFields())

	if err := v.Validate(schema, map[string]any{"state": "on"}); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
	if err := v.Validate(schema, map[string]any{"state": float64(1)}); err == nil {
		t.Error("expected validation error for numeric state")
	}
}

func TestValidate_ReadOnlyField(t *testing.T) {
	v := NewValidator()
	schema := FromFields(unit.NewBinarySensor().DescribeFields())

	err := v.Validate(schema, map[string]any{"motion": true})
	if err == nil {
		t.Error("expected validation error writing a read-only field")
	}
}

func TestValidate_UnknownProperty(t *testing.T) {
	v := NewValidator()

	err := v.Validate(dimmerSchema(), map[string]any{
		"level":   float64(10),
		"unknown": "value",
	})
	if err == nil {
		t.Error("expected validation error for unknown property")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	// Empty schema means no validation
	err := v.Validate(json.RawMessage(`{}`), map[string]any{
		"anything": "goes",
	})
	if err != nil {
		t.Errorf("empty schema should skip validation, got: %v", err)
	}
}

func TestValidate_NilSchema(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(nil, map[string]any{"anything": "goes"}); err != nil {
		t.Errorf("nil schema should skip validation, got: %v", err)
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(lockSchema(), map[string]any{"locked": true}); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(lockSchema(), map[string]any{"locked": false}); err != nil {
		t.Fatal(err)
	}

	v.mu.Lock()
	cacheSize := len(v.cache)
	v.mu.Unlock()
	if cacheSize != 1 {
		t.Errorf("expected 1 cached schema, got %d", cacheSize)
	}
}

func TestFromFields_OnlyWritable(t *testing.T) {
	var doc struct {
		Properties           map[string]json.RawMessage `json:"properties"`
		AdditionalProperties bool                       `json:"additionalProperties"`
	}
	if err := json.Unmarshal(FromFields(unit.NewBinarySensor().DescribeFields()), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Properties) != 0 {
		t.Errorf("expected no writable properties, got %v", doc.Properties)
	}
	if doc.AdditionalProperties {
		t.Error("expected additionalProperties false")
	}
}

func TestValidate_ErrorKinds(t *testing.T) {
	v := NewValidator()

	err := v.Validate(dimmerSchema(), map[string]any{"level": float64(250)})
	if !errors.Is(err, device.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}

	err = v.Validate(json.RawMessage(`{"type": 12}`), map[string]any{"level": float64(1)})
	if err == nil || errors.Is(err, device.ErrValidation) {
		t.Errorf("expected a schema error, got: %v", err)
	}
}
