package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/urmzd/zwhub/pkg/device"
)

// Validator checks state writes against a device's state schema. Compiled
// schemas are cached by document; every unit of a kind shares one.
type Validator struct {
	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{cache: make(map[string]*jsonschema.Schema)}
}

// Validate returns nil when payload satisfies schemaDoc. An empty document
// accepts anything. Payload failures wrap device.ErrValidation; a schema
// that does not compile is reported as is.
func (v *Validator) Validate(schemaDoc json.RawMessage, payload map[string]any) error {
	switch string(bytes.TrimSpace(schemaDoc)) {
	case "", "{}", "null":
		return nil
	}

	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return err
	}
	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", device.ErrValidation, err)
	}
	return nil
}

func (v *Validator) compile(schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaDoc)

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDoc))
	if err != nil {
		return nil, fmt.Errorf("state schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("state.json", doc); err != nil {
		return nil, fmt.Errorf("state schema: %w", err)
	}
	s, err := c.Compile("state.json")
	if err != nil {
		return nil, fmt.Errorf("compile state schema: %w", err)
	}

	v.cache[key] = s
	return s, nil
}
