package zwave

import (
	"time"

	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/unit"
)

// target is the controller as seen by its units. Every call happens with
// c.mu held; publishing is queued until it is released.
type target struct {
	c *Controller
}

func (t target) RegisterField(unitID uint8, def unit.FieldDef) unit.FieldID {
	return t.c.fields.register(unitID, def)
}

func (t target) StoreBool(id unit.FieldID, value bool) bool   { return t.store(id, value) }
func (t target) StoreCard(id unit.FieldID, value uint32) bool { return t.store(id, value) }

func (t target) store(id unit.FieldID, value any) bool {
	c := t.c
	f, changed, republish := c.fields.store(id, value)
	if f == nil || !republish {
		return changed
	}

	d, ok := c.units[f.unitID]
	if !ok {
		return changed
	}
	unitName, fieldName := d.Base().Name(), f.def.Name
	c.after(func() {
		c.sink.PublishField(unitName, fieldName, value)
		c.publishEvent(device.DiscoveryEvent{
			Type: device.EventStateChanged,
			Data: map[string]any{
				"unit":  unitName,
				"field": fieldName,
				"value": value,
			},
			Timestamp: time.Now(),
		})
	})
	return changed
}

func (t target) MarkFieldError(id unit.FieldID) {
	t.c.fields.markError(id)
}

func (t target) TriggerEvent(ev unit.Event) {
	c := t.c
	c.after(func() {
		c.sink.PublishEvent(ev)
		c.publishEvent(device.DiscoveryEvent{
			Type: device.EventUnitEvent,
			Data: map[string]any{
				"kind":    string(ev.Kind),
				"source":  ev.Source,
				"value":   ev.Value,
				"unit":    ev.UnitName,
				"unit_id": ev.UnitID,
			},
			Timestamp: time.Now(),
		})
	})
}
