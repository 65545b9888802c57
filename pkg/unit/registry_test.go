package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBestMatch_DefaultTable(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		generic, specific uint8
		kind              Kind
	}{
		{GenericSensorBinary, SpecificRoutingSensorBinary, KindBinarySensor},
		{GenericSwitchBinary, SpecificPowerSwitchBinary, KindBinarySwitch},
		{GenericSwitchBinary, SpecificSceneSwitchBinary, KindBinarySwitch},
		{GenericEntryControl, SpecificSecureKeypadDoorLock, KindEntryControl},
		{GenericSwitchMultilevel, SpecificMotorMultipositionA, KindMultiLevelSwitch},
	}
	for _, tt := range tests {
		d := r.FindBestMatch(BasicRoutingSlave, tt.generic, tt.specific)
		require.NotNil(t, d)
		assert.Equal(t, tt.kind, d.Kind())
		assert.Equal(t, tt.specific, d.Base().SpecificClass())
		assert.Equal(t, UnassignedID, d.Base().ID())
	}
}

func TestFindBestMatch_ExactBeatsEarlierGeneric(t *testing.T) {
	r := NewRegistry(
		RegistryEntry{KindBinarySwitch, GenericSwitchMultilevel, 0x01},
		RegistryEntry{KindBinarySensor, GenericSwitchMultilevel, 0x02},
		RegistryEntry{KindMultiLevelSwitch, GenericSwitchMultilevel, 0x05},
	)

	e, match := r.Lookup(BasicSlave, GenericSwitchMultilevel, 0x05)
	assert.Equal(t, ExactMatch, match)
	assert.Equal(t, KindMultiLevelSwitch, e.Kind)

	d := r.FindBestMatch(BasicSlave, GenericSwitchMultilevel, 0x05)
	require.NotNil(t, d)
	assert.Equal(t, KindMultiLevelSwitch, d.Kind())
}

func TestFindBestMatch_FallsBackToFirstGeneric(t *testing.T) {
	r := NewRegistry(
		RegistryEntry{KindBinarySensor, GenericSensorBinary, 0x01},
		RegistryEntry{KindBinarySwitch, GenericSwitchBinary, 0x01},
		RegistryEntry{KindEntryControl, GenericSwitchBinary, 0x02},
	)

	e, match := r.Lookup(BasicSlave, GenericSwitchBinary, 0x09)
	assert.Equal(t, GenericMatch, match)
	assert.Equal(t, KindBinarySwitch, e.Kind)
}

func TestFindBestMatch_WildcardStopsAtFirstGeneric(t *testing.T) {
	r := NewRegistry(
		RegistryEntry{KindBinarySwitch, GenericSwitchBinary, 0x01},
		RegistryEntry{KindEntryControl, GenericSwitchBinary, 0x03},
		RegistryEntry{KindMultiLevelSwitch, GenericSwitchBinary, SpecificNotUsed},
	)

	e, match := r.Lookup(BasicSlave, GenericSwitchBinary, SpecificNotUsed)
	assert.Equal(t, GenericMatch, match)
	assert.Equal(t, KindBinarySwitch, e.Kind)

	d := r.FindBestMatch(BasicSlave, GenericSwitchBinary, SpecificNotUsed)
	require.NotNil(t, d)
	assert.Equal(t, KindBinarySwitch, d.Kind())
	assert.Equal(t, SpecificNotUsed, d.Base().SpecificClass())
}

func TestFindBestMatch_BaseGate(t *testing.T) {
	r := DefaultRegistry()
	for base := 0; base <= 0xFF; base++ {
		if uint8(base) == BasicSlave || uint8(base) == BasicRoutingSlave {
			continue
		}
		for _, e := range r.Entries() {
			assert.Nil(t, r.FindBestMatch(uint8(base), e.Generic, e.Specific))
		}
	}
}

func TestFindBestMatch_NoGeneric(t *testing.T) {
	r := DefaultRegistry()
	assert.Nil(t, r.FindBestMatch(BasicSlave, GenericSensorMultilevel, 0x01))
	assert.Nil(t, NewRegistry().FindBestMatch(BasicSlave, GenericSwitchBinary, 0x01))
}

func TestNew_UnknownKind(t *testing.T) {
	assert.Nil(t, New(Kind(0)))
	assert.Nil(t, New(Kind(77)))
}

func TestKindNames(t *testing.T) {
	for _, k := range []Kind{KindBinarySensor, KindBinarySwitch, KindEntryControl, KindMultiLevelSwitch} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
		assert.Equal(t, k, New(k).Kind())
	}
	_, err := ParseKind("toaster")
	assert.Error(t, err)
}
