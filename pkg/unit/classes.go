package unit

// Serial API frame markers
const (
	FrameRequest  uint8 = 0x00
	FrameResponse uint8 = 0x01

	FuncSendData uint8 = 0x13
)

// Transmit options
const (
	TransmitACK       uint8 = 0x01
	TransmitLowPower  uint8 = 0x02
	TransmitAutoRoute uint8 = 0x04
	TransmitNoRoute   uint8 = 0x10
	TransmitExplore   uint8 = 0x20

	DefaultTransmitOptions = TransmitACK | TransmitAutoRoute
)

// Basic device types
const (
	BasicController       uint8 = 0x01
	BasicStaticController uint8 = 0x02
	BasicSlave            uint8 = 0x03
	BasicRoutingSlave     uint8 = 0x04
)

// Generic device classes
const (
	GenericSwitchBinary     uint8 = 0x10
	GenericSwitchMultilevel uint8 = 0x11
	GenericSensorBinary     uint8 = 0x20
	GenericSensorMultilevel uint8 = 0x21
	GenericEntryControl     uint8 = 0x40
)

// Specific device classes. SpecificNotUsed doubles as the wildcard.
const (
	SpecificNotUsed uint8 = 0x00

	SpecificPowerSwitchBinary uint8 = 0x01
	SpecificSceneSwitchBinary uint8 = 0x03

	SpecificPowerSwitchMultilevel uint8 = 0x01
	SpecificMotorMultipositionA   uint8 = 0x03
	SpecificSceneSwitchMultilevel uint8 = 0x04

	SpecificRoutingSensorBinary uint8 = 0x01

	SpecificDoorLock             uint8 = 0x01
	SpecificAdvancedDoorLock     uint8 = 0x02
	SpecificSecureKeypadDoorLock uint8 = 0x03
)

// Command classes
const (
	ClassBasic            uint8 = 0x20
	ClassSwitchBinary     uint8 = 0x25
	ClassSwitchMultilevel uint8 = 0x26
	ClassSensorBinary     uint8 = 0x30
	ClassConfiguration    uint8 = 0x70
	ClassLock             uint8 = 0x76
	ClassWakeUp           uint8 = 0x84
	ClassAssociation      uint8 = 0x85
)

// Commands shared by the set/get/report style classes (basic, binary
// switch, multilevel switch, sensor binary, lock).
const (
	CmdSet    uint8 = 0x01
	CmdGet    uint8 = 0x02
	CmdReport uint8 = 0x03
)

// Association commands
const (
	CmdAssociationSet    uint8 = 0x01
	CmdAssociationGet    uint8 = 0x02
	CmdAssociationReport uint8 = 0x03
	CmdAssociationRemove uint8 = 0x04
)

// Multilevel switch level change commands
const (
	CmdStartLevelChange uint8 = 0x04
	CmdStopLevelChange  uint8 = 0x05
)

// Configuration commands
const (
	CmdConfigurationSet uint8 = 0x04
)

// Wake up commands
const (
	CmdWakeUpNotification uint8 = 0x07
)

// ListeningFlag is the bit of the node capability byte reported by
// GetNodeProtocolInfo that marks an always-listening node.
const ListeningFlag uint8 = 0x80
