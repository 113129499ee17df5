// internal/packet/flags.go
package packet

import (
	"fmt"
	"strings"
)

// Command is the frame's command id.
type Command uint8

const (
	Nothing      Command = 0
	RetrieveInfo Command = 1
	SetInfo      Command = 2
	ButtonPress  Command = 3
	Reserved     Command = 4
	Shutdown     Command = 5
)

func (c Command) String() string {
	switch c {
	case Nothing:
		return "NOTHING"
	case RetrieveInfo:
		return "RETRIEVE_INFO"
	case SetInfo:
		return "SET_INFO"
	case ButtonPress:
		return "BUTTON_PRESS"
	case Reserved:
		return "RESERVED"
	case Shutdown:
		return "SHUTDOWN"
	default:
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
}

// DataFlags selects which fields a frame carries.
type DataFlags uint16

const (
	FlagSerialNumber DataFlags = 1 << iota
	FlagProbeNames
	FlagSensor1Temperature
	FlagSensor1HighLimit
	FlagSensor1LowLimit
	FlagSensor1Trim
	FlagSensor2Temperature
	FlagSensor2HighLimit
	FlagSensor2LowLimit
	FlagSensor2Trim
	FlagBatteryCondition
	FlagCalValue1
	FlagCalValue2
	FlagCalValue3
	FlagFirmwareVersion
	FlagTypes
)

const (
	FlagsNone    DataFlags = 0
	FlagsDefault           = FlagSerialNumber | FlagProbeNames | FlagSensor1Temperature |
		FlagSensor2Temperature | FlagBatteryCondition
)

var flagNames = []string{
	"SERIAL_NUMBER",
	"PROBE_NAMES",
	"SENSOR_1_TEMPERATURE",
	"SENSOR_1_HIGH_LIMIT",
	"SENSOR_1_LOW_LIMIT",
	"SENSOR_1_TRIM",
	"SENSOR_2_TEMPERATURE",
	"SENSOR_2_HIGH_LIMIT",
	"SENSOR_2_LOW_LIMIT",
	"SENSOR_2_TRIM",
	"BATTERY_CONDITION",
	"CAL_VALUE_1",
	"CAL_VALUE_2",
	"CAL_VALUE_3",
	"FIRMWARE_VERSION",
	"TYPES",
}

// Has reports whether every bit of other is set.
func (f DataFlags) Has(other DataFlags) bool {
	return f&other == other
}

func (f DataFlags) String() string {
	if f == FlagsNone {
		return "NONE"
	}
	var parts []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
