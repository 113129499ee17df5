// internal/status/constants.go
package status

// Probe status block layout constants.
// These values define the register map and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per probe block.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the link state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the kind of the last reported failure.
const SlotLastErrorCode = 1

// Slot 2 is reserved.

// SlotSensor1 is the first of two registers holding sensor 1 raw (u32, high word first).
const SlotSensor1 = 3

// SlotSensor2 is the first of two registers holding sensor 2 raw.
const SlotSensor2 = 5

// SlotReadingTime is the first of two registers holding the reading's Unix seconds.
const SlotReadingTime = 7

// Slots 9-10 are reserved.

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown is the boot state, before the first report.
const HealthUnknown uint16 = 0

// HealthConnected means the probe is answering polls.
const HealthConnected uint16 = 1

// HealthDisconnected means the session is in a failure episode.
const HealthDisconnected uint16 = 2
