// internal/status/constants.go
package status

// Channel Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per channel.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the channel health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code (see Error*).
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the channel has been in error.
const SlotSecondsInError = 2

// Received and transmitted byte counters, 32 bits each, high word first.
const (
	SlotRxBytesHi = 3
	SlotRxBytesLo = 4
	SlotTxBytesHi = 5
	SlotTxBytesLo = 6
)

// SlotRxErrors counts frame, parity and noise errors (saturating).
const SlotRxErrors = 7

// SlotOverruns counts bytes dropped on a full receive buffer (saturating).
const SlotOverruns = 8

// SlotPassLimitHits counts interrupt entries abandoned at the pass limit (saturating).
const SlotPassLimitHits = 9

// SlotState holds the channel state (see State*).
const SlotState = 10

// SlotLiveEnd is the last slot carrying live values (inclusive).
const SlotLiveEnd = SlotState

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// Slot 19 is reserved.

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy channel.
const HealthOK uint16 = 1

// HealthError represents a channel error state.
const HealthError uint16 = 2

// HealthStale represents a stale data state.
const HealthStale uint16 = 3

// HealthDisabled represents a closed channel.
const HealthDisabled uint16 = 4

// ---- ERROR CODES ----

const (
	ErrorNone      uint16 = 0
	ErrorLine      uint16 = 1 // frame, parity or noise error received
	ErrorOverrun   uint16 = 2 // receive buffer overflowed
	ErrorPassLimit uint16 = 3 // interrupt entry hit the pass limit
)

// ---- STATE CODES ----

const (
	StateClosed uint16 = 0
	StateOpen   uint16 = 1
)
