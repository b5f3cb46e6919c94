// internal/status/constants.go
package status

// Monitor status block layout constants.
// These values define the export layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerMonitor is the fixed number of registers per monitor.
const SlotsPerMonitor = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the monitor health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last fetch error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds how long (in seconds) the monitor has been failing.
const SlotSecondsInError = 2

// SlotTicksHigh and SlotTicksLow hold the successful tick counter (uint32).
const SlotTicksHigh = 3
const SlotTicksLow = 4

// ---- RESERVED RANGE ----

// Slots 5–10 are reserved.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- MONITOR NAME ----

// SlotNameStart is the first slot used for the monitor id.
// The name is always placed at the END of the block.
const SlotNameStart = 11

// SlotNameSlots is the number of slots reserved for the name.
const SlotNameSlots = 8

// SlotNameEnd is the last slot used for the name (inclusive).
const SlotNameEnd = SlotNameStart + SlotNameSlots - 1

// ---- LIMITS ----

// NameMaxChars is the maximum number of ASCII characters stored for the name.
const NameMaxChars = 16

// MaxSecondsInError is where SecondsInError saturates.
const MaxSecondsInError = 65535

// ---- HEALTH CODES ----

// HealthUnknown is the state before the first tick completes.
const HealthUnknown uint16 = 0

// HealthOK means the last fetch succeeded.
const HealthOK uint16 = 1

// HealthError means the last fetch failed.
const HealthError uint16 = 2

// HealthStale means no tick has completed within two intervals.
const HealthStale uint16 = 3

// HealthDisabled means the monitor was stopped.
const HealthDisabled uint16 = 4
