// internal/writer/types.go
package writer

import "github.com/tamzrod/faction-relay/internal/status"

// StatusPlan places one monitor's status block in status memory.
type StatusPlan struct {
	MonitorID string
	Name      string // encoded at the end of the block
	UnitID    uint8
	BaseSlot  uint16 // block starts at BaseSlot * status.SlotsPerMonitor
}

// endpointClient is the exact contract the writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusWriter is the delivery-only contract for monitor status.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}
