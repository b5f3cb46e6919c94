// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/faction-relay/internal/status"
)

// monitorStatusWriter writes one monitor's block into holding registers.
type monitorStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
}

// NewMonitorStatusWriter builds a status writer for one plan.
func NewMonitorStatusWriter(plan StatusPlan, cli endpointClient) (*monitorStatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: monitor %q: missing client", plan.MonitorID)
	}
	if (uint32(plan.BaseSlot)+1)*status.SlotsPerMonitor > 65536 {
		return nil, fmt.Errorf("status writer: monitor %q: slot %d out of range", plan.MonitorID, plan.BaseSlot)
	}
	return &monitorStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
	}, nil
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *monitorStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, status.Encode(s, sw.plan.Name)); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: %s: full block write failed: %w", sw.plan.MonitorID, err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	write := func(slot uint16, regs []uint16, label string) bool {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr+slot, regs); err != nil {
			errs = append(errs, fmt.Sprintf("%s write failed: %v", label, err))
			return false
		}
		return true
	}

	// Slot 0: health_code
	if sw.last.Health != s.Health && write(status.SlotHealthCode, []uint16{s.Health}, "health") {
		sw.last.Health = s.Health
	}

	// Slot 1: last_error_code
	if sw.last.LastErrorCode != s.LastErrorCode && write(status.SlotLastErrorCode, []uint16{s.LastErrorCode}, "last_error") {
		sw.last.LastErrorCode = s.LastErrorCode
	}

	// Slot 2: seconds_in_error
	if sw.last.SecondsInError != s.SecondsInError && write(status.SlotSecondsInError, []uint16{s.SecondsInError}, "seconds") {
		sw.last.SecondsInError = s.SecondsInError
	}

	// Slots 3-4: tick counter, one write so the pair never tears
	if sw.last.Ticks != s.Ticks && write(status.SlotTicksHigh, []uint16{uint16(s.Ticks >> 16), uint16(s.Ticks)}, "ticks") {
		sw.last.Ticks = s.Ticks
	}

	if len(errs) > 0 {
		// Any partial failure: re-assert the full block on next success.
		sw.needFull = true
		return fmt.Errorf("status writer: %s: %s", sw.plan.MonitorID, strings.Join(errs, " | "))
	}

	return nil
}

func (sw *monitorStatusWriter) baseAddr() uint16 {
	// Each monitor owns a fixed SlotsPerMonitor block.
	return sw.plan.BaseSlot * status.SlotsPerMonitor
}
