// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/faction-relay/internal/config"
	wmodbus "github.com/tamzrod/faction-relay/internal/writer/modbus"
)

// BuildPlans returns one StatusPlan per monitor that opted in.
// Assumes config has already passed validation and normalization.
func BuildPlans(r cfg.RelayConfig) []StatusPlan {
	if r.StatusMemory == nil {
		return nil
	}

	var plans []StatusPlan
	for _, m := range r.Monitors {
		if m.StatusSlot == nil {
			continue
		}
		plans = append(plans, StatusPlan{
			MonitorID: m.ID,
			Name:      m.StatusName,
			UnitID:    r.StatusMemory.UnitID,
			BaseSlot:  *m.StatusSlot,
		})
	}
	return plans
}

// BuildEndpointClient opens the status memory connection.
func BuildEndpointClient(sm cfg.StatusMemConfig) (*wmodbus.EndpointClient, error) {
	return wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: sm.Endpoint,
		Timeout:  time.Duration(sm.TimeoutMs) * time.Millisecond,
	})
}
