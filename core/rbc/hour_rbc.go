package rbc

import (
	"fmt"

	"github.com/kilianp07/bems/core/agent"
	corelogger "github.com/kilianp07/bems/core/logger"
	"github.com/kilianp07/bems/core/model"
)

// HourRBC resolves every device action from a per-agent, per-device, per-hour
// schedule. The schedule can be supplied in any of the three RawActionMap
// shapes; when none is given, the controller generates one from a preset.
type HourRBC struct {
	*agent.Agent
	actionMap ActionMap
	log       corelogger.Logger
}

// NewHourRBC creates a schedule-driven controller. A nil raw map is replaced
// by a map generated from the given schedule preset, so the controller stays
// deterministic. Configuration errors (incomplete maps, unknown device names)
// are reported here, before any stepping occurs.
func NewHourRBC(a *agent.Agent, raw RawActionMap, schedule Schedule, log corelogger.Logger) (*HourRBC, error) {
	if raw == nil {
		generated, err := schedule.Build(a.AllActionNames())
		if err != nil {
			return nil, fmt.Errorf("generate %s schedule: %w", schedule.Name, err)
		}
		raw = generated
	}
	m, err := ResolveActionMap(raw, a.AllActionNames())
	if err != nil {
		return nil, err
	}
	return &HourRBC{Agent: a, actionMap: m, log: log}, nil
}

// NewBasicRBC creates an HourRBC over the basic schedule preset.
func NewBasicRBC(a *agent.Agent, raw RawActionMap, log corelogger.Logger) (*HourRBC, error) {
	return NewHourRBC(a, raw, BasicSchedule(), log)
}

// NewOptimizedRBC creates an HourRBC over the grid-searched schedule preset.
func NewOptimizedRBC(a *agent.Agent, raw RawActionMap, log corelogger.Logger) (*HourRBC, error) {
	return NewHourRBC(a, raw, OptimizedSchedule(), log)
}

// NewBasicBatteryRBC creates an HourRBC over the solar-aware battery preset.
func NewBasicBatteryRBC(a *agent.Agent, raw RawActionMap, log corelogger.Logger) (*HourRBC, error) {
	return NewHourRBC(a, raw, BasicBatterySchedule(), log)
}

// NewElectricVehicleRBC creates an HourRBC over the EV reference preset.
func NewElectricVehicleRBC(a *agent.Agent, raw RawActionMap, log corelogger.Logger) (*HourRBC, error) {
	return NewHourRBC(a, raw, ElectricVehicleReferenceSchedule(), log)
}

// ActionMap returns the canonical schedule the controller queries.
func (c *HourRBC) ActionMap() ActionMap { return c.actionMap }

// Predict resolves one action per device from the schedule using the observed
// hour. An hour that no candidate encoding can resolve aborts the whole call;
// no partial batch is returned.
func (c *HourRBC) Predict(observations [][]float64, _ bool) ([][]float64, error) {
	actions := make([][]float64, 0, c.Count())
	for i := 0; i < c.Count() && i < len(observations); i++ {
		snap := model.ParseSnapshot(c.ObservationNames(i), observations[i])
		if !snap.HasHour {
			return nil, fmt.Errorf("%w: no hour observation for agent %d", ErrHourLookup, i)
		}
		names := c.ActionNames(i)
		vector := make([]float64, 0, len(names))
		for _, name := range names {
			v, err := c.actionMap.Lookup(i, name, snap.Hour)
			if err != nil {
				return nil, err
			}
			vector = append(vector, v)
		}
		actions = append(actions, vector)
	}
	if c.log != nil {
		c.log.Debugw("hour rbc step", map[string]any{"time_step": c.TimeStep(), "agents": len(actions)})
	}
	c.RecordActions(actions)
	c.NextTimeStep()
	return actions, nil
}
