package rbc

import (
	"fmt"
	"math"

	"github.com/kilianp07/bems/core/agent"
	corelogger "github.com/kilianp07/bems/core/logger"
	"github.com/kilianp07/bems/core/model"
)

// PIConfig defines the proportional-integral controller gains and limits.
type PIConfig struct {
	// Kp scales the response to the instantaneous temperature error.
	Kp float64 `json:"kp" yaml:"kp"`
	// Ki scales the response to the accumulated error.
	Ki float64 `json:"ki" yaml:"ki"`
	// TempDeadband is the error magnitude below which no action is taken
	// and integral memory is discarded, in degrees.
	TempDeadband float64 `json:"temp_deadband" yaml:"temp_deadband"`
	// IntegralLimit bounds the accumulated error for anti-windup.
	IntegralLimit float64 `json:"integral_limit" yaml:"integral_limit"`
	// MinPower and MaxPower bound the emitted power fraction when active.
	MinPower float64 `json:"min_power" yaml:"min_power"`
	MaxPower float64 `json:"max_power" yaml:"max_power"`
}

// SetDefaults applies the reference controller gains to unset fields.
func (c *PIConfig) SetDefaults() {
	if c.Kp == 0 {
		c.Kp = 0.2
	}
	if c.Ki == 0 {
		c.Ki = 0.005
	}
	if c.TempDeadband == 0 {
		c.TempDeadband = 0.5
	}
	if c.IntegralLimit == 0 {
		c.IntegralLimit = 10.0
	}
	if c.MaxPower == 0 {
		c.MaxPower = 1.0
	}
}

// Validate checks the configured gains and power band.
func (c PIConfig) Validate() error {
	if c.TempDeadband < 0 {
		return fmt.Errorf("temp_deadband must not be negative")
	}
	if c.IntegralLimit <= 0 {
		return fmt.Errorf("integral_limit must be positive")
	}
	if c.MaxPower < c.MinPower {
		return fmt.Errorf("max_power %v below min_power %v", c.MaxPower, c.MinPower)
	}
	return nil
}

// Electrical batteries follow a fixed solar-aware heuristic instead of the PI
// loop: charge during the generation window, discharge otherwise.
const (
	batteryChargeFraction    = 0.11
	batteryDischargeFraction = -0.067
	batteryChargeStartHour   = 6
	batteryChargeEndHour     = 14
)

// PITemperatureController regulates indoor temperature with a PI law. One
// integral-error accumulator is kept per building and device role; the
// accumulator is cleared whenever the error re-enters the deadband and is
// clamped to the configured limit otherwise.
type PITemperatureController struct {
	*agent.Agent
	cfg            PIConfig
	storageMap     ActionMap
	integralErrors map[model.IntegralKey]float64
	log            corelogger.Logger
}

// NewPITemperatureController creates a PI controller. The optional storage
// map follows the HourRBC shapes and applies to thermal and hot-water storage
// actions only; when nil, storage falls back to the basic schedule bands.
func NewPITemperatureController(a *agent.Agent, cfg PIConfig, storageMap RawActionMap, log corelogger.Logger) (*PITemperatureController, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := ResolveActionMap(storageMap, storageActionNames(a.AllActionNames()))
	if err != nil {
		return nil, err
	}
	return &PITemperatureController{
		Agent:          a,
		cfg:            cfg,
		storageMap:     m,
		integralErrors: make(map[model.IntegralKey]float64),
		log:            log,
	}, nil
}

// storageActionNames filters the registries down to the storage actions the
// optional map may cover. Electrical storage is excluded: it always follows
// the battery heuristic.
func storageActionNames(actionNames [][]string) [][]string {
	filtered := make([][]string, len(actionNames))
	for i, names := range actionNames {
		var keep []string
		for _, n := range names {
			if model.IsStorageAction(n) && !model.IsElectricalStorageAction(n) {
				keep = append(keep, n)
			}
		}
		filtered[i] = keep
	}
	return filtered
}

// Reset clears the episode state, including every integral accumulator.
func (c *PITemperatureController) Reset() {
	c.Agent.Reset()
	c.integralErrors = make(map[model.IntegralKey]float64)
}

// IntegralError returns the accumulated error for the given key. Useful for
// inspection; missing keys read as zero.
func (c *PITemperatureController) IntegralError(key model.IntegralKey) float64 {
	return c.integralErrors[key]
}

// compute runs one PI update for the given error and accumulator key and
// returns the power fraction in [MinPower, MaxPower], or 0 when the error is
// inside the deadband or the combined output is non-positive.
func (c *PITemperatureController) compute(err float64, key model.IntegralKey) float64 {
	if math.Abs(err) <= c.cfg.TempDeadband {
		c.integralErrors[key] = 0
		return 0
	}

	acc := c.integralErrors[key] + err
	acc = math.Max(math.Min(acc, c.cfg.IntegralLimit), -c.cfg.IntegralLimit)
	c.integralErrors[key] = acc

	u := c.cfg.Kp*err + c.cfg.Ki*acc
	if u <= 0 {
		return 0
	}
	action := c.cfg.MinPower + u*(c.cfg.MaxPower-c.cfg.MinPower)
	return math.Max(math.Min(action, c.cfg.MaxPower), c.cfg.MinPower)
}

// Predict computes one action per device. Cooling and heating devices run the
// PI loop against their setpoint, the combined device picks at most one
// direction per step, storage follows its schedule and unrecognized actions
// fail open to zero.
func (c *PITemperatureController) Predict(observations [][]float64, _ bool) ([][]float64, error) {
	actions := make([][]float64, 0, c.Count())
	for i := 0; i < c.Count() && i < len(observations); i++ {
		snap := model.ParseSnapshot(c.ObservationNames(i), observations[i])
		names := c.ActionNames(i)
		vector := make([]float64, 0, len(names))
		for _, name := range names {
			vector = append(vector, c.actionFor(i, name, snap))
		}
		actions = append(actions, vector)
	}
	if c.log != nil {
		c.log.Debugw("pi step", map[string]any{"time_step": c.TimeStep(), "agents": len(actions)})
	}
	c.RecordActions(actions)
	c.NextTimeStep()
	return actions, nil
}

func (c *PITemperatureController) actionFor(building int, name string, snap model.Snapshot) float64 {
	switch {
	case model.IsElectricalStorageAction(name):
		if !snap.HasHour {
			return 0
		}
		if batteryChargeStartHour <= snap.Hour && snap.Hour <= batteryChargeEndHour {
			return batteryChargeFraction
		}
		return batteryDischargeFraction

	case model.IsStorageAction(name):
		return c.storageAction(building, name, snap)

	case name == model.ActionCoolingDevice:
		if !snap.HasIndoorTemp {
			return 0
		}
		// Positive when too hot.
		err := snap.IndoorTemperature - snap.CoolingSetPoint
		return c.compute(err, model.IntegralKey{Building: building, Role: model.RoleCooling})

	case name == model.ActionHeatingDevice:
		if !snap.HasIndoorTemp {
			return 0
		}
		// Positive when too cold.
		err := snap.HeatingSetPoint - snap.IndoorTemperature
		return c.compute(err, model.IntegralKey{Building: building, Role: model.RoleHeating})

	case name == model.ActionCoolingOrHeatingDevice:
		if !snap.HasIndoorTemp {
			return 0
		}
		return c.combinedAction(building, snap)

	default:
		return 0
	}
}

// storageAction resolves thermal or hot-water storage from the optional map,
// falling back to the basic schedule bands. Lookups fail open: an hour the
// map does not cover yields no storage activity rather than an error.
func (c *PITemperatureController) storageAction(building int, name string, snap model.Snapshot) float64 {
	if !snap.HasHour {
		return 0
	}
	if c.storageMap != nil {
		v, err := c.storageMap.Lookup(building, name, snap.Hour)
		if err != nil {
			return 0
		}
		return v
	}
	if 9 <= snap.Hour && snap.Hour <= 21 {
		return -0.08
	}
	if (1 <= snap.Hour && snap.Hour <= 8) || (22 <= snap.Hour && snap.Hour <= 24) {
		return 0.091
	}
	return 0
}

// combinedAction drives the cooling-or-heating device. At most one direction
// integrates error at any time: activating one side always clears the other
// side's accumulator.
func (c *PITemperatureController) combinedAction(building int, snap model.Snapshot) float64 {
	coolKey := model.IntegralKey{Building: building, Role: model.RoleCombinedCooling}
	heatKey := model.IntegralKey{Building: building, Role: model.RoleCombinedHeating}
	coolingError := snap.IndoorTemperature - snap.CoolingSetPoint
	heatingError := snap.HeatingSetPoint - snap.IndoorTemperature

	switch {
	case coolingError > c.cfg.TempDeadband:
		c.integralErrors[heatKey] = 0
		// Cooling is drawn as negative power.
		return -c.compute(coolingError, coolKey)
	case heatingError > c.cfg.TempDeadband:
		c.integralErrors[coolKey] = 0
		return c.compute(heatingError, heatKey)
	default:
		c.integralErrors[coolKey] = 0
		c.integralErrors[heatKey] = 0
		return 0
	}
}
