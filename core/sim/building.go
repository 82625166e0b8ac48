package sim

import (
	"fmt"

	"github.com/kilianp07/bems/core/model"
)

// BuildingConfig describes one simulated building and its controllable devices.
type BuildingConfig struct {
	Name string `json:"name"`
	// Devices lists the controllable action names, in action-vector order.
	Devices []string `json:"devices"`
	// InitialTemp is the indoor temperature at episode start.
	InitialTemp float64 `json:"initial_temp"`
	// ThermalMassKWhC is the building thermal capacity in kWh per degree.
	ThermalMassKWhC float64 `json:"thermal_mass_kwh_c"`
	// HeatLossKWC is the heat loss coefficient towards outdoor air in kW per degree.
	HeatLossKWC float64 `json:"heat_loss_kw_c"`
	// CoolingCapacityKW and HeatingCapacityKW are the device nominal powers.
	CoolingCapacityKW float64 `json:"cooling_capacity_kw"`
	HeatingCapacityKW float64 `json:"heating_capacity_kw"`
	// CoolingSetPoint and HeatingSetPoint feed the observation vector.
	CoolingSetPoint float64 `json:"cooling_set_point"`
	HeatingSetPoint float64 `json:"heating_set_point"`
	// StorageCapacityKWh sizes every storage device of the building.
	StorageCapacityKWh float64 `json:"storage_capacity_kwh"`
}

// SetDefaults applies plausible residential values to unset fields.
func (c *BuildingConfig) SetDefaults() {
	if c.InitialTemp == 0 {
		c.InitialTemp = 22.0
	}
	if c.ThermalMassKWhC == 0 {
		c.ThermalMassKWhC = 2.0
	}
	if c.HeatLossKWC == 0 {
		c.HeatLossKWC = 0.15
	}
	if c.CoolingCapacityKW == 0 {
		c.CoolingCapacityKW = 5.0
	}
	if c.HeatingCapacityKW == 0 {
		c.HeatingCapacityKW = 5.0
	}
	if c.CoolingSetPoint == 0 {
		c.CoolingSetPoint = model.DefaultCoolingSetPoint
	}
	if c.HeatingSetPoint == 0 {
		c.HeatingSetPoint = model.DefaultHeatingSetPoint
	}
	if c.StorageCapacityKWh == 0 {
		c.StorageCapacityKWh = 6.0
	}
}

// Validate checks the building description.
func (c BuildingConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("building name is required")
	}
	if len(c.Devices) == 0 {
		return fmt.Errorf("building %s has no devices", c.Name)
	}
	if c.ThermalMassKWhC <= 0 {
		return fmt.Errorf("building %s: thermal mass must be positive", c.Name)
	}
	return nil
}

// Building is the simulated plant: a first-order thermal node plus one state
// of charge per storage device.
type Building struct {
	cfg        BuildingConfig
	Temp       float64
	storageSoC map[string]float64
}

// NewBuilding creates a building in its initial state.
func NewBuilding(cfg BuildingConfig) (*Building, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Building{cfg: cfg, Temp: cfg.InitialTemp, storageSoC: make(map[string]float64)}
	for _, d := range cfg.Devices {
		if model.IsStorageAction(d) {
			b.storageSoC[d] = 0.5
		}
	}
	return b, nil
}

// Name returns the configured building name.
func (b *Building) Name() string { return b.cfg.Name }

// Devices returns the controllable action names in vector order.
func (b *Building) Devices() []string { return b.cfg.Devices }

// ObservationNames returns the observation features the building exposes,
// aligned with the vectors produced by Observe.
func (b *Building) ObservationNames() []string {
	return []string{
		model.ObsIndoorTemperature,
		model.ObsCoolingSetPoint,
		model.ObsHeatingSetPoint,
		model.ObsHour,
	}
}

// Observe produces the observation vector for the given hour (1-24).
func (b *Building) Observe(hour int) []float64 {
	return []float64{b.Temp, b.cfg.CoolingSetPoint, b.cfg.HeatingSetPoint, float64(hour)}
}

// SetpointError returns the signed distance from the comfort band: positive
// above the cooling setpoint, negative below the heating setpoint, zero
// inside the band.
func (b *Building) SetpointError() float64 {
	if b.Temp > b.cfg.CoolingSetPoint {
		return b.Temp - b.cfg.CoolingSetPoint
	}
	if b.Temp < b.cfg.HeatingSetPoint {
		return b.Temp - b.cfg.HeatingSetPoint
	}
	return 0
}

// StorageSoC returns the state of charge of the named storage device.
func (b *Building) StorageSoC(device string) float64 { return b.storageSoC[device] }

// Apply advances the plant by dtHours given the action vector, aligned with
// Devices. It returns the electrical energy drawn during the step in kWh.
func (b *Building) Apply(actions []float64, outdoorTemp, dtHours float64) float64 {
	if dtHours <= 0 {
		return 0
	}
	thermalPowerKW := 0.0
	energyKWh := 0.0

	for i, device := range b.cfg.Devices {
		if i >= len(actions) {
			break
		}
		a := actions[i]
		switch {
		case model.IsStorageAction(device):
			energyKWh += b.applyStorage(device, a)
		case device == model.ActionCoolingDevice:
			p := clamp01(a) * b.cfg.CoolingCapacityKW
			thermalPowerKW -= p
			energyKWh += p * dtHours
		case device == model.ActionHeatingDevice:
			p := clamp01(a) * b.cfg.HeatingCapacityKW
			thermalPowerKW += p
			energyKWh += p * dtHours
		case device == model.ActionCoolingOrHeatingDevice:
			// Negative cools, positive heats.
			if a < 0 {
				p := clamp01(-a) * b.cfg.CoolingCapacityKW
				thermalPowerKW -= p
				energyKWh += p * dtHours
			} else {
				p := clamp01(a) * b.cfg.HeatingCapacityKW
				thermalPowerKW += p
				energyKWh += p * dtHours
			}
		}
	}

	// First-order thermal node: losses towards outdoor air plus device power.
	lossKW := b.cfg.HeatLossKWC * (b.Temp - outdoorTemp)
	b.Temp += (thermalPowerKW - lossKW) * dtHours / b.cfg.ThermalMassKWhC
	return energyKWh
}

// applyStorage updates one storage state of charge for a signed charge
// fraction and returns the electrical energy drawn. Limits are enforced the
// same way on both directions: the fraction is clipped so the state of charge
// stays in [0, 1].
func (b *Building) applyStorage(device string, fraction float64) float64 {
	soc := b.storageSoC[device]
	f := fraction
	if f > 0 && soc+f > 1 {
		f = 1 - soc
	}
	if f < 0 && soc+f < 0 {
		f = -soc
	}
	b.storageSoC[device] = soc + f
	// Discharge offsets other loads and counts as negative draw.
	return f * b.cfg.StorageCapacityKWh
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
