package rbc

import (
	"fmt"
	"strings"

	"github.com/kilianp07/bems/core/model"
)

// band assigns a value to every hour between First and Last inclusive, using
// the 1-24 hour convention. Hours not covered by any band default to 0.
type band struct {
	First, Last int
	Value       float64
}

// deviceBands pairs a device name pattern with its hour bands. Exact patterns
// match the whole action name; others match as substrings.
type deviceBands struct {
	Pattern string
	Exact   bool
	Bands   []band
}

// Schedule is a named, declarative preset of per-device hour bands from which
// a complete 24-hour action map can be generated.
type Schedule struct {
	Name    string
	devices []deviceBands
}

// Build synthesizes one 24-entry hour table per required action name by
// matching each name against the schedule's device patterns in order. An
// action name matching no pattern is a fatal configuration error.
func (s Schedule) Build(actionNames [][]string) (DeviceTable, error) {
	table := make(DeviceTable)
	for _, n := range unionNames(actionNames) {
		bands, ok := s.bandsFor(n)
		if !ok {
			return nil, fmt.Errorf("%w: unknown action name: %s", ErrActionMap, n)
		}
		hours := make(HourTable, 24)
		for hour := 1; hour <= 24; hour++ {
			hours[hour] = valueAt(bands, hour)
		}
		table[n] = hours
	}
	return table, nil
}

func (s Schedule) bandsFor(actionName string) ([]band, bool) {
	for _, d := range s.devices {
		if d.Exact && actionName == d.Pattern {
			return d.Bands, true
		}
		if !d.Exact && strings.Contains(actionName, d.Pattern) {
			return d.Bands, true
		}
	}
	return nil, false
}

func valueAt(bands []band, hour int) float64 {
	for _, b := range bands {
		if b.First <= hour && hour <= b.Last {
			return b.Value
		}
	}
	return 0
}

// combinedDeviceBands is the signed availability schedule shared by every
// preset for the combined cooling-or-heating device: positive values heat,
// negative values cool.
var combinedDeviceBands = []band{
	{1, 6, 0.4},
	{7, 20, -0.4},
	{21, 24, 0.8},
}

// BasicSchedule charges heat-pump fed storage overnight while the COP is
// high: charge by 9.1% of capacity between 22:00 and 08:00, discharge 8%
// every other hour. Cooling power follows the inverse profile of heating.
func BasicSchedule() Schedule {
	return Schedule{
		Name: "basic",
		devices: []deviceBands{
			{Pattern: "storage", Bands: []band{
				{9, 21, -0.08},
				{1, 8, 0.091},
				{22, 24, 0.091},
			}},
			{Pattern: model.ActionCoolingDevice, Exact: true, Bands: []band{
				{9, 21, 0.8},
				{1, 8, 0.4},
				{22, 24, 0.4},
			}},
			{Pattern: model.ActionHeatingDevice, Exact: true, Bands: []band{
				{9, 21, 0.4},
				{1, 8, 0.8},
				{22, 24, 0.8},
			}},
			{Pattern: model.ActionCoolingOrHeatingDevice, Exact: true, Bands: combinedDeviceBands},
		},
	}
}

// OptimizedSchedule refines BasicSchedule with storage and device fractions
// selected through a search grid.
func OptimizedSchedule() Schedule {
	return Schedule{
		Name: "optimized",
		devices: []deviceBands{
			{Pattern: "storage", Bands: []band{
				{7, 15, -0.02},
				{16, 18, -0.044},
				{19, 22, -0.024},
				{23, 24, 0.034},
				{1, 6, 0.05532},
			}},
			{Pattern: model.ActionCoolingDevice, Exact: true, Bands: []band{
				{7, 15, 0.7},
				{16, 18, 0.6},
				{19, 22, 0.8},
				{23, 24, 0.4},
				{1, 6, 0.2},
			}},
			{Pattern: model.ActionHeatingDevice, Exact: true, Bands: []band{
				{7, 15, 0.3},
				{16, 18, 0.4},
				{19, 22, 0.6},
				{23, 24, 0.7},
				{1, 6, 0.8},
			}},
			{Pattern: model.ActionCoolingOrHeatingDevice, Exact: true, Bands: combinedDeviceBands},
		},
	}
}

// BasicBatterySchedule charges storage during the solar window: charge by 11%
// of capacity between 06:00 and 14:00, discharge 6.7% every other hour.
func BasicBatterySchedule() Schedule {
	return Schedule{
		Name: "basic_battery",
		devices: []deviceBands{
			{Pattern: "storage", Bands: []band{
				{6, 14, 0.11},
				{1, 5, -0.067},
				{15, 24, -0.067},
			}},
			{Pattern: model.ActionCoolingDevice, Exact: true, Bands: []band{
				{6, 14, 0.7},
				{1, 5, 0.3},
				{15, 24, 0.3},
			}},
			{Pattern: model.ActionHeatingDevice, Exact: true, Bands: []band{
				{6, 14, 0.3},
				{1, 5, 0.7},
				{15, 24, 0.7},
			}},
			{Pattern: model.ActionCoolingOrHeatingDevice, Exact: true, Bands: combinedDeviceBands},
		},
	}
}

// ElectricVehicleReferenceSchedule is the reference schedule for building
// mixes with electric-vehicle chargers: EVs charge at full power in the
// morning and discharge through the day, while domestic hot water storage and
// appliances stay fully available. The electrical_storage pattern is matched
// exactly so EV chargers never fall into the battery bands.
func ElectricVehicleReferenceSchedule() Schedule {
	return Schedule{
		Name: "ev_reference",
		devices: []deviceBands{
			{Pattern: model.ActionElectricalStorage, Exact: true, Bands: []band{
				{9, 21, -0.08},
				{1, 8, 0.091},
				{22, 24, 0.091},
			}},
			{Pattern: model.ActionCoolingDevice, Exact: true, Bands: []band{
				{9, 21, 0.8},
				{1, 8, 0.4},
				{22, 24, 0.4},
			}},
			{Pattern: model.ActionHeatingDevice, Exact: true, Bands: []band{
				{9, 21, 0.4},
				{1, 8, 0.8},
				{22, 24, 0.8},
			}},
			{Pattern: model.ActionCoolingOrHeatingDevice, Exact: true, Bands: combinedDeviceBands},
			{Pattern: model.ActionElectricVehicle, Bands: []band{
				{1, 6, 0.4},
				{7, 9, 1},
				{10, 14, -1},
				{15, 19, -0.6},
				{20, 24, 0.8},
			}},
			{Pattern: model.ActionDHWStorage, Bands: []band{{1, 24, 1}}},
			{Pattern: model.ActionWashingMachine, Bands: []band{{1, 24, 1}}},
		},
	}
}

// ScheduleByName resolves a preset schedule from its configuration name.
func ScheduleByName(name string) (Schedule, error) {
	switch name {
	case "", "basic":
		return BasicSchedule(), nil
	case "optimized":
		return OptimizedSchedule(), nil
	case "basic_battery":
		return BasicBatterySchedule(), nil
	case "ev_reference":
		return ElectricVehicleReferenceSchedule(), nil
	default:
		return Schedule{}, fmt.Errorf("%w: unknown schedule preset: %s", ErrActionMap, name)
	}
}
