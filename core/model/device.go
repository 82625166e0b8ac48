package model

import "strings"

// Action names recognized by the controllers. Storage and electric vehicle
// actions are matched by substring because buildings may expose several
// devices of the same family (e.g. "electric_vehicle_charger_1").
const (
	ActionCoolingDevice          = "cooling_device"
	ActionHeatingDevice          = "heating_device"
	ActionCoolingOrHeatingDevice = "cooling_or_heating_device"
	ActionElectricalStorage      = "electrical_storage"
	ActionDHWStorage             = "dhw_storage"
	ActionWashingMachine         = "washing_machine"
	ActionElectricVehicle        = "electric_vehicle"
	actionStorageSubstring       = "storage"
)

// Observation feature names consumed by the controllers.
const (
	ObsIndoorTemperature = "indoor_dry_bulb_temperature"
	ObsCoolingSetPoint   = "indoor_dry_bulb_temperature_cooling_set_point"
	ObsHeatingSetPoint   = "indoor_dry_bulb_temperature_heating_set_point"
	ObsHour              = "hour"
)

// IsStorageAction reports whether the action controls a storage device of any
// kind (thermal, electrical, domestic hot water).
func IsStorageAction(name string) bool {
	return strings.Contains(name, actionStorageSubstring)
}

// IsElectricalStorageAction reports whether the action controls an electrical
// battery.
func IsElectricalStorageAction(name string) bool {
	return strings.Contains(name, ActionElectricalStorage)
}

// DeviceRole identifies which thermal direction an integral accumulator
// belongs to. Combined devices keep separate accumulators per direction.
type DeviceRole int

const (
	RoleCooling DeviceRole = iota
	RoleHeating
	RoleCombinedCooling
	RoleCombinedHeating
)

// String returns a human-readable representation of the role.
func (r DeviceRole) String() string {
	switch r {
	case RoleCooling:
		return "cooling"
	case RoleHeating:
		return "heating"
	case RoleCombinedCooling:
		return "cooling_or_heating_cool"
	case RoleCombinedHeating:
		return "cooling_or_heating_heat"
	default:
		return "unknown"
	}
}

// IntegralKey identifies one integral-error accumulator.
type IntegralKey struct {
	Building int
	Role     DeviceRole
}
