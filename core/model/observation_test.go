package model

import "testing"

func TestParseSnapshotDefaults(t *testing.T) {
	s := ParseSnapshot([]string{"outdoor_dry_bulb_temperature"}, []float64{12.5})
	if s.HasIndoorTemp || s.HasHour {
		t.Fatalf("unexpected presence flags: %+v", s)
	}
	if s.CoolingSetPoint != DefaultCoolingSetPoint || s.HeatingSetPoint != DefaultHeatingSetPoint {
		t.Fatalf("default setpoints not applied: %+v", s)
	}
}

func TestParseSnapshotFeatures(t *testing.T) {
	names := []string{ObsIndoorTemperature, ObsCoolingSetPoint, ObsHeatingSetPoint, ObsHour}
	s := ParseSnapshot(names, []float64{22.5, 25.0, 19.0, 13})
	if !s.HasIndoorTemp || s.IndoorTemperature != 22.5 {
		t.Fatalf("indoor temperature: %+v", s)
	}
	if s.CoolingSetPoint != 25.0 || s.HeatingSetPoint != 19.0 {
		t.Fatalf("setpoints: %+v", s)
	}
	if !s.HasHour || s.Hour != 13 {
		t.Fatalf("hour: %+v", s)
	}
}

func TestParseSnapshotShortVector(t *testing.T) {
	names := []string{ObsIndoorTemperature, ObsHour}
	s := ParseSnapshot(names, []float64{21.0})
	if !s.HasIndoorTemp || s.HasHour {
		t.Fatalf("short vector handling: %+v", s)
	}
}

func TestDeviceClassification(t *testing.T) {
	if !IsStorageAction("dhw_storage") || !IsStorageAction("electrical_storage") {
		t.Fatalf("storage classification broken")
	}
	if IsStorageAction(ActionCoolingDevice) {
		t.Fatalf("cooling device is not storage")
	}
	if !IsElectricalStorageAction("electrical_storage") || IsElectricalStorageAction("dhw_storage") {
		t.Fatalf("electrical storage classification broken")
	}
}

func TestDeviceRoleString(t *testing.T) {
	cases := map[DeviceRole]string{
		RoleCooling:         "cooling",
		RoleHeating:         "heating",
		RoleCombinedCooling: "cooling_or_heating_cool",
		RoleCombinedHeating: "cooling_or_heating_heat",
	}
	for role, want := range cases {
		if role.String() != want {
			t.Fatalf("role %d: got %s want %s", role, role.String(), want)
		}
	}
}
