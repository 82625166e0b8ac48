package model

// Default temperature setpoints applied when the observation vector does not
// carry them, in the same unit as the indoor temperature.
const (
	DefaultCoolingSetPoint = 24.0
	DefaultHeatingSetPoint = 20.0
)

// Snapshot holds the observation features consumed by the rule-based
// controllers for a single agent and time step. Setpoints are always usable:
// missing ones are replaced by the defaults. Indoor temperature and hour keep
// a presence flag so callers can fail open.
type Snapshot struct {
	IndoorTemperature float64
	HasIndoorTemp     bool
	CoolingSetPoint   float64
	HeatingSetPoint   float64
	Hour              float64
	HasHour           bool
}

// ParseSnapshot scans the named observation vector for the features the
// controllers consume. Names and values must align positionally; extra
// features are ignored.
func ParseSnapshot(names []string, values []float64) Snapshot {
	s := Snapshot{
		CoolingSetPoint: DefaultCoolingSetPoint,
		HeatingSetPoint: DefaultHeatingSetPoint,
	}
	for i, name := range names {
		if i >= len(values) {
			break
		}
		switch name {
		case ObsIndoorTemperature:
			s.IndoorTemperature = values[i]
			s.HasIndoorTemp = true
		case ObsCoolingSetPoint:
			s.CoolingSetPoint = values[i]
		case ObsHeatingSetPoint:
			s.HeatingSetPoint = values[i]
		case ObsHour:
			s.Hour = values[i]
			s.HasHour = true
		}
	}
	return s
}
