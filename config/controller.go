package config

import (
	"fmt"
	"strconv"

	"github.com/kilianp07/bems/core/rbc"
)

// Controller type names accepted in configuration.
const (
	ControllerPI              = "pi"
	ControllerHour            = "hour"
	ControllerBasic           = "basic"
	ControllerOptimized       = "optimized"
	ControllerBasicBattery    = "basic_battery"
	ControllerElectricVehicle = "ev_reference"
)

// ControllerConfig selects and parameterizes the control policy.
type ControllerConfig struct {
	// Type is one of pi, hour, basic, optimized, basic_battery,
	// ev_reference. The hour type uses Schedule to pick the fallback
	// preset when no ActionMap is given.
	Type     string       `json:"type"`
	Schedule string       `json:"schedule"`
	PI       rbc.PIConfig `json:"pi"`
	// ActionMap is the raw schedule tree from the config file. Hours may
	// be given as string or integer keys; the three shapes of
	// rbc.RawActionMap are accepted.
	ActionMap any `json:"action_map"`

	resolved rbc.RawActionMap
}

// SetDefaults applies the default controller selection.
func (c *ControllerConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = ControllerPI
	}
	c.PI.SetDefaults()
}

// Resolve decodes the raw action map tree. It is called once during Load;
// decoding failures are configuration errors.
func (c *ControllerConfig) Resolve() error {
	switch c.Type {
	case ControllerPI:
		if err := c.PI.Validate(); err != nil {
			return err
		}
	case ControllerHour, ControllerBasic, ControllerOptimized,
		ControllerBasicBattery, ControllerElectricVehicle:
	default:
		return fmt.Errorf("unknown controller type: %s", c.Type)
	}
	raw, err := decodeActionMap(c.ActionMap)
	if err != nil {
		return err
	}
	c.resolved = raw
	return nil
}

// RawActionMap returns the decoded schedule, or nil when none was configured.
func (c *ControllerConfig) RawActionMap() rbc.RawActionMap { return c.resolved }

// decodeActionMap converts a parsed config tree into one of the three
// schedule shapes. A nil tree decodes to nil.
func decodeActionMap(tree any) (rbc.RawActionMap, error) {
	switch v := tree.(type) {
	case nil:
		return nil, nil
	case []any:
		list := make(rbc.ActionMap, 0, len(v))
		for i, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("action_map[%d]: expected a device mapping, got %T", i, elem)
			}
			devices, err := decodeDeviceTable(m)
			if err != nil {
				return nil, fmt.Errorf("action_map[%d]: %w", i, err)
			}
			list = append(list, devices)
		}
		return list, nil
	case map[string]any:
		if len(v) == 0 {
			return nil, nil
		}
		if isHourKeyed(v) {
			return decodeHourTable(v)
		}
		return decodeDeviceTable(v)
	default:
		return nil, fmt.Errorf("action_map: unsupported shape %T", tree)
	}
}

// isHourKeyed reports whether every key of the mapping parses as an hour,
// distinguishing a flat hour table from a device-keyed one.
func isHourKeyed(m map[string]any) bool {
	for k := range m {
		if _, err := strconv.Atoi(k); err != nil {
			return false
		}
	}
	return len(m) > 0
}

func decodeHourTable(m map[string]any) (rbc.HourTable, error) {
	table := make(rbc.HourTable, len(m))
	for k, raw := range m {
		hour, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("hour key %q: %w", k, err)
		}
		value, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", hour, err)
		}
		table[hour] = value
	}
	return table, nil
}

func decodeDeviceTable(m map[string]any) (rbc.DeviceTable, error) {
	devices := make(rbc.DeviceTable, len(m))
	for name, raw := range m {
		hours, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("device %s: expected an hour mapping, got %T", name, raw)
		}
		table, err := decodeHourTable(hours)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		devices[name] = table
	}
	return devices, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
