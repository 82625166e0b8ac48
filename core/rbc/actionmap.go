package rbc

import (
	"fmt"
	"sort"
)

// HourTable maps an hour key to an action value. Hours may follow the 0-23
// or the 1-24 convention; lookups probe both.
type HourTable map[int]float64

// DeviceTable maps a device action name to its hour table.
type DeviceTable map[string]HourTable

// ActionMap is the canonical schedule all controllers ultimately query: one
// DeviceTable per agent, in agent order.
type ActionMap []DeviceTable

// RawActionMap is implemented by the three accepted schedule shapes: a flat
// HourTable broadcast to every device of every agent, a DeviceTable broadcast
// to every agent owning the device, or a full per-agent ActionMap.
type RawActionMap interface {
	normalize(actionNames [][]string) (ActionMap, error)
}

// ResolveActionMap normalizes a user-supplied schedule into its canonical
// per-agent shape and verifies completeness against the given per-agent
// action names. A nil raw map resolves to a nil canonical map.
func ResolveActionMap(raw RawActionMap, actionNames [][]string) (ActionMap, error) {
	if raw == nil {
		return nil, nil
	}
	return raw.normalize(actionNames)
}

func (t HourTable) normalize(actionNames [][]string) (ActionMap, error) {
	canonical := make(ActionMap, len(actionNames))
	for i, names := range actionNames {
		devices := make(DeviceTable, len(names))
		for _, n := range names {
			devices[n] = t
		}
		canonical[i] = devices
	}
	return canonical, nil
}

func (t DeviceTable) normalize(actionNames [][]string) (ActionMap, error) {
	if err := verifyDeviceTable(unionNames(actionNames), t, -1); err != nil {
		return nil, err
	}
	canonical := make(ActionMap, len(actionNames))
	for i, names := range actionNames {
		devices := make(DeviceTable, len(names))
		for _, n := range names {
			devices[n] = t[n]
		}
		canonical[i] = devices
	}
	return canonical, nil
}

func (m ActionMap) normalize(actionNames [][]string) (ActionMap, error) {
	if len(m) != len(actionNames) {
		return nil, fmt.Errorf("%w: list of action maps must have same length as number of agents: %d",
			ErrActionMap, len(actionNames))
	}
	for i, names := range actionNames {
		if err := verifyDeviceTable(names, m[i], i); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Lookup resolves the action for the given agent, device and raw hour
// reading, probing each hour candidate in order. A miss under every
// candidate is a fatal lookup error.
func (m ActionMap) Lookup(agent int, actionName string, rawHour float64) (float64, error) {
	table := m[agent][actionName]
	for _, h := range hourCandidates(rawHour) {
		if v, ok := table[h]; ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: hour %v for action %s", ErrHourLookup, rawHour, actionName)
}

// verifyDeviceTable checks that every required action name has a schedule.
// The agent index is -1 when verifying against the union of all agents.
func verifyDeviceTable(actionNames []string, table DeviceTable, agent int) error {
	var missing []string
	for _, n := range actionNames {
		if _, ok := table[n]; !ok && !containsString(missing, n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	if agent < 0 {
		return fmt.Errorf("%w: undefined maps for actions: %v", ErrActionMap, missing)
	}
	return fmt.Errorf("%w: undefined maps for actions: %v in building with index: %d", ErrActionMap, missing, agent)
}

// unionNames returns the deduplicated union of all agents' action names,
// preserving first-seen order.
func unionNames(actionNames [][]string) []string {
	var union []string
	for _, names := range actionNames {
		for _, n := range names {
			if !containsString(union, n) {
				union = append(union, n)
			}
		}
	}
	return union
}

func containsString(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
