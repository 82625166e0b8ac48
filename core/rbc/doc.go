// Package rbc implements non-learning, rule-based control policies that turn
// per-time-step building observations into per-device control actions.
//
// Two controller families are provided. HourRBC resolves actions from a
// per-agent, per-device, per-hour schedule; four built-in schedule presets
// cover the common device mixes. PITemperatureController closes the loop on
// indoor temperature with a proportional-integral law, keeping one
// anti-windup accumulator per building and device role.
//
// All policies are deterministic functions of the current observations and
// the controller's own accumulator state.
package rbc
