package rbc

import "errors"

// Controller converts a batch of per-agent observation vectors into a batch
// of per-agent action vectors, one entry per action name.
type Controller interface {
	// Predict computes the action batch for the current time step and
	// advances the step counter. The deterministic flag exists for
	// interface compatibility with exploring agents and is ignored here.
	Predict(observations [][]float64, deterministic bool) ([][]float64, error)

	// Reset clears transient controller state for a new episode.
	Reset()
}

// ErrActionMap marks a fatal schedule configuration error, raised before any
// episode stepping occurs.
var ErrActionMap = errors.New("invalid action map")

// ErrHourLookup marks a fatal lookup error: an observed hour has no entry in
// a required device schedule under any supported hour encoding.
var ErrHourLookup = errors.New("hour not defined in action map")
