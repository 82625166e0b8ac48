package agent

import "fmt"

// Agent is the bookkeeping substrate shared by all controllers. It carries,
// per controlled agent, the ordered action and observation name registries, a
// monotonic time-step counter and the history of emitted actions.
//
// A single Agent value can describe several decentralized agents (one per
// building) or one central agent over concatenated spaces; the controllers do
// not care which.
type Agent struct {
	actionNames      [][]string
	observationNames [][]string
	timeStep         int
	actions          [][][]float64
}

// New creates an Agent from parallel per-agent name registries.
func New(actionNames, observationNames [][]string) (*Agent, error) {
	if len(actionNames) != len(observationNames) {
		return nil, fmt.Errorf("action and observation registries must have the same length: %d != %d",
			len(actionNames), len(observationNames))
	}
	if len(actionNames) == 0 {
		return nil, fmt.Errorf("at least one agent is required")
	}
	return &Agent{actionNames: actionNames, observationNames: observationNames}, nil
}

// Count returns the number of agents.
func (a *Agent) Count() int { return len(a.actionNames) }

// ActionNames returns the ordered action names of agent i.
func (a *Agent) ActionNames(i int) []string { return a.actionNames[i] }

// ObservationNames returns the ordered observation names of agent i.
func (a *Agent) ObservationNames(i int) []string { return a.observationNames[i] }

// AllActionNames returns the per-agent action name registries.
func (a *Agent) AllActionNames() [][]string { return a.actionNames }

// TimeStep returns the current time step.
func (a *Agent) TimeStep() int { return a.timeStep }

// NextTimeStep advances the shared step counter. Controllers call it exactly
// once per prediction, after actions are computed.
func (a *Agent) NextTimeStep() { a.timeStep++ }

// RecordActions appends the batch of per-agent action vectors to the history.
func (a *Agent) RecordActions(actions [][]float64) {
	a.actions = append(a.actions, actions)
}

// Actions returns the recorded action history, one batch per time step.
func (a *Agent) Actions() [][][]float64 { return a.actions }

// Reset clears the time-step counter and action history for a new episode.
func (a *Agent) Reset() {
	a.timeStep = 0
	a.actions = nil
}
