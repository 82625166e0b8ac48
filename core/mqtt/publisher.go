package mqtt

// ActionPublisher pushes computed control actions to the building gateways.
// Publishing is one-way telemetry: the simulation loop, not the gateway,
// decides what happens next.
type ActionPublisher interface {
	// PublishActions sends the action vector computed for one building at
	// the given time step, keyed by device action name.
	PublishActions(building string, timeStep int, actions map[string]float64) error

	// Close disconnects the underlying transport.
	Close()
}
