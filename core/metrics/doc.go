// Package metrics defines the sink interfaces through which control steps
// and episode reports are recorded. Implementations live in infra/metrics.
package metrics
