package metrics

import "time"

// StepRecord is one device action emitted by a controller at one time step,
// together with the thermal context it was computed from.
type StepRecord struct {
	RunID         string
	Building      string
	TimeStep      int
	Hour          int
	Device        string
	Action        float64
	IndoorTemp    float64
	SetpointError float64
	Time          time.Time
}

// MetricsSink records control steps for observability purposes.
type MetricsSink interface {
	RecordSteps(records []StepRecord) error
}

// ReportRecorder is implemented by sinks that also persist end-of-episode
// reports.
type ReportRecorder interface {
	RecordReport(runID string, kpis map[string]float64) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordSteps implements MetricsSink.
func (NopSink) RecordSteps([]StepRecord) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
