package metrics

import coremetrics "github.com/kilianp07/bems/core/metrics"

// MultiSink fans control records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSteps forwards the records to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSteps(records []coremetrics.StepRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordSteps(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordReport forwards the report to sinks that support it.
func (m *MultiSink) RecordReport(runID string, kpis map[string]float64) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ReportRecorder); ok {
			if err := rec.RecordReport(runID, kpis); err != nil {
				return err
			}
		}
	}
	return nil
}
