package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	corelogger "github.com/kilianp07/bems/core/logger"
	coremetrics "github.com/kilianp07/bems/core/metrics"
	"github.com/kilianp07/bems/core/rbc"
	"github.com/kilianp07/bems/internal/eventbus"
)

// EpisodeConfig defines the simulated horizon and weather.
type EpisodeConfig struct {
	// Hours is the number of time steps to simulate.
	Hours int `json:"hours"`
	// OutdoorTemps is the 24-entry daily outdoor temperature profile,
	// indexed by hour-of-day starting at hour 1.
	OutdoorTemps []float64 `json:"outdoor_temps"`
	// StartHour is the hour of day (1-24) of the first step.
	StartHour int `json:"start_hour"`
}

// SetDefaults applies a 24-hour horizon and a mild diurnal profile.
func (c *EpisodeConfig) SetDefaults() {
	if c.Hours == 0 {
		c.Hours = 24
	}
	if c.StartHour == 0 {
		c.StartHour = 1
	}
	if len(c.OutdoorTemps) == 0 {
		c.OutdoorTemps = []float64{
			14, 13, 13, 12, 12, 13, 15, 17, 19, 21, 23, 25,
			26, 27, 27, 26, 25, 23, 21, 19, 18, 17, 16, 15,
		}
	}
}

// Validate checks the episode description.
func (c EpisodeConfig) Validate() error {
	if c.Hours < 1 {
		return fmt.Errorf("hours must be positive")
	}
	if len(c.OutdoorTemps) != 24 {
		return fmt.Errorf("outdoor_temps must have 24 entries, got %d", len(c.OutdoorTemps))
	}
	if c.StartHour < 1 || c.StartHour > 24 {
		return fmt.Errorf("start_hour must be in 1-24")
	}
	return nil
}

// StepEvent is published on the bus after every simulated step.
type StepEvent struct {
	RunID    string
	TimeStep int
	Hour     int
	Records  []coremetrics.StepRecord
}

// Report summarizes a finished episode.
type Report struct {
	RunID          string
	Steps          int
	EnergyKWh      float64
	MeanAbsError   float64
	StdError       float64
	MaxAbsError    float64
	ComfortShare   float64
	StepsPerformed []coremetrics.StepRecord
}

// KPIs returns the report as a flat map, the shape the sinks persist.
func (r *Report) KPIs() map[string]float64 {
	return map[string]float64{
		"steps":          float64(r.Steps),
		"energy_kwh":     r.EnergyKWh,
		"mean_abs_error": r.MeanAbsError,
		"std_error":      r.StdError,
		"max_abs_error":  r.MaxAbsError,
		"comfort_share":  r.ComfortShare,
	}
}

// Episode steps a controller against a set of simulated buildings.
type Episode struct {
	cfg        EpisodeConfig
	buildings  []*Building
	controller rbc.Controller
	sink       coremetrics.MetricsSink
	bus        eventbus.EventBus
	log        corelogger.Logger
}

// NewEpisode wires an episode. The sink and bus may be nil.
func NewEpisode(cfg EpisodeConfig, buildings []*Building, controller rbc.Controller,
	sink coremetrics.MetricsSink, bus eventbus.EventBus, log corelogger.Logger) (*Episode, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(buildings) == 0 {
		return nil, fmt.Errorf("at least one building is required")
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Episode{cfg: cfg, buildings: buildings, controller: controller, sink: sink, bus: bus, log: log}, nil
}

// Run executes the configured horizon and returns the episode report. The
// controller state is reset first, so a single Episode can be re-run.
func (e *Episode) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	e.controller.Reset()

	var (
		records   []coremetrics.StepRecord
		absErrors []float64
		errors    []float64
		energyKWh float64
		inComfort int
	)

	for step := 0; step < e.cfg.Hours; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hour := (e.cfg.StartHour-1+step)%24 + 1

		observations := make([][]float64, len(e.buildings))
		for i, b := range e.buildings {
			observations[i] = b.Observe(hour)
		}

		actions, err := e.controller.Predict(observations, true)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		outdoor := e.cfg.OutdoorTemps[hour-1]
		stepRecords := make([]coremetrics.StepRecord, 0, len(e.buildings))
		for i, b := range e.buildings {
			energyKWh += b.Apply(actions[i], outdoor, 1.0)
			setErr := b.SetpointError()
			errors = append(errors, setErr)
			absErrors = append(absErrors, abs(setErr))
			if setErr == 0 {
				inComfort++
			}
			for j, device := range b.Devices() {
				if j >= len(actions[i]) {
					break
				}
				stepRecords = append(stepRecords, coremetrics.StepRecord{
					RunID:         runID,
					Building:      b.Name(),
					TimeStep:      step,
					Hour:          hour,
					Device:        device,
					Action:        actions[i][j],
					IndoorTemp:    b.Temp,
					SetpointError: setErr,
					Time:          time.Now(),
				})
			}
		}
		if err := e.sink.RecordSteps(stepRecords); err != nil && e.log != nil {
			e.log.Warnf("record steps: %v", err)
		}
		if e.bus != nil {
			e.bus.Publish(StepEvent{RunID: runID, TimeStep: step, Hour: hour, Records: stepRecords})
		}
		records = append(records, stepRecords...)
	}

	report := &Report{
		RunID:          runID,
		Steps:          e.cfg.Hours,
		EnergyKWh:      energyKWh,
		MeanAbsError:   stat.Mean(absErrors, nil),
		StdError:       stat.StdDev(errors, nil),
		MaxAbsError:    maxOf(absErrors),
		ComfortShare:   float64(inComfort) / float64(len(errors)),
		StepsPerformed: records,
	}
	if rec, ok := e.sink.(coremetrics.ReportRecorder); ok {
		if err := rec.RecordReport(runID, report.KPIs()); err != nil && e.log != nil {
			e.log.Warnf("record report: %v", err)
		}
	}
	if e.log != nil {
		e.log.Infof("episode %s finished: %d steps, %.1f kWh, mean abs error %.2f",
			runID, report.Steps, report.EnergyKWh, report.MeanAbsError)
	}
	return report, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}
