package sim

import (
	"context"
	"testing"

	"github.com/kilianp07/bems/core/agent"
	coremetrics "github.com/kilianp07/bems/core/metrics"
	"github.com/kilianp07/bems/core/rbc"
	"github.com/kilianp07/bems/internal/eventbus"
)

type captureSink struct {
	steps   []coremetrics.StepRecord
	reports int
}

func (c *captureSink) RecordSteps(records []coremetrics.StepRecord) error {
	c.steps = append(c.steps, records...)
	return nil
}

func (c *captureSink) RecordReport(string, map[string]float64) error {
	c.reports++
	return nil
}

func newEpisode(t *testing.T, sink coremetrics.MetricsSink, bus eventbus.EventBus) *Episode {
	t.Helper()
	b, err := NewBuilding(BuildingConfig{Name: "b1", Devices: []string{"cooling_device", "dhw_storage"}})
	if err != nil {
		t.Fatalf("building: %v", err)
	}
	a, err := agent.New([][]string{b.Devices()}, [][]string{b.ObservationNames()})
	if err != nil {
		t.Fatalf("agent: %v", err)
	}
	ctrl, err := rbc.NewPITemperatureController(a, rbc.PIConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	ep, err := NewEpisode(EpisodeConfig{}, []*Building{b}, ctrl, sink, bus, nil)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	return ep
}

func TestEpisodeRun(t *testing.T) {
	sink := &captureSink{}
	ep := newEpisode(t, sink, nil)

	report, err := ep.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RunID == "" {
		t.Fatalf("missing run id")
	}
	if report.Steps != 24 {
		t.Fatalf("steps: %d", report.Steps)
	}
	// One record per building device per step.
	if len(sink.steps) != 24*2 {
		t.Fatalf("recorded steps: %d", len(sink.steps))
	}
	if sink.reports != 1 {
		t.Fatalf("report not recorded")
	}
	if report.ComfortShare < 0 || report.ComfortShare > 1 {
		t.Fatalf("comfort share out of range: %v", report.ComfortShare)
	}
}

func TestEpisodePublishesStepEvents(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	ep := newEpisode(t, nil, bus)

	if _, err := ep.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	select {
	case e := <-sub:
		ev, ok := e.(StepEvent)
		if !ok {
			t.Fatalf("unexpected event type: %T", e)
		}
		if len(ev.Records) == 0 {
			t.Fatalf("step event without records")
		}
	default:
		t.Fatalf("no step event published")
	}
}

func TestEpisodeCancel(t *testing.T) {
	ep := newEpisode(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ep.Run(ctx); err == nil {
		t.Fatalf("cancelled context should abort the run")
	}
}

func TestEpisodeConfigValidate(t *testing.T) {
	cfg := EpisodeConfig{Hours: 24, StartHour: 25, OutdoorTemps: make([]float64, 24)}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("start_hour 25 should fail")
	}
	cfg = EpisodeConfig{Hours: 24, StartHour: 1, OutdoorTemps: make([]float64, 12)}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("short weather profile should fail")
	}
}
