package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/bems/config"
	"github.com/kilianp07/bems/core/agent"
	coremetrics "github.com/kilianp07/bems/core/metrics"
	coremqtt "github.com/kilianp07/bems/core/mqtt"
	"github.com/kilianp07/bems/core/rbc"
	"github.com/kilianp07/bems/core/sim"
	"github.com/kilianp07/bems/infra/logger"
	"github.com/kilianp07/bems/infra/metrics"
	"github.com/kilianp07/bems/infra/mqtt"
	"github.com/kilianp07/bems/internal/eventbus"
)

// Service orchestrates the simulated buildings, the controller and the
// telemetry pipeline.
type Service struct {
	Episode   *sim.Episode
	publisher coremqtt.ActionPublisher
	bus       eventbus.EventBus
	sink      coremetrics.MetricsSink
	buildings []*sim.Building
	log       logger.Logger

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	buildings := make([]*sim.Building, 0, len(cfg.Buildings))
	for _, bc := range cfg.Buildings {
		b, err := sim.NewBuilding(bc)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", bc.Name, err)
		}
		buildings = append(buildings, b)
	}

	controller, err := buildController(cfg.Controller, buildings, logg)
	if err != nil {
		return nil, err
	}

	sink := buildSink(cfg.Metrics)
	bus := eventbus.New()

	var publisher coremqtt.ActionPublisher = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		publisher, err = mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	episode, err := sim.NewEpisode(cfg.Episode, buildings, controller, sink, bus, logg)
	if err != nil {
		return nil, err
	}

	return &Service{
		Episode:     episode,
		publisher:   publisher,
		bus:         bus,
		sink:        sink,
		buildings:   buildings,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// buildController instantiates the policy selected in the configuration.
// Each building is one agent of the controller.
func buildController(cfg config.ControllerConfig, buildings []*sim.Building, logg logger.Logger) (rbc.Controller, error) {
	actionNames := make([][]string, 0, len(buildings))
	observationNames := make([][]string, 0, len(buildings))
	for _, b := range buildings {
		actionNames = append(actionNames, b.Devices())
		observationNames = append(observationNames, b.ObservationNames())
	}
	a, err := agent.New(actionNames, observationNames)
	if err != nil {
		return nil, err
	}

	raw := cfg.RawActionMap()
	switch cfg.Type {
	case config.ControllerPI:
		return rbc.NewPITemperatureController(a, cfg.PI, raw, logg)
	case config.ControllerHour:
		schedule, err := rbc.ScheduleByName(cfg.Schedule)
		if err != nil {
			return nil, err
		}
		return rbc.NewHourRBC(a, raw, schedule, logg)
	case config.ControllerBasic:
		return rbc.NewBasicRBC(a, raw, logg)
	case config.ControllerOptimized:
		return rbc.NewOptimizedRBC(a, raw, logg)
	case config.ControllerBasicBattery:
		return rbc.NewBasicBatteryRBC(a, raw, logg)
	case config.ControllerElectricVehicle:
		return rbc.NewElectricVehicleRBC(a, raw, logg)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cfg.Type)
	}
}

func buildSink(cfg coremetrics.Config) coremetrics.MetricsSink {
	var sinks []coremetrics.MetricsSink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg)
		if err != nil {
			logger.New("metrics").Errorf("prom sink: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}
	case 1:
		return sinks[0]
	default:
		return metrics.NewMultiSink(sinks...)
	}
}

// Run executes one episode, forwarding every step to the MQTT gateway.
func (s *Service) Run(ctx context.Context) (*sim.Report, error) {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	events := s.bus.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			step, ok := ev.(sim.StepEvent)
			if !ok {
				continue
			}
			s.publishStep(step)
		}
	}()

	report, err := s.Episode.Run(ctx)
	s.bus.Unsubscribe(events)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	s.log.Infof("episode %s finished: %d steps, %.2f kWh, mean |error| %.3f",
		report.RunID, report.Steps, report.EnergyKWh, report.MeanAbsError)
	return report, nil
}

func (s *Service) publishStep(step sim.StepEvent) {
	byBuilding := make(map[string]map[string]float64)
	for _, rec := range step.Records {
		actions := byBuilding[rec.Building]
		if actions == nil {
			actions = make(map[string]float64)
			byBuilding[rec.Building] = actions
		}
		actions[rec.Device] = rec.Action
	}
	for building, actions := range byBuilding {
		if err := s.publisher.PublishActions(building, step.TimeStep, actions); err != nil {
			s.log.Warnf("publish actions for %s: %v", building, err)
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.publisher.Close()
	s.bus.Close()
	if closer, ok := s.sink.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}
