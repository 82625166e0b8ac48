package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/bems/core/metrics"
)

// PromSink records control steps in Prometheus metrics.
type PromSink struct {
	steps      *prometheus.CounterVec
	action     *prometheus.GaugeVec
	indoorTemp *prometheus.GaugeVec
	tempError  *prometheus.HistogramVec
}

// NewPromSink registers control metrics on the default Prometheus registerer.
// The exposition server is started separately with StartPromServer.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "control_steps_total",
		Help: "Total number of per-device control actions computed",
	}, []string{"building", "device"})
	action := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "control_action",
		Help: "Last control action emitted per building and device",
	}, []string{"building", "device"})
	indoorTemp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "building_indoor_temperature",
		Help: "Last observed indoor dry bulb temperature per building",
	}, []string{"building"})
	tempError := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "building_setpoint_error",
		Help:    "Distribution of indoor temperature error against setpoint",
		Buckets: []float64{-5, -2, -1, -0.5, 0, 0.5, 1, 2, 5},
	}, []string{"building"})

	for _, c := range []prometheus.Collector{steps, action, indoorTemp, tempError} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{steps: steps, action: action, indoorTemp: indoorTemp, tempError: tempError}, nil
}

// RecordSteps updates the counters and gauges for each control step.
func (s *PromSink) RecordSteps(records []coremetrics.StepRecord) error {
	for _, r := range records {
		s.steps.WithLabelValues(r.Building, r.Device).Inc()
		s.action.WithLabelValues(r.Building, r.Device).Set(r.Action)
		s.indoorTemp.WithLabelValues(r.Building).Set(r.IndoorTemp)
		s.tempError.WithLabelValues(r.Building).Observe(r.SetpointError)
	}
	return nil
}

// StartPromServer starts an HTTP server exposing Prometheus metrics on the given address.
// The server runs until the provided context is canceled.
// A dedicated ServeMux is used to avoid interfering with other handlers.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("prom server shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
