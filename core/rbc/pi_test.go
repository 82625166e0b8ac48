package rbc

import (
	"math"
	"testing"

	"github.com/kilianp07/bems/core/agent"
	"github.com/kilianp07/bems/core/model"
)

func newTestAgent(t *testing.T, actionNames []string, observationNames []string) *agent.Agent {
	t.Helper()
	a, err := agent.New([][]string{actionNames}, [][]string{observationNames})
	if err != nil {
		t.Fatalf("agent: %v", err)
	}
	return a
}

func newPI(t *testing.T, a *agent.Agent) *PITemperatureController {
	t.Helper()
	c, err := NewPITemperatureController(a, PIConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return c
}

func predictOne(t *testing.T, c Controller, obs []float64) []float64 {
	t.Helper()
	actions, err := c.Predict([][]float64{obs}, true)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected one agent, got %d", len(actions))
	}
	return actions[0]
}

func TestPIFirstStepCoolingAction(t *testing.T) {
	a := newTestAgent(t, []string{"cooling_device"}, []string{model.ObsIndoorTemperature})
	c := newPI(t, a)

	got := predictOne(t, c, []float64{26.0})
	// error 2.0 against the default 24.0 setpoint: 0.2*2 + 0.005*2 = 0.41
	if math.Abs(got[0]-0.41) > 1e-9 {
		t.Fatalf("expected 0.41, got %v", got[0])
	}
	if a.TimeStep() != 1 {
		t.Fatalf("time step not advanced: %d", a.TimeStep())
	}
}

func TestPIDeadbandResetsIntegral(t *testing.T) {
	a := newTestAgent(t, []string{"cooling_device"}, []string{model.ObsIndoorTemperature})
	c := newPI(t, a)
	key := model.IntegralKey{Building: 0, Role: model.RoleCooling}

	predictOne(t, c, []float64{26.0})
	if c.IntegralError(key) == 0 {
		t.Fatalf("integral should accumulate outside the deadband")
	}

	got := predictOne(t, c, []float64{24.2})
	if got[0] != 0 {
		t.Fatalf("expected zero action inside deadband, got %v", got[0])
	}
	if c.IntegralError(key) != 0 {
		t.Fatalf("integral not reset inside deadband: %v", c.IntegralError(key))
	}
}

func TestPISustainedErrorAccumulation(t *testing.T) {
	a := newTestAgent(t, []string{"cooling_device"}, []string{model.ObsIndoorTemperature})
	c := newPI(t, a)
	key := model.IntegralKey{Building: 0, Role: model.RoleCooling}

	const err = 2.0
	const limit = 10.0
	prev := 0.0
	for n := 1; n <= 10; n++ {
		got := predictOne(t, c, []float64{24.0 + err})
		wantAcc := math.Min(float64(n)*err, limit)
		if math.Abs(c.IntegralError(key)-wantAcc) > 1e-9 {
			t.Fatalf("step %d: integral %v, want %v", n, c.IntegralError(key), wantAcc)
		}
		if got[0] < prev-1e-12 {
			t.Fatalf("step %d: action %v decreased below %v", n, got[0], prev)
		}
		prev = got[0]
	}
}

func TestPIHeatingDevice(t *testing.T) {
	a := newTestAgent(t, []string{"heating_device"}, []string{model.ObsIndoorTemperature})
	c := newPI(t, a)

	// error = 20 - 17 = 3: 0.2*3 + 0.005*3 = 0.615
	got := predictOne(t, c, []float64{17.0})
	if math.Abs(got[0]-0.615) > 1e-9 {
		t.Fatalf("expected 0.615, got %v", got[0])
	}
}

func TestPICombinedDeviceMutualExclusion(t *testing.T) {
	a := newTestAgent(t, []string{"cooling_or_heating_device"}, []string{model.ObsIndoorTemperature})
	c := newPI(t, a)
	coolKey := model.IntegralKey{Building: 0, Role: model.RoleCombinedCooling}
	heatKey := model.IntegralKey{Building: 0, Role: model.RoleCombinedHeating}

	// Too hot: cooling activates, drawn negative.
	got := predictOne(t, c, []float64{27.0})
	if math.Abs(got[0]-(-0.615)) > 1e-9 {
		t.Fatalf("expected -0.615, got %v", got[0])
	}
	if c.IntegralError(heatKey) != 0 {
		t.Fatalf("heating accumulator not cleared while cooling: %v", c.IntegralError(heatKey))
	}

	// Too cold: heating activates and clears the cooling accumulator.
	got = predictOne(t, c, []float64{18.0})
	if got[0] <= 0 {
		t.Fatalf("expected positive heating action, got %v", got[0])
	}
	if c.IntegralError(coolKey) != 0 {
		t.Fatalf("cooling accumulator not cleared while heating: %v", c.IntegralError(coolKey))
	}

	// Inside both deadbands: no action, both accumulators cleared.
	got = predictOne(t, c, []float64{22.0})
	if got[0] != 0 {
		t.Fatalf("expected zero action inside deadband, got %v", got[0])
	}
	if c.IntegralError(coolKey) != 0 || c.IntegralError(heatKey) != 0 {
		t.Fatalf("accumulators not cleared: cool=%v heat=%v",
			c.IntegralError(coolKey), c.IntegralError(heatKey))
	}
}

func TestPIElectricalStorageHeuristic(t *testing.T) {
	a := newTestAgent(t, []string{"electrical_storage"}, []string{model.ObsHour})
	c := newPI(t, a)

	if got := predictOne(t, c, []float64{10}); got[0] != 0.11 {
		t.Fatalf("hour 10: expected 0.11, got %v", got[0])
	}
	if got := predictOne(t, c, []float64{20}); got[0] != -0.067 {
		t.Fatalf("hour 20: expected -0.067, got %v", got[0])
	}
}

func TestPIStorageDefaultSchedule(t *testing.T) {
	a := newTestAgent(t, []string{"dhw_storage"}, []string{model.ObsHour})
	c := newPI(t, a)

	if got := predictOne(t, c, []float64{15}); got[0] != -0.08 {
		t.Fatalf("hour 15: expected -0.08, got %v", got[0])
	}
	if got := predictOne(t, c, []float64{3}); got[0] != 0.091 {
		t.Fatalf("hour 3: expected 0.091, got %v", got[0])
	}
}

func TestPIStorageActionMapFailOpen(t *testing.T) {
	a := newTestAgent(t, []string{"dhw_storage"}, []string{model.ObsHour})
	c, err := NewPITemperatureController(a, PIConfig{}, HourTable{5: 0.25}, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	if got := predictOne(t, c, []float64{5}); got[0] != 0.25 {
		t.Fatalf("mapped hour: expected 0.25, got %v", got[0])
	}
	// Hours the map does not cover yield no storage activity.
	if got := predictOne(t, c, []float64{12}); got[0] != 0 {
		t.Fatalf("unmapped hour: expected 0, got %v", got[0])
	}
}

func TestPIMissingObservationsFailOpen(t *testing.T) {
	a := newTestAgent(t,
		[]string{"cooling_device", "dhw_storage", "electrical_storage"},
		[]string{"outdoor_dry_bulb_temperature"})
	c := newPI(t, a)

	got := predictOne(t, c, []float64{12.0})
	for i, v := range got {
		if v != 0 {
			t.Fatalf("action %d: expected fail-open zero, got %v", i, v)
		}
	}
}

func TestPIUnknownActionFallsThrough(t *testing.T) {
	a := newTestAgent(t, []string{"mystery_device"}, []string{model.ObsIndoorTemperature})
	c := newPI(t, a)

	if got := predictOne(t, c, []float64{26.0}); got[0] != 0 {
		t.Fatalf("unknown action should yield zero, got %v", got[0])
	}
}

func TestPIResetClearsIntegralState(t *testing.T) {
	a := newTestAgent(t, []string{"cooling_device"}, []string{model.ObsIndoorTemperature})
	c := newPI(t, a)
	key := model.IntegralKey{Building: 0, Role: model.RoleCooling}

	predictOne(t, c, []float64{27.0})
	if c.IntegralError(key) == 0 {
		t.Fatalf("integral should be non-zero before reset")
	}
	c.Reset()
	if c.IntegralError(key) != 0 {
		t.Fatalf("integral survived reset")
	}
	if a.TimeStep() != 0 || len(a.Actions()) != 0 {
		t.Fatalf("substrate not reset: step=%d history=%d", a.TimeStep(), len(a.Actions()))
	}
}

func TestPIConfigValidate(t *testing.T) {
	bad := PIConfig{Kp: 0.2, Ki: 0.005, TempDeadband: 0.5, IntegralLimit: 10, MinPower: 0.5, MaxPower: 0.2}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected inverted power band to fail validation")
	}
}
