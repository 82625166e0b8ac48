package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type mockToken struct{}

func (t *mockToken) Wait() bool                       { return true }
func (t *mockToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *mockToken) Error() error                     { return nil }
func (t *mockToken) Done() <-chan struct{}            { return make(chan struct{}) }

type mockClient struct {
	Disconnected bool
	Topics       []string
	Payloads     [][]byte
}

func (m *mockClient) IsConnected() bool   { return true }
func (m *mockClient) Connect() paho.Token { return &mockToken{} }
func (m *mockClient) Disconnect(uint)     { m.Disconnected = true }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.Topics = append(m.Topics, topic)
	m.Payloads = append(m.Payloads, payload.([]byte))
	return &mockToken{}
}

func TestPublishActions(t *testing.T) {
	mc := &mockClient{}
	p := &PahoPublisher{cli: mc, prefix: "bems/buildings", timeout: time.Second}

	actions := map[string]float64{"cooling_device": 0.41, "dhw_storage": -0.08}
	if err := p.PublishActions("b1", 7, actions); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.Topics) != 1 || mc.Topics[0] != "bems/buildings/b1/actions" {
		t.Fatalf("topic: %v", mc.Topics)
	}

	var msg actionMessage
	if err := json.Unmarshal(mc.Payloads[0], &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if msg.Building != "b1" || msg.TimeStep != 7 || msg.Actions["cooling_device"] != 0.41 {
		t.Fatalf("message: %+v", msg)
	}
}

func TestCloseDisconnectsClient(t *testing.T) {
	mc := &mockClient{}
	p := &PahoPublisher{cli: mc, timeout: time.Second}
	p.Close()
	if !mc.Disconnected {
		t.Errorf("expected Disconnect() to be called")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("enabled publisher without broker must fail validation")
	}
	cfg.SetDefaults()
	if cfg.ClientID == "" || cfg.TopicPrefix == "" || cfg.TimeoutMS == 0 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
