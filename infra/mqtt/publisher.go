package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/kilianp07/bems/core/mqtt"
	"github.com/kilianp07/bems/infra/logger"
)

// ActionPublisher mirrors the core publisher interface.
type ActionPublisher = coremqtt.ActionPublisher

// Config defines the connection parameters for the Paho MQTT publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	TimeoutMS   int    `json:"timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "bems-controller"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "bems/buildings"
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 5000
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	return nil
}

// pahoClient is the subset of the Paho client used by the publisher,
// extracted so tests can substitute a fake.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher publishes action vectors over MQTT using Eclipse Paho.
type PahoPublisher struct {
	cli     pahoClient
	prefix  string
	qos     byte
	timeout time.Duration
	log     logger.Logger
}

// actionMessage is the JSON payload published per building and time step.
type actionMessage struct {
	Building  string             `json:"building"`
	TimeStep  int                `json:"time_step"`
	Actions   map[string]float64 `json:"actions"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewPahoPublisher connects to the MQTT broker described by cfg.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	p := &PahoPublisher{
		cli:     newMQTTClient(opts),
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		log:     logger.New("mqtt_publisher"),
	}
	tok := p.cli.Connect()
	if !tok.WaitTimeout(p.timeout) {
		return nil, fmt.Errorf("mqtt connect timeout after %s", p.timeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return p, nil
}

// PublishActions implements ActionPublisher.
func (p *PahoPublisher) PublishActions(building string, timeStep int, actions map[string]float64) error {
	msg := actionMessage{
		Building:  building,
		TimeStep:  timeStep,
		Actions:   actions,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/actions", p.prefix, building)
	tok := p.cli.Publish(topic, p.qos, false, payload)
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := tok.Error(); err != nil {
		p.log.Errorf("publish %s: %v", topic, err)
		return err
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() {
	p.cli.Disconnect(250)
}

// NopPublisher discards all actions. Used when MQTT is disabled.
type NopPublisher struct{}

// PublishActions implements ActionPublisher.
func (NopPublisher) PublishActions(string, int, map[string]float64) error { return nil }

// Close implements ActionPublisher.
func (NopPublisher) Close() {}
