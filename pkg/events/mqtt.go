// Package events mirrors unit field changes and unit events onto an MQTT
// broker and turns command topics back into device state writes.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/zwhub/pkg/config"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/unit"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"
)

const (
	defaultTimeout = 5 * time.Second
	commandTimeout = 10 * time.Second
)

// ErrInvalidCommand is returned for a topic that is not a command topic.
var ErrInvalidCommand = errors.New("invalid command")

// StateSetter receives state writes parsed from command topics.
type StateSetter interface {
	SetDeviceState(ctx context.Context, id string, state map[string]any) (device.DeviceState, error)
}

// OptsFromConfig builds client options with a retained offline will on the
// bridge state topic.
func OptsFromConfig(cfg config.MQTTConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "zwhub_" + uuid.NewString()[:8]
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.BaseTopic)
	opts.WillQos = 0

	return opts
}

// Publisher is the broker side of the hub.
type Publisher struct {
	client        mqtt.Client
	baseTopic     string
	timeout       time.Duration
	commandRegexp *regexp.Regexp
	setter        StateSetter
}

// Command is a parsed command topic.
type Command struct {
	Unit    string
	Field   string
	Payload string
}

// NewPublisher creates a publisher for cfg. Command topics are ignored
// until HandleCommands is called.
func NewPublisher(cfg config.MQTTConfig) *Publisher {
	p := newPublisher(nil, cfg.BaseTopic, nil)
	opts := OptsFromConfig(cfg)
	opts.SetConnectRetry(true)
	opts.OnConnect = p.onConnect
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}
	p.client = mqtt.NewClient(opts)
	return p
}

func newPublisher(client mqtt.Client, baseTopic string, setter StateSetter) *Publisher {
	return &Publisher{
		client:        client,
		baseTopic:     baseTopic,
		timeout:       defaultTimeout,
		commandRegexp: commandExtractor(baseTopic),
		setter:        setter,
	}
}

// HandleCommands routes command topics to setter. It must be called
// before Connect.
func (p *Publisher) HandleCommands(setter StateSetter) {
	p.setter = setter
}

// Connect dials the broker and waits for the first connection.
func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("MQTT connect: %w", ctx.Err())
	}
}

// Close publishes the offline state and disconnects.
func (p *Publisher) Close() {
	if !p.client.IsConnected() {
		return
	}
	token := p.client.Publish(p.BridgeStateTopic(), 0, true, MQTT_PAYLOAD_OFFLINE)
	token.WaitTimeout(p.timeout)
	p.client.Disconnect(uint(p.timeout.Milliseconds()))
}

func (p *Publisher) onConnect(client mqtt.Client) {
	log.Info().Str("topic", p.baseTopic).Msg("MQTT connected")
	p.publish(p.BridgeStateTopic(), MQTT_PAYLOAD_ONLINE, true)
	if p.setter == nil {
		return
	}
	token := client.Subscribe(p.commandTopic(), 1, p.handleMessage)
	go func() {
		if !token.WaitTimeout(p.timeout) {
			log.Error().Msg("MQTT subscribe timed out")
		} else if err := token.Error(); err != nil {
			log.Error().Err(err).Msg("MQTT subscribe failed")
		}
	}()
}

func (p *Publisher) BridgeStateTopic() string {
	return bridgeStateTopic(p.baseTopic)
}

func (p *Publisher) FieldStateTopic(unitName, field string) string {
	return fmt.Sprintf("%s/unit/%s/%s/state", p.baseTopic, topicName(unitName), field)
}

func (p *Publisher) FieldCommandTopic(unitName, field string) string {
	return fmt.Sprintf("%s/unit/%s/%s/set", p.baseTopic, topicName(unitName), field)
}

func (p *Publisher) UnitEventTopic(unitName string) string {
	return fmt.Sprintf("%s/unit/%s/event", p.baseTopic, topicName(unitName))
}

func (p *Publisher) commandTopic() string {
	return fmt.Sprintf("%s/unit/+/+/set", p.baseTopic)
}

// --- zwave.EventSink interface ---

type eventMessage struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	Value     string    `json:"value"`
	UnitID    uint8     `json:"unit_id"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishEvent sends ev as JSON on the unit's event topic.
func (p *Publisher) PublishEvent(ev unit.Event) {
	payload, err := json.Marshal(eventMessage{
		ID:        uuid.NewString(),
		Kind:      string(ev.Kind),
		Source:    ev.Source,
		Value:     ev.Value,
		UnitID:    ev.UnitID,
		Unit:      ev.UnitName,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode unit event")
		return
	}
	p.publish(p.UnitEventTopic(ev.UnitName), payload, false)
}

// PublishField sends a field's new value, retained, on its state topic.
func (p *Publisher) PublishField(unitName, field string, value any) {
	p.publish(p.FieldStateTopic(unitName, field), fieldPayload(value), true)
}

func (p *Publisher) publish(topic string, payload any, retain bool) {
	token := p.client.Publish(topic, 0, retain, payload)
	go func() {
		if !token.WaitTimeout(p.timeout) {
			log.Warn().Str("topic", topic).Msg("MQTT publish timed out")
		} else if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("MQTT publish failed")
		}
	}()
}

func fieldPayload(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return MQTT_PAYLOAD_ON
		}
		return MQTT_PAYLOAD_OFF
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return fmt.Sprint(v)
	}
}

// --- commands ---

// ParseCommand extracts the unit and field from a command topic.
func (p *Publisher) ParseCommand(topic string, payload []byte) (*Command, error) {
	matches := p.commandRegexp.FindStringSubmatch(topic)
	if len(matches) != 3 {
		return nil, ErrInvalidCommand
	}
	return &Command{
		Unit:    matches[1],
		Field:   matches[2],
		Payload: strings.TrimSpace(string(payload)),
	}, nil
}

// Value converts the payload to what SetDeviceState expects: numbers
// become float64, everything else stays a string.
func (c *Command) Value() any {
	if n, err := strconv.ParseFloat(c.Payload, 64); err == nil {
		return n
	}
	return c.Payload
}

func (p *Publisher) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	cmd, err := p.ParseCommand(msg.Topic(), msg.Payload())
	if err != nil {
		log.Debug().Str("topic", msg.Topic()).Msg("Ignoring MQTT message")
		return
	}
	go p.apply(cmd)
}

func (p *Publisher) apply(cmd *Command) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	_, err := p.setter.SetDeviceState(ctx, cmd.Unit, map[string]any{cmd.Field: cmd.Value()})
	if err != nil {
		log.Warn().Err(err).
			Str("unit", cmd.Unit).
			Str("field", cmd.Field).
			Str("payload", cmd.Payload).
			Msg("MQTT command failed")
		return
	}
	log.Debug().Str("unit", cmd.Unit).Str("field", cmd.Field).Msg("MQTT command applied")
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}

func commandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s/unit/([^/]+)/([a-z0-9_]+)/set$`, regexp.QuoteMeta(baseTopic)))
}

func topicName(name string) string {
	return unit.TopicLevel(name)
}
