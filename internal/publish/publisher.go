// Package publish forwards samples, alerts and verdicts to an MQTT broker.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/loop"
)

// Config describes the broker connection.
type Config struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Username string
	Password string
	Topic    string // prefix; messages go to <Topic>/sample, /alert, /verdict
	QoS      byte
	Timeout  time.Duration // per-publish wait
}

// publisherClient is the slice of mqtt.Client the publisher uses.
type publisherClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher implements loop.Observer.
type Publisher struct {
	client  publisherClient
	topic   string
	qos     byte
	timeout time.Duration
	log     *log.Entry
}

// SampleMessage is the JSON body published for each sample.
type SampleMessage struct {
	Time        string  `json:"ts"`
	TimestampNS uint64  `json:"timestamp_ns"`
	TempC       float64 `json:"temp_c"`
	TempMilliC  int32   `json:"temp_mc"`
	Flags       uint32  `json:"flags"`
	Alert       bool    `json:"alert"`
}

// EventMessage is the JSON body for alerts and verdicts.
type EventMessage struct {
	Time    string `json:"ts"`
	Kind    string `json:"kind"`
	Verdict string `json:"verdict,omitempty"`
}

// New wraps an already connected client.
func New(client publisherClient, cfg Config) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Publisher{
		client:  client,
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		timeout: timeout,
		log:     log.WithField("package", "publish"),
	}
}

// Observe publishes the event. Failures are logged; the loop never waits
// longer than the publish timeout.
func (p *Publisher) Observe(ev loop.Event) {
	var (
		suffix string
		body   any
	)
	switch ev.Kind {
	case loop.EventSample:
		s := ev.Sample
		suffix = "sample"
		body = SampleMessage{
			Time:        s.FormatTime(),
			TimestampNS: s.TimestampNS,
			TempC:       s.Celsius(),
			TempMilliC:  s.TempMilliC,
			Flags:       s.Flags,
			Alert:       s.Alert(),
		}
	case loop.EventAlert:
		suffix = "alert"
		body = EventMessage{Time: ev.At.UTC().Format(time.RFC3339Nano), Kind: ev.Kind.String()}
	case loop.EventVerdict:
		suffix = "verdict"
		body = EventMessage{Time: ev.At.UTC().Format(time.RFC3339Nano), Kind: ev.Kind.String(), Verdict: ev.Verdict.String()}
	default:
		return
	}

	if err := p.publish(p.topic+"/"+suffix, body); err != nil {
		p.log.WithError(err).WithField("kind", ev.Kind.String()).Warn("publish failed")
	}
}

func (p *Publisher) publish(topic string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish %s: timed out after %s", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Connect dials the broker, retrying with exponential backoff for up to
// ten seconds.
func Connect(ctx context.Context, cfg Config) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(5 * time.Second)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithField("broker", cfg.Broker).Debug("mqtt connect attempt failed")
			return token.Error()
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("publish: connect %s: %w", cfg.Broker, err)
	}

	log.WithField("broker", cfg.Broker).Info("connected to MQTT broker")
	return client, nil
}

// Disconnect closes the client if it is still connected.
func Disconnect(client mqtt.Client) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
	}
}
