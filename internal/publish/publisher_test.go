package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/luki/simtemp/internal/alert"
	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/sensor"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	msgs  []published
	token *fakeToken
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.msgs = append(c.msgs, published{topic: topic, payload: payload.([]byte)})
	if c.token != nil {
		return c.token
	}
	return &fakeToken{}
}

func TestPublishSample(t *testing.T) {
	c := &fakeClient{}
	p := New(c, Config{Topic: "lab/simtemp0"})

	ts := time.Date(2025, 10, 19, 14, 30, 0, 5_000_000, time.UTC)
	p.Observe(loop.Event{Kind: loop.EventSample, Sample: sensor.Sample{
		TimestampNS: uint64(ts.UnixNano()), TempMilliC: 45500, Flags: sensor.FlagAlert,
	}})
	p.Observe(loop.Event{Kind: loop.EventTimeout})

	if len(c.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(c.msgs))
	}
	if c.msgs[0].topic != "lab/simtemp0/sample" {
		t.Errorf("topic: got %q", c.msgs[0].topic)
	}
	var msg SampleMessage
	if err := json.Unmarshal(c.msgs[0].payload, &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Time != "2025-10-19T14:30:00.005Z" || msg.TempC != 45.5 || !msg.Alert {
		t.Errorf("message: %+v", msg)
	}
}

func TestPublishAlertAndVerdict(t *testing.T) {
	c := &fakeClient{}
	p := New(c, Config{Topic: "t"})
	at := time.Date(2025, 10, 19, 14, 30, 0, 0, time.UTC)

	p.Observe(loop.Event{Kind: loop.EventAlert, At: at})
	p.Observe(loop.Event{Kind: loop.EventVerdict, At: at, Verdict: alert.Pass})

	if len(c.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.msgs))
	}
	if c.msgs[0].topic != "t/alert" || c.msgs[1].topic != "t/verdict" {
		t.Errorf("topics: %q %q", c.msgs[0].topic, c.msgs[1].topic)
	}
	var v EventMessage
	if err := json.Unmarshal(c.msgs[1].payload, &v); err != nil {
		t.Fatal(err)
	}
	if v.Verdict != "PASS" || v.Kind != "verdict" {
		t.Errorf("verdict message: %+v", v)
	}
}

func TestPublishErrors(t *testing.T) {
	p := New(&fakeClient{token: &fakeToken{err: errors.New("not connected")}}, Config{Topic: "t"})
	if err := p.publish("t/x", map[string]int{"a": 1}); err == nil {
		t.Error("expected token error")
	}

	p = New(&fakeClient{token: &fakeToken{timeout: true}}, Config{Topic: "t", Timeout: time.Millisecond})
	if err := p.publish("t/x", map[string]int{"a": 1}); err == nil {
		t.Error("expected timeout error")
	}
}
