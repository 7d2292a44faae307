package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/pvcharge/core/control"
	"github.com/kilianp07/pvcharge/core/model"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeClient struct {
	topics   []string
	payloads [][]byte
	retained bool
}

func (f *fakeClient) IsConnected() bool     { return true }
func (f *fakeClient) Connect() paho.Token   { return fakeToken{} }
func (f *fakeClient) Disconnect(uint)       {}
func (f *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) paho.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	f.retained = retained
	return fakeToken{}
}

func TestPublishCycle(t *testing.T) {
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	defer func() { newMQTTClient = orig }()

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", Retain: true})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()

	res := control.CycleResult{
		Time:     time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Decision: model.Decision{Action: model.ActionCharge, Amps: 12, SurplusW: 2800},
	}
	if err := pub.PublishCycle(res); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fake.topics) != 1 || fake.topics[0] != "pvcharge/cycle" {
		t.Fatalf("topics = %v", fake.topics)
	}
	if !fake.retained {
		t.Fatalf("expected retained publish")
	}
	var got control.CycleResult
	if err := json.Unmarshal(fake.payloads[0], &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Decision.Amps != 12 {
		t.Fatalf("payload decision = %+v", got.Decision)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatalf("empty broker must disable telemetry")
	}
	if !(Config{Broker: "tcp://b:1883"}).Enabled() {
		t.Fatalf("broker set must enable telemetry")
	}
}
