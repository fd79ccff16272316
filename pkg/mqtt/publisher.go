package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/imulink/pkg/msgs"
)

// MetaTopic is the per-device topic carrying retained Meta.
const MetaTopic = "meta"

// Meta describes a publishing device.
type Meta struct {
	DeviceID string   `json:"device_id"`
	Port     string   `json:"port,omitempty"`
	Records  []string `json:"records"`
	Online   bool     `json:"online"`
}

// Publisher is a sink publishing records under <prefix><device-id>/<record>.
type Publisher struct {
	Queue *Queue
	Meta  Meta
	// RetryInterval is the initial delay between failed connects,
	// doubled up to MaxRetryInterval.
	RetryInterval time.Duration
}

// Connect retry delays.
const (
	DefaultRetryInterval = time.Second
	MaxRetryInterval     = 30 * time.Second
)

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL string, meta Meta) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	offline := meta
	offline.Online = false
	will, err := json.Marshal(&offline)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+meta.DeviceID+"/"+MetaTopic, will, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("imud:" + meta.DeviceID)
	}
	p := &Publisher{
		Queue:         NewQueue(opts, topicPrefix),
		Meta:          meta,
		RetryInterval: DefaultRetryInterval,
	}
	p.Queue.OnConnect = func(*Queue) { p.publishMeta(true) }
	return p, nil
}

// Topic returns the topic, without prefix, of a record.
func (p *Publisher) Topic(recordName string) string {
	return p.Meta.DeviceID + "/" + recordName
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Run implements Runnable. A broker which can't be reached is reported
// and records are skipped until it comes back.
func (p *Publisher) Run(ctx context.Context) error {
	if p.connect(ctx) == nil {
		<-ctx.Done()
		if p.Queue.Client.IsConnected() {
			p.publishMeta(false).Wait()
		}
	}
	p.Queue.Close()
	return ctx.Err()
}

// connect retries until the first connect succeeds, the client
// reconnects by itself after that.
func (p *Publisher) connect(ctx context.Context) error {
	delay := p.RetryInterval
	if delay <= 0 {
		delay = DefaultRetryInterval
	}
	for {
		token := p.Queue.Connect()
		token.Wait()
		err := token.Error()
		if err == nil {
			return nil
		}
		glog.Errorf("mqtt connect: %v, retry in %s", err, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > MaxRetryInterval {
			delay = MaxRetryInterval
		}
	}
}

// HandleRecord implements sink.Sink.
func (p *Publisher) HandleRecord(_ context.Context, rec msgs.Record) error {
	if !p.Queue.Client.IsConnected() {
		return nil
	}
	data, err := proto.Marshal(rec)
	if err != nil {
		return err
	}
	p.Queue.Pub(p.Topic(rec.RecordName()), data)
	return nil
}

func (p *Publisher) publishMeta(online bool) paho.Token {
	meta := p.Meta
	meta.Online = online
	data, err := json.Marshal(&meta)
	if err != nil {
		panic(err)
	}
	return p.Queue.PubWith(p.Topic(MetaTopic), data, 1, true)
}

// DecodeRecord decodes a published record by its topic, without prefix.
// ok is false for topics not carrying records.
func DecodeRecord(topic string, payload []byte) (rec msgs.Record, ok bool, err error) {
	name := topic[strings.LastIndex(topic, "/")+1:]
	if rec, ok = msgs.NewRecord(name); !ok {
		return nil, false, nil
	}
	return rec, true, proto.Unmarshal(payload, rec)
}
