package link

import (
	"context"

	"github.com/golang/glog"
)

// CorruptionHandler is notified when a candidate frame is rejected.
type CorruptionHandler interface {
	HandleCorruption(context.Context, error)
}

// HandleCorruptionFunc is func type of CorruptionHandler.
type HandleCorruptionFunc func(context.Context, error)

// HandleCorruption implements CorruptionHandler.
func (f HandleCorruptionFunc) HandleCorruption(ctx context.Context, err error) {
	f(ctx, err)
}

// LogCorruption reports rejected frames as warnings.
var LogCorruption = HandleCorruptionFunc(func(_ context.Context, err error) {
	glog.Warningf("frame rejected: %v", err)
})

// Decoder is the stage turning chunks into validated packets.
type Decoder struct {
	In       <-chan []byte
	Out      chan<- *Packet
	Notifier CorruptionHandler

	parser Parser
}

// NewDecoder creates a Decoder reporting corruption to glog.
func NewDecoder(in <-chan []byte, out chan<- *Packet) *Decoder {
	return &Decoder{In: in, Out: out, Notifier: LogCorruption}
}

// Name implements Named.
func (d *Decoder) Name() string {
	return "decoder"
}

// Stats returns parser counters, safe to call from other goroutines.
func (d *Decoder) Stats() Stats {
	return d.parser.Stats()
}

// Run implements Runnable. Out is closed when Run returns.
func (d *Decoder) Run(ctx context.Context) error {
	defer close(d.Out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-d.In:
			if !ok {
				glog.Warningf("decoder: byte stream closed, %d bytes left in state %s",
					d.parser.Buffered(), d.parser.State())
				return nil
			}
			d.parser.Feed(chunk)
			if err := d.drain(ctx); err != nil {
				return err
			}
		}
	}
}

func (d *Decoder) drain(ctx context.Context) error {
	for {
		pr := d.parser.Next()
		if pr.NeedMore() {
			return nil
		}
		if pr.Err != nil {
			if h := d.Notifier; h != nil {
				h.HandleCorruption(ctx, pr.Err)
			}
			continue
		}
		glog.V(4).Infof("frame %s", pr.Packet)
		select {
		case d.Out <- pr.Packet:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
