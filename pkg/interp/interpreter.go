// Package interp turns validated packets into records.
package interp

import (
	"context"
	"errors"

	"github.com/golang/glog"

	"github.com/robotalks/imulink/pkg/link"
	"github.com/robotalks/imulink/pkg/msgs"
	"github.com/robotalks/imulink/pkg/sink"
)

// Interpreter is the last pipeline stage.
type Interpreter struct {
	In       <-chan *link.Packet
	Sink     sink.Sink
	Decoders msgs.Decoders
}

// New creates an Interpreter with the default decoders.
func New(in <-chan *link.Packet, s sink.Sink) *Interpreter {
	return &Interpreter{In: in, Sink: s, Decoders: msgs.DefaultDecoders()}
}

// Name implements Named.
func (i *Interpreter) Name() string {
	return "interpreter"
}

// Run implements Runnable.
func (i *Interpreter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt, ok := <-i.In:
			if !ok {
				glog.Warning("interpreter: packet stream closed")
				return nil
			}
			i.Handle(ctx, pkt)
		}
	}
}

// Handle decodes a single packet and hands the record to the sink.
// It returns the record, or nil if the packet was discarded.
func (i *Interpreter) Handle(ctx context.Context, pkt *link.Packet) msgs.Record {
	dec, ok := i.Decoders[pkt.Type]
	if !ok {
		glog.V(4).Infof("discard %s", pkt)
		return nil
	}
	rec, err := dec.DecodePayload(pkt.Type, pkt.Payload())
	if err != nil {
		var sizeErr *msgs.SizeError
		if errors.As(err, &sizeErr) {
			glog.Warningf("drop packet seq %d: %v", pkt.Seq(), err)
		} else {
			glog.Errorf("decode packet seq %d: %v", pkt.Seq(), err)
		}
		return nil
	}
	if i.Sink != nil {
		if err := i.Sink.HandleRecord(ctx, rec); err != nil && err != context.Canceled {
			glog.Errorf("deliver %s: %v", rec.RecordName(), err)
		}
	}
	return rec
}
