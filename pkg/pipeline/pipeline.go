// Package pipeline wires the stages between a transport and a sink.
package pipeline

import (
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/imulink/pkg/framework"
	"github.com/robotalks/imulink/pkg/interp"
	"github.com/robotalks/imulink/pkg/link"
	"github.com/robotalks/imulink/pkg/sink"
)

// Options tunes the queues and reads.
type Options struct {
	ChunkSize     int
	QueueCapacity int
	Overflow      fx.OverflowPolicy
}

// Pipeline is Reader -> chunks -> Decoder -> packets -> Interpreter.
type Pipeline struct {
	Reader      *link.Reader
	Chunks      *fx.Queue[[]byte]
	Decoder     *link.Decoder
	Packets     *fx.Queue[*link.Packet]
	Interpreter *interp.Interpreter
}

// New creates a Pipeline reading src and delivering records to s.
func New(src io.Reader, s sink.Sink, opts Options) *Pipeline {
	p := &Pipeline{
		Chunks:  fx.NewQueue[[]byte]().WithCapacity(opts.QueueCapacity, opts.Overflow),
		Packets: fx.NewQueue[*link.Packet]().WithCapacity(opts.QueueCapacity, opts.Overflow),
	}
	p.Reader = link.NewReader(src, p.Chunks.In())
	if opts.ChunkSize > 0 {
		p.Reader.ChunkSize = opts.ChunkSize
	}
	p.Decoder = link.NewDecoder(p.Chunks.Out(), p.Packets.In())
	p.Interpreter = interp.New(p.Packets.Out(), s)
	return p
}

// Runnables returns all stages and queues, to be started once.
func (p *Pipeline) Runnables() []fx.Runnable {
	return []fx.Runnable{
		p.Reader,
		fx.NamedRun("chunks", p.Chunks),
		p.Decoder,
		fx.NamedRun("packets", p.Packets),
		p.Interpreter,
	}
}

// LogStats reports counters at exit.
func (p *Pipeline) LogStats() {
	stats := p.Decoder.Stats()
	glog.Infof("bytes %d, frames %d, skipped %d, header crc %d, payload crc %d, unknown type %d",
		stats.Bytes, stats.Frames, stats.Skipped,
		stats.HeaderErrors, stats.PayloadErrors, stats.TypeErrors)
	if n := p.Chunks.Dropped() + p.Packets.Dropped(); n > 0 {
		glog.Warningf("%d items dropped by full queues", n)
	}
}
