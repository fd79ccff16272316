package link

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/imulink/pkg/framework"
)

// DefaultChunkSize is the maximum size of a single transport read.
const DefaultChunkSize = 128

// Reader forwards raw chunks from a transport. It knows nothing about
// framing. A read error ends the stream and is returned as fatal.
type Reader struct {
	Source    io.Reader
	ChunkSize int
	Out       chan<- []byte
}

// NewReader creates a Reader.
func NewReader(src io.Reader, out chan<- []byte) *Reader {
	return &Reader{Source: src, ChunkSize: DefaultChunkSize, Out: out}
}

// Name implements Named.
func (r *Reader) Name() string {
	return "reader"
}

// Run implements Runnable. Out is closed when Run returns.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.Out)
	if closer, ok := r.Source.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, func() error {
			return r.readLoop(ctx)
		})
	}
	return r.readLoop(ctx)
}

func (r *Reader) readLoop(ctx context.Context) error {
	size := r.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	for {
		n, err := r.Source.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if glog.V(4) {
				glog.Infof("read % 02x", chunk)
			}
			select {
			case r.Out <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			return fmt.Errorf("transport read: %w", err)
		}
	}
}
