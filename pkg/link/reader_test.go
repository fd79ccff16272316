package link

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type readStep struct {
	data []byte
	err  error
}

type scriptedReader struct {
	t     *testing.T
	steps []readStep
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	require.Len(r.t, p, DefaultChunkSize)
	if len(r.steps) == 0 {
		return 0, io.EOF
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	return copy(p, step.data), step.err
}

func collectChunks(t *testing.T, ch <-chan []byte) [][]byte {
	var chunks [][]byte
	timeout := time.After(time.Second)
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return chunks
			}
			chunks = append(chunks, chunk)
		case <-timeout:
			t.Fatal("reader output not closed")
		}
	}
}

func TestReaderForwardsChunksInOrder(t *testing.T) {
	errBroken := errors.New("port unplugged")
	src := &scriptedReader{t: t, steps: []readStep{
		{data: []byte{1, 2, 3}},
		{data: nil},
		{data: []byte{4}},
		{data: []byte{5, 6}, err: errBroken},
	}}
	out := make(chan []byte, 8)
	r := NewReader(src, out)

	err := r.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, errBroken))
	require.Equal(t, [][]byte{{1, 2, 3}, {4}, {5, 6}}, collectChunks(t, out))
}

func TestReaderEOFIsFatal(t *testing.T) {
	out := make(chan []byte, 1)
	err := NewReader(&scriptedReader{t: t}, out).Run(context.Background())
	require.True(t, errors.Is(err, io.EOF))
	require.Empty(t, collectChunks(t, out))
}

type blockingPort struct {
	closed chan struct{}
}

func (p *blockingPort) Read([]byte) (int, error) {
	<-p.closed
	return 0, errors.New("port closed")
}

func (p *blockingPort) Close() error {
	close(p.closed)
	return nil
}

func TestReaderCancelClosesSource(t *testing.T) {
	port := &blockingPort{closed: make(chan struct{})}
	out := make(chan []byte)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewReader(port, out).Run(ctx) }()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("reader not stopped")
	}
	_, ok := <-out
	require.False(t, ok)
}
