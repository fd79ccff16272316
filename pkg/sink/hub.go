package sink

import (
	"context"

	"github.com/robotalks/imulink/pkg/msgs"
)

// Hub broadcasts records to subscribers. A slow subscriber misses
// records instead of stalling the pipeline.
type Hub struct {
	broadcast  chan msgs.Record
	register   chan chan msgs.Record
	unregister chan chan msgs.Record
	clients    map[chan msgs.Record]struct{}
	clientBuf  int
	done       chan struct{}
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan msgs.Record, 256),
		register:   make(chan chan msgs.Record),
		unregister: make(chan chan msgs.Record),
		clients:    make(map[chan msgs.Record]struct{}),
		clientBuf:  64,
		done:       make(chan struct{}),
	}
}

// Name implements Named.
func (h *Hub) Name() string {
	return "hub"
}

// Run implements Runnable.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for ch := range h.clients {
				close(ch)
			}
			h.clients = nil
			return ctx.Err()
		case ch := <-h.register:
			h.clients[ch] = struct{}{}
		case ch := <-h.unregister:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}
		case rec := <-h.broadcast:
			for ch := range h.clients {
				select {
				case ch <- rec:
				default:
				}
			}
		}
	}
}

// Subscribe registers a new subscriber. The returned channel is closed
// by the returned cancel func or when the hub stops.
func (h *Hub) Subscribe() (<-chan msgs.Record, func()) {
	ch := make(chan msgs.Record, h.clientBuf)
	select {
	case h.register <- ch:
	case <-h.done:
		close(ch)
		return ch, func() {}
	}
	return ch, func() {
		select {
		case h.unregister <- ch:
		case <-h.done:
		}
	}
}

// HandleRecord implements Sink.
func (h *Hub) HandleRecord(ctx context.Context, rec msgs.Record) error {
	select {
	case h.broadcast <- rec:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
