package framework

import (
	"container/list"
	"context"
	"sync/atomic"
)

// OverflowPolicy decides what a bounded Queue does when it is full.
type OverflowPolicy int

const (
	// OverflowBlock stops accepting items until the consumer catches up.
	OverflowBlock OverflowPolicy = iota
	// OverflowDropOldest discards the oldest pending item to make room.
	OverflowDropOldest
)

// String implements fmt.Stringer.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowBlock:
		return "block"
	case OverflowDropOldest:
		return "drop-oldest"
	}
	return "unknown"
}

// ParseOverflowPolicy parses the name produced by String.
func ParseOverflowPolicy(s string) (OverflowPolicy, bool) {
	switch s {
	case "block", "":
		return OverflowBlock, true
	case "drop-oldest":
		return OverflowDropOldest, true
	}
	return OverflowBlock, false
}

// Queue is a single-producer/single-consumer FIFO connecting two stages.
// With Capacity 0 it never blocks the producer and grows without bound.
// The producer closes In to signal the end of the stream; Out is closed
// after every pending item has been delivered.
type Queue[T any] struct {
	Capacity int
	Policy   OverflowPolicy

	in      chan T
	out     chan T
	dropped atomic.Uint64
}

// NewQueue creates an unbounded Queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{in: make(chan T), out: make(chan T)}
}

// WithCapacity bounds the queue with the given overflow policy.
func (q *Queue[T]) WithCapacity(capacity int, policy OverflowPolicy) *Queue[T] {
	q.Capacity, q.Policy = capacity, policy
	return q
}

// In is the producer side.
func (q *Queue[T]) In() chan<- T {
	return q.in
}

// Out is the consumer side.
func (q *Queue[T]) Out() <-chan T {
	return q.out
}

// Dropped reports how many items were discarded by OverflowDropOldest.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}

// Run implements Runnable.
func (q *Queue[T]) Run(ctx context.Context) error {
	defer close(q.out)
	var pending list.List
	in := q.in
	for {
		if in == nil && pending.Len() == 0 {
			return nil
		}
		full := q.Capacity > 0 && pending.Len() >= q.Capacity
		recv := in
		if full && q.Policy == OverflowBlock {
			recv = nil
		}
		var out chan T
		var front T
		if pending.Len() > 0 {
			out, front = q.out, pending.Front().Value.(T)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-recv:
			if !ok {
				in = nil
				continue
			}
			if full {
				pending.Remove(pending.Front())
				q.dropped.Add(1)
			}
			pending.PushBack(item)
		case out <- front:
			pending.Remove(pending.Front())
		}
	}
}
