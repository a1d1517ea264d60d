package transport

import (
	"context"
	"sync"
)

// PublishedEvent records one call to FakeBroker.Publish, for assertions in
// engine tests about which lifecycle events were published, in order.
type PublishedEvent struct {
	Event    LifecycleEvent
	WorkerID string
	Body     []byte
}

// FakeBroker is an in-memory Broker double for engine tests: a FIFO queue of
// deliveries, a set of acked tags, and a log of published events.
type FakeBroker struct {
	mu        sync.Mutex
	queue     []Delivery
	acked     map[uint64]int
	published []PublishedEvent
}

// NewFakeBroker returns an empty FakeBroker.
func NewFakeBroker() *FakeBroker {
	return &FakeBroker{acked: map[uint64]int{}}
}

// Enqueue appends a Delivery to the fake queue, as if a producer had
// published it.
func (f *FakeBroker) Enqueue(d Delivery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, d)
}

// Intake implements Broker.
func (f *FakeBroker) Intake(ctx context.Context) (Delivery, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return Delivery{}, false, nil
	}
	d := f.queue[0]
	f.queue = f.queue[1:]
	return d, true, nil
}

// Ack implements Broker.
func (f *FakeBroker) Ack(ctx context.Context, tag uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked[tag]++
	return nil
}

// Publish implements Broker.
func (f *FakeBroker) Publish(ctx context.Context, event LifecycleEvent, workerID string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, PublishedEvent{Event: event, WorkerID: workerID, Body: body})
	return nil
}

// AckCount returns how many times tag has been acked (should never exceed 1
// per T4).
func (f *FakeBroker) AckCount(tag uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acked[tag]
}

// Published returns a snapshot of every event published so far, in order.
func (f *FakeBroker) Published() []PublishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PublishedEvent, len(f.published))
	copy(out, f.published)
	return out
}

// QueueLen returns the number of undelivered messages remaining.
func (f *FakeBroker) QueueLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
