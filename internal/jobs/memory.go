package jobs

import (
	"context"
	"sync"
	"time"
)

// FailedJob is a buried message and the reason it was buried.
type FailedJob struct {
	Body   []byte
	Reason string
}

// MemoryBroker is an in-process Broker. Delayed messages are released by
// timers; buried messages are kept for inspection.
type MemoryBroker struct {
	mu     sync.Mutex
	queues map[string]chan []byte
	failed map[string][]FailedJob
	timers map[*time.Timer]struct{}
	done   chan struct{}
	closed bool
}

// NewMemoryBroker creates an empty MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		queues: make(map[string]chan []byte),
		failed: make(map[string][]FailedJob),
		timers: make(map[*time.Timer]struct{}),
		done:   make(chan struct{}),
	}
}

func (b *MemoryBroker) queue(name string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		q = make(chan []byte, 1024)
		b.queues[name] = q
	}
	return q
}

// Publish implements Broker.
func (b *MemoryBroker) Publish(ctx context.Context, queue string, body []byte, delay time.Duration) error {
	q := b.queue(queue)
	msg := append([]byte(nil), body...)
	if delay <= 0 {
		select {
		case q <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return nil
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		b.mu.Lock()
		delete(b.timers, t)
		b.mu.Unlock()
		select {
		case q <- msg:
		case <-b.done:
		}
	})
	b.timers[t] = struct{}{}
	return nil
}

// Bury implements Broker.
func (b *MemoryBroker) Bury(_ context.Context, queue string, body []byte, reason string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed[queue] = append(b.failed[queue], FailedJob{Body: append([]byte(nil), body...), Reason: reason})
	return nil
}

// Consume implements Broker. Handler errors put the message back on the queue.
func (b *MemoryBroker) Consume(ctx context.Context, queue string, handle func(ctx context.Context, body []byte) error) error {
	q := b.queue(queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return nil
		case msg := <-q:
			if err := handle(ctx, msg); err != nil {
				select {
				case q <- msg:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// Failed returns the messages buried on queue.
func (b *MemoryBroker) Failed(queue string) []FailedJob {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]FailedJob(nil), b.failed[queue]...)
}

// Close stops pending timers and consumers.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for t := range b.timers {
		t.Stop()
	}
	close(b.done)
	return nil
}
