package jobs

import (
	"context"
	"fmt"
	"time"
)

// Broker moves encoded envelopes between producers and the runner.
type Broker interface {
	// Publish makes body available on queue once delay has elapsed.
	Publish(ctx context.Context, queue string, body []byte, delay time.Duration) error
	// Bury moves body to the queue's failed set, where it is retained.
	Bury(ctx context.Context, queue string, body []byte, reason string) error
	// Consume delivers messages from queue to handle until ctx is done.
	// A handler error asks the broker to redeliver the message.
	Consume(ctx context.Context, queue string, handle func(ctx context.Context, body []byte) error) error
}

// Producer enqueues jobs.
type Producer struct {
	broker Broker
	policy Policy
}

// NewProducer creates a Producer publishing to broker with policy.Delay.
func NewProducer(broker Broker, policy Policy) *Producer {
	return &Producer{broker: broker, policy: policy}
}

// Enqueue publishes j to its queue and returns the job id.
func (p *Producer) Enqueue(ctx context.Context, j Job) (string, error) {
	env, err := NewEnvelope(j)
	if err != nil {
		return "", err
	}
	body, err := env.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to encode job envelope: %w", err)
	}
	if err := p.broker.Publish(ctx, env.Queue, body, p.policy.Delay); err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", env.Kind, err)
	}
	return env.ID, nil
}
