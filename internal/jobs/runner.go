package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Progress reports the completion percentage of the running job.
type Progress func(percent int)

// Handler executes the jobs of one queue.
type Handler interface {
	Handle(ctx context.Context, job Job, progress Progress) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job Job, progress Progress) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, job Job, progress Progress) error {
	return f(ctx, job, progress)
}

// Runner consumes every registered queue and applies the retry policy.
type Runner struct {
	broker   Broker
	policy   Policy
	logger   *slog.Logger
	mu       sync.Mutex
	handlers map[string]Handler

	restartMin time.Duration
	restartMax time.Duration
}

// NewRunner creates a Runner.
func NewRunner(broker Broker, policy Policy, logger *slog.Logger) *Runner {
	return &Runner{
		broker:   broker,
		policy:   policy,
		logger:   logger,
		handlers: make(map[string]Handler),

		restartMin: time.Second,
		restartMax: 30 * time.Second,
	}
}

// Register binds h to queue, replacing any earlier handler.
func (r *Runner) Register(queue string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[queue] = h
}

// Run consumes every registered queue until ctx is cancelled. A consumer
// that stops with an error is logged and restarted after a capped,
// doubling delay, so one broker outage does not end background work.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	queues := make([]string, 0, len(r.handlers))
	for q := range r.handlers {
		queues = append(queues, q)
	}
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queues {
		g.Go(func() error {
			r.consume(gctx, q)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) consume(ctx context.Context, queue string) {
	delay := r.restartMin
	for {
		r.logger.Info("Worker started", "queue", queue)
		started := time.Now()
		err := r.broker.Consume(ctx, queue, func(ctx context.Context, body []byte) error {
			return r.Process(ctx, queue, body)
		})
		if ctx.Err() != nil || err == nil {
			r.logger.Info("Worker stopped", "queue", queue)
			return
		}
		if time.Since(started) >= r.restartMax {
			delay = r.restartMin
		}
		r.logger.Error("Worker stopped unexpectedly, restarting", "queue", queue, "retryIn", delay.String(), "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, r.restartMax)
	}
}

// SetRestartBackoff sets the first and the largest wait before a stopped
// consumer is restarted. The defaults are 1s and 30s.
func (r *Runner) SetRestartBackoff(first, limit time.Duration) {
	r.restartMin, r.restartMax = first, limit
}

// Process runs one delivery from queue. Job failures are retried or buried
// here; only broker errors are returned.
func (r *Runner) Process(ctx context.Context, queue string, body []byte) error {
	env, err := ParseEnvelope(body)
	if err != nil {
		r.logger.Error("Malformed job", "queue", queue, "error", err)
		return r.broker.Bury(ctx, queue, body, err.Error())
	}
	log := r.logger.With("queue", queue, "jobId", env.ID, "kind", env.Kind)

	job, err := env.Job()
	if errors.Is(err, ErrUnknownKind) {
		log.Warn("Unknown job kind, skipping")
		return nil
	}
	if err != nil {
		log.Error("Undecodable job payload", "error", err)
		return r.broker.Bury(ctx, queue, body, err.Error())
	}

	r.mu.Lock()
	h, ok := r.handlers[queue]
	r.mu.Unlock()
	if !ok {
		log.Warn("No handler registered for queue, skipping")
		return nil
	}

	env.Attempt++
	log = log.With("attempt", env.Attempt)
	log.Info("Job started")

	err = h.Handle(ctx, job, func(percent int) {
		log.Info("Job progress", "percent", percent)
	})
	if err == nil {
		log.Info("Job completed")
		return nil
	}
	log.Error("Job failed", "error", err)

	next, encErr := env.Marshal()
	if encErr != nil {
		return fmt.Errorf("failed to encode job %s for retry: %w", env.ID, encErr)
	}
	if r.policy.Exhausted(env.Attempt) {
		log.Error("Job moved to failed queue", "attempts", env.Attempt)
		return r.broker.Bury(ctx, queue, next, err.Error())
	}
	delay := r.policy.RetryDelay(env.Attempt)
	log.Info("Job retry scheduled", "delay", delay.String())
	return r.broker.Publish(ctx, queue, next, delay)
}
