package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"katalog/internal/jobs"
	"katalog/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RoundTripsEachKind(t *testing.T) {
	cases := []jobs.Job{
		jobs.BrandDeleted{BrandID: "b1", Name: "Nike"},
		jobs.CategoryDeleted{CategoryID: "c1", Name: "Shoes"},
		jobs.ProductCreated{ProductID: "p1", Name: "Runner", Slug: "runner"},
	}
	for _, j := range cases {
		t.Run(string(j.Kind()), func(t *testing.T) {
			env, err := jobs.NewEnvelope(j)
			require.NoError(t, err)
			assert.NotEmpty(t, env.ID)
			assert.Equal(t, j.Queue(), env.Queue)
			assert.Zero(t, env.Attempt)

			body, err := env.Marshal()
			require.NoError(t, err)
			parsed, err := jobs.ParseEnvelope(body)
			require.NoError(t, err)
			got, err := parsed.Job()
			require.NoError(t, err)
			assert.Equal(t, j, got)
		})
	}
}

func TestEnvelope_UnknownKind(t *testing.T) {
	_, err := jobs.Envelope{Kind: "orderShipped", Payload: []byte(`{}`)}.Job()
	assert.ErrorIs(t, err, jobs.ErrUnknownKind)
}

func TestPolicy_RetryDelayIsExponential(t *testing.T) {
	p := jobs.DefaultPolicy()
	assert.Equal(t, 10*time.Second, p.RetryDelay(1))
	assert.Equal(t, 20*time.Second, p.RetryDelay(2))
	assert.Equal(t, 40*time.Second, p.RetryDelay(3))
	assert.False(t, p.Exhausted(2))
	assert.True(t, p.Exhausted(3))
}

func fastPolicy() jobs.Policy {
	return jobs.Policy{Attempts: 3, Delay: 0, Backoff: time.Millisecond}
}

func startRunner(t *testing.T, broker *jobs.MemoryBroker, queue string, h jobs.Handler) {
	t.Helper()
	runner := jobs.NewRunner(broker, fastPolicy(), logging.Discard())
	runner.Register(queue, h)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = runner.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		broker.Close()
	})
}

func TestRunner_DeliversToHandler(t *testing.T) {
	broker := jobs.NewMemoryBroker()
	got := make(chan jobs.Job, 1)
	startRunner(t, broker, jobs.QueueBrand, jobs.HandlerFunc(func(_ context.Context, j jobs.Job, _ jobs.Progress) error {
		got <- j
		return nil
	}))

	id, err := jobs.NewProducer(broker, fastPolicy()).Enqueue(context.Background(), jobs.BrandDeleted{BrandID: "b1", Name: "Nike"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case j := <-got:
		assert.Equal(t, jobs.BrandDeleted{BrandID: "b1", Name: "Nike"}, j)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not delivered")
	}
	assert.Empty(t, broker.Failed(jobs.QueueBrand))
}

func TestRunner_RetriesThenSucceeds(t *testing.T) {
	broker := jobs.NewMemoryBroker()
	var calls atomic.Int32
	startRunner(t, broker, jobs.QueueCategory, jobs.HandlerFunc(func(context.Context, jobs.Job, jobs.Progress) error {
		if calls.Add(1) < 3 {
			return errors.New("database unavailable")
		}
		return nil
	}))

	_, err := jobs.NewProducer(broker, fastPolicy()).Enqueue(context.Background(), jobs.CategoryDeleted{CategoryID: "c1"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return calls.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
	assert.Empty(t, broker.Failed(jobs.QueueCategory))
}

func TestRunner_BuriesAfterLastAttempt(t *testing.T) {
	broker := jobs.NewMemoryBroker()
	var calls atomic.Int32
	startRunner(t, broker, jobs.QueueProduct, jobs.HandlerFunc(func(context.Context, jobs.Job, jobs.Progress) error {
		calls.Add(1)
		return errors.New("smtp down")
	}))

	_, err := jobs.NewProducer(broker, fastPolicy()).Enqueue(context.Background(), jobs.ProductCreated{ProductID: "p1"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(broker.Failed(jobs.QueueProduct)) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())

	failed := broker.Failed(jobs.QueueProduct)[0]
	assert.Equal(t, "smtp down", failed.Reason)
	env, err := jobs.ParseEnvelope(failed.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, env.Attempt)
}

func TestRunner_SkipsUnknownKind(t *testing.T) {
	broker := jobs.NewMemoryBroker()
	runner := jobs.NewRunner(broker, fastPolicy(), logging.Discard())
	var calls atomic.Int32
	runner.Register(jobs.QueueBrand, jobs.HandlerFunc(func(context.Context, jobs.Job, jobs.Progress) error {
		calls.Add(1)
		return nil
	}))

	body := []byte(`{"id":"x","queue":"brand","kind":"brandRenamed","payload":{}}`)
	require.NoError(t, runner.Process(context.Background(), jobs.QueueBrand, body))
	assert.Zero(t, calls.Load())
	assert.Empty(t, broker.Failed(jobs.QueueBrand))

	require.NoError(t, runner.Process(context.Background(), jobs.QueueBrand, []byte("not json")))
	assert.Len(t, broker.Failed(jobs.QueueBrand), 1)
}

func TestMemoryBroker_DelayedPublish(t *testing.T) {
	broker := jobs.NewMemoryBroker()
	defer broker.Close()

	require.NoError(t, broker.Publish(context.Background(), "q", []byte("late"), 30*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	got := make(chan []byte, 1)
	go broker.Consume(ctx, "q", func(_ context.Context, body []byte) error {
		got <- body
		return nil
	})
	select {
	case b := <-got:
		assert.Equal(t, "late", string(b))
		assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	case <-ctx.Done():
		t.Fatal("delayed message never arrived")
	}
}

// flakyBroker fails the first Consume call on every queue, the way a
// dropped broker connection ends a consumer.
type flakyBroker struct {
	*jobs.MemoryBroker
	failures atomic.Int32
}

func (b *flakyBroker) Consume(ctx context.Context, queue string, handle func(ctx context.Context, body []byte) error) error {
	if b.failures.Add(1) <= 2 {
		return errors.New("delivery channel closed")
	}
	return b.MemoryBroker.Consume(ctx, queue, handle)
}

func TestRunner_RestartsStoppedConsumer(t *testing.T) {
	broker := &flakyBroker{MemoryBroker: jobs.NewMemoryBroker()}
	got := make(chan jobs.Job, 1)

	runner := jobs.NewRunner(broker, fastPolicy(), logging.Discard())
	runner.SetRestartBackoff(5*time.Millisecond, 20*time.Millisecond)
	runner.Register(jobs.QueueBrand, jobs.HandlerFunc(func(_ context.Context, j jobs.Job, _ jobs.Progress) error {
		got <- j
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		broker.Close()
	})

	_, err := jobs.NewProducer(broker, fastPolicy()).Enqueue(context.Background(), jobs.BrandDeleted{BrandID: "b1", Name: "Nike"})
	require.NoError(t, err)

	select {
	case j := <-got:
		assert.Equal(t, jobs.BrandDeleted{BrandID: "b1", Name: "Nike"}, j)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer was not restarted")
	}
	assert.GreaterOrEqual(t, broker.failures.Load(), int32(3))
}
