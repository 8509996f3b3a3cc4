package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"katalog/internal/cache"
	"katalog/internal/jobs"
	"katalog/internal/mail"
	"katalog/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockMailer is a mock implementation of mail.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

// recordingQueue captures enqueued jobs instead of publishing them.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, j jobs.Job) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, j)
	return uuid.NewString(), nil
}

func (q *recordingQueue) Jobs() []jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]jobs.Job(nil), q.jobs...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repositories.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	return db
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func page1() repositories.ListQuery {
	return repositories.ListQuery{Page: 1, Limit: 50}
}
