package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/store/memory"
)

// recorder collects delivered snapshots.
type recorder struct {
	mu        sync.Mutex
	snapshots [][]domain.Job
}

func (r *recorder) onUpdate(jobs []domain.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, jobs)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recorder) last() []domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

func job(title, posted string) domain.JobInput {
	return domain.JobInput{Title: title, Company: "Acme", Location: "Seoul", PostedDate: posted}
}

func TestSubscribeDeliversInitialAndChangedSnapshots(t *testing.T) {
	ctx := context.Background()
	store := memory.NewJobStore()
	_, _ = store.Create(ctx, job("first", "2025-01-01"))

	bridge := NewBridge(store, logger.NewNop(), 0)
	rec := &recorder{}
	unsubscribe, err := bridge.Subscribe(rec.onUpdate)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return len(rec.last()) == 1 }, time.Second, 5*time.Millisecond)

	_, _ = store.Create(ctx, job("second", "2025-01-02"))

	require.Eventually(t, func() bool { return len(rec.last()) == 2 }, time.Second, 5*time.Millisecond)
	snapshot := rec.last()
	assert.Equal(t, "second", snapshot[0].Title, "snapshots are complete and newest first")
	assert.Equal(t, "first", snapshot[1].Title)
}

func TestSubscribeAtMostOneActive(t *testing.T) {
	bridge := NewBridge(memory.NewJobStore(), logger.NewNop(), 0)

	unsubscribe, err := bridge.Subscribe(func([]domain.Job) {})
	require.NoError(t, err)
	assert.True(t, bridge.Active())

	_, err = bridge.Subscribe(func([]domain.Job) {})
	assert.ErrorIs(t, err, ErrSubscriptionActive)

	unsubscribe()
	assert.False(t, bridge.Active())

	again, err := bridge.Subscribe(func([]domain.Job) {})
	require.NoError(t, err)
	again()
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	store := memory.NewJobStore()
	bridge := NewBridge(store, logger.NewNop(), 0)

	rec := &recorder{}
	unsubscribe, err := bridge.Subscribe(rec.onUpdate)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	unsubscribe() // idempotent
	delivered := rec.count()

	for i := 0; i < 5; i++ {
		_, _ = store.Create(ctx, job("after", "2025-01-01"))
	}
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, delivered, rec.count())
}

type failingSource struct {
	watchErr error
	listErr  error
	changes  chan struct{}
	lists    atomic.Int32
}

func (f *failingSource) List(context.Context) ([]domain.Job, error) {
	f.lists.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []domain.Job{{ID: "1", Title: "t", PostedDate: "2025-01-01"}}, nil
}

func (f *failingSource) Watch(context.Context) (<-chan struct{}, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.changes, nil
}

func TestWatchFailureDeliversEmptySnapshot(t *testing.T) {
	source := &failingSource{watchErr: errors.New("permission denied")}
	bridge := NewBridge(source, logger.NewNop(), 0)

	rec := &recorder{}
	unsubscribe, err := bridge.Subscribe(rec.onUpdate)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.NotNil(t, rec.last())
	assert.Empty(t, rec.last())
}

func TestListFailureDeliversEmptySnapshot(t *testing.T) {
	source := &failingSource{listErr: errors.New("unavailable"), changes: make(chan struct{})}
	bridge := NewBridge(source, logger.NewNop(), 0)

	rec := &recorder{}
	unsubscribe, err := bridge.Subscribe(rec.onUpdate)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, rec.last())
}

func TestClosedFeedFallsBackToPolling(t *testing.T) {
	source := &failingSource{changes: make(chan struct{})}
	bridge := NewBridge(source, logger.NewNop(), 10*time.Millisecond)

	rec := &recorder{}
	unsubscribe, err := bridge.Subscribe(rec.onUpdate)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	close(source.changes)

	// Empty snapshot on failure, then polled snapshots with data again.
	require.Eventually(t, func() bool {
		return rec.count() >= 3 && len(rec.last()) == 1
	}, time.Second, 5*time.Millisecond)
}
