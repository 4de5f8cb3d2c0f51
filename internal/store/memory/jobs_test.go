package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/jobs"
)

var _ jobs.Store = (*JobStore)(nil)

func input(title, posted string) domain.JobInput {
	return domain.JobInput{Title: title, Company: "Acme", Location: "Seoul", PostedDate: posted}
}

func TestNewJobStore(t *testing.T) {
	store := NewJobStore()
	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateAssignsFreshIDs(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := store.Create(ctx, input("Engineer", "2025-01-01"))
		require.NoError(t, err)
		require.NotEmpty(t, id)
		require.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
	assert.Equal(t, 50, store.Count())
}

func TestListOrdersByPostedDateThenInsertion(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	older, _ := store.Create(ctx, input("older", "2025-01-01"))
	first, _ := store.Create(ctx, input("tie-first", "2025-01-02"))
	second, _ := store.Create(ctx, input("tie-second", "2025-01-02"))
	newest, _ := store.Create(ctx, input("newest", "2025-03-01"))

	list, err := store.List(ctx)
	require.NoError(t, err)

	ids := []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID}
	assert.Equal(t, []string{newest, first, second, older}, ids)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	id, _ := store.Create(ctx, domain.JobInput{
		Title: "Old", Company: "Acme", Location: "Seoul", PostedDate: "2025-01-01",
		Deadline: "2025-02-01", ApplyURL: "https://acme.example",
	})

	replacement := input("New", "2025-01-05")
	require.NoError(t, store.Update(ctx, id, replacement))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, replacement.WithID(id), got)
	assert.Empty(t, got.Deadline)
	assert.Empty(t, got.ApplyURL)
}

func TestUpdateMissing(t *testing.T) {
	err := NewJobStore().Update(context.Background(), "nope", input("x", "2025-01-01"))

	var nf *domain.ErrNotFound
	assert.True(t, errors.As(err, &nf))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	id, _ := store.Create(ctx, input("Engineer", "2025-01-01"))
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")

	_, err := store.Get(ctx, id)
	var nf *domain.ErrNotFound
	assert.True(t, errors.As(err, &nf))
}

func TestClaimSeedOnce(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.ClaimSeed(ctx)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)

	require.NoError(t, store.ReleaseSeed(ctx))
	ok, err := store.ClaimSeed(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "released claim can be taken again")
}

func TestWatchSignalsAndCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewJobStore()

	changes, err := store.Watch(ctx)
	require.NoError(t, err)

	_, _ = store.Create(context.Background(), input("Engineer", "2025-01-01"))

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change signal after create")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Create(ctx, input("Engineer", "2025-01-01"))
		}()
		go func() {
			defer wg.Done()
			_, _ = store.List(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, store.Count())
}
