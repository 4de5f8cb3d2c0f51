package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/jobs"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

var (
	_ jobs.Store        = (*Store)(nil)
	_ auth.SessionStore = (*SessionStore)(nil)
)

// testClient connects to JOBBOARD_TEST_REDIS_ADDR and empties the jobboard keyspace.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("JOBBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOBBOARD_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	flush := func() {
		iter := client.Scan(ctx, 0, "jobboard:*", 0).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	flush()
	t.Cleanup(func() {
		flush()
		_ = client.Close()
	})
	return client
}

func in(title, posted string) domain.JobInput {
	return domain.JobInput{Title: title, Company: "Acme", Location: "Seoul", PostedDate: posted}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "jobboard:job:abc", JobKey("abc"))
	assert.Equal(t, "jobboard:session:h", SessionKey("h"))
	assert.Equal(t, "jobboard:favicon:acme.com", FaviconKey("acme.com"))
}

func TestScoreOrdering(t *testing.T) {
	newer := score(20000, 5)
	older := score(19999, 1)
	assert.Greater(t, newer, older)

	// Same day: earlier insertion scores higher, so it comes first in ZREVRANGE
	assert.Greater(t, score(20000, 1), score(20000, 2))
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testClient(t), logger.NewNop())

	older, err := store.Create(ctx, in("older", "2025-01-01"))
	require.NoError(t, err)
	first, err := store.Create(ctx, in("tie-first", "2025-02-01"))
	require.NoError(t, err)
	second, err := store.Create(ctx, in("tie-second", "2025-02-01"))
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{first, second, older}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, store.Update(ctx, older, in("now newest", "2025-03-01")))
	got, err := store.Get(ctx, older)
	require.NoError(t, err)
	assert.Equal(t, "now newest", got.Title)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, older, list[0].ID)

	err = store.Update(ctx, "missing", in("x", "2025-01-01"))
	var nf *domain.ErrNotFound
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, store.Delete(ctx, first))
	require.NoError(t, store.Delete(ctx, first))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStoreClaimSeedAndWatch(t *testing.T) {
	client := testClient(t)
	store := NewStore(client, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ok, err := store.ClaimSeed(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.ClaimSeed(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ReleaseSeed(ctx))
	ok, err = store.ClaimSeed(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	changes, err := store.Watch(ctx)
	require.NoError(t, err)

	_, err = store.Create(context.Background(), in("Engineer", "2025-01-01"))
	require.NoError(t, err)

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal after create")
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionStore(testClient(t))

	session := auth.Session{State: auth.StateSignedInAdmin, Email: "admin@example.com"}
	require.NoError(t, sessions.Save(ctx, "hashed", session, time.Minute))

	got, err := sessions.Get(ctx, "hashed")
	require.NoError(t, err)
	assert.Equal(t, session.Email, got.Email)

	require.NoError(t, sessions.Delete(ctx, "hashed"))
	_, err = sessions.Get(ctx, "hashed")
	var nf *domain.ErrNotFound
	assert.True(t, errors.As(err, &nf))
}

func TestFaviconCacheAndEvents(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	cache := NewFaviconCache(client, 0)
	url, err := cache.Lookup(ctx, "acme.com")
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, cache.Put(ctx, "acme.com", "https://www.google.com/s2/favicons?sz=64&domain=acme.com"))
	url, err = cache.Lookup(ctx, "acme.com")
	require.NoError(t, err)
	assert.Contains(t, url, "acme.com")

	events := NewEventStream(client)
	require.NoError(t, events.Append(ctx, map[string]any{"job_id": "1", "company": "Acme"}))
	n, err := events.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
