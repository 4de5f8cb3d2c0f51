package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// seqSpan is the room reserved in a score for the insertion sequence.
const seqSpan = 1 << 32

// updateScript replaces a job only if it exists, keeping its insertion sequence.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local seq = tonumber(redis.call('HGET', KEYS[3], ARGV[1]) or '0')
redis.call('SET', KEYS[1], ARGV[2])
redis.call('ZADD', KEYS[2], tonumber(ARGV[3]) * 4294967296 + (4294967295 - seq), ARGV[1])
redis.call('PUBLISH', ARGV[4], ARGV[1])
return 1
`)

// Store is the Redis job store. Jobs are JSON strings indexed by a sorted set
// whose score orders by posted date, newest first, then by insertion.
type Store struct {
	client *redis.Client
	logger logger.Logger
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log,
	}
}

// score orders descending by day under ZREVRANGE, ascending by seq within a day.
func score(day, seq int64) float64 {
	return float64(day)*seqSpan + float64(seqSpan-1-seq%seqSpan)
}

// List returns every job newest first
func (s *Store) List(ctx context.Context) ([]domain.Job, error) {
	ids, err := s.client.ZRevRange(ctx, KeyJobsByPosted, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get job IDs: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = JobKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}

	jobs := make([]domain.Job, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Removed between ZREVRANGE and MGET
			continue
		}
		var job domain.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			s.logger.Warn("skipping undecodable job",
				logger.String("job_id", ids[i]),
				logger.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// Get retrieves a job by ID
func (s *Store) Get(ctx context.Context, id string) (domain.Job, error) {
	data, err := s.client.Get(ctx, JobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Job{}, &domain.ErrNotFound{Type: "job", ID: id}
		}
		return domain.Job{}, fmt.Errorf("failed to get job: %w", err)
	}

	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.Job{}, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return job, nil
}

// Create stores a new job under a fresh ID and announces it
func (s *Store) Create(ctx context.Context, in domain.JobInput) (string, error) {
	id := uuid.NewString()
	job := in.WithID(id)

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}

	seq, err := s.client.Incr(ctx, KeyJobsSeq).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate job sequence: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, JobKey(id), data, 0)
		pipe.HSet(ctx, KeyJobSeqs, id, seq)
		pipe.ZAdd(ctx, KeyJobsByPosted, redis.Z{Score: score(job.PostedDay(), seq), Member: id})
		pipe.Publish(ctx, ChannelJobChanges, id)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save job: %w", err)
	}

	return id, nil
}

// Update fully replaces an existing job
func (s *Store) Update(ctx context.Context, id string, in domain.JobInput) error {
	job := in.WithID(id)
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	keys := []string{JobKey(id), KeyJobsByPosted, KeyJobSeqs}
	updated, err := updateScript.Run(ctx, s.client, keys, id, data, job.PostedDay(), ChannelJobChanges).Int()
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if updated == 0 {
		return &domain.ErrNotFound{Type: "job", ID: id}
	}
	return nil
}

// Delete removes a job. Deleting a missing job is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, JobKey(id))
		pipe.ZRem(ctx, KeyJobsByPosted, id)
		pipe.HDel(ctx, KeyJobSeqs, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	if del.Val() > 0 {
		if err := s.client.Publish(ctx, ChannelJobChanges, id).Err(); err != nil {
			s.logger.Warn("failed to announce job deletion",
				logger.String("job_id", id),
				logger.Error(err))
		}
	}
	return nil
}

// Watch subscribes to job changes. Bursts of messages coalesce into one signal.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, ChannelJobChanges)
	// Wait for the subscription to be confirmed so failures surface here
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to job changes: %w", err)
	}

	out := make(chan struct{}, 1)
	messages := sub.Channel()
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}

// ClaimSeed sets the seed marker; only the first caller ever gets true
func (s *Store) ClaimSeed(ctx context.Context) (bool, error) {
	ok, err := s.client.SetNX(ctx, KeySeeded, 1, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim seed marker: %w", err)
	}
	return ok, nil
}

// ReleaseSeed removes the seed marker so the next ClaimSeed wins again
func (s *Store) ReleaseSeed(ctx context.Context) error {
	if err := s.client.Del(ctx, KeySeeded).Err(); err != nil {
		return fmt.Errorf("failed to release seed marker: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
