package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

const (
	createIndexTimeout = 5 * time.Second
	seedMarkerID       = "jobs-seeded"
)

// JobStore keeps jobs in the "jobs" collection. The generated _id is never
// replaced, so it breaks posted-date ties in insertion order.
type JobStore struct {
	collection *mongo.Collection
	markers    *mongo.Collection
	logger     logger.Logger
}

// NewJobStore ensures indexes and returns the store
func NewJobStore(database *mongo.Database, log logger.Logger) (*JobStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()

	unique := true
	collection := database.Collection("jobs")
	if _, err := collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys:    bson.M{"id": 1},
				Options: &options.IndexOptions{Unique: &unique},
			},
			{
				Keys: bson.D{{Key: "postedDate", Value: -1}, {Key: "_id", Value: 1}},
			},
		},
	); err != nil {
		return nil, fmt.Errorf("failed to add indexes to jobs collection: %w", err)
	}

	return &JobStore{
		collection: collection,
		markers:    database.Collection("markers"),
		logger:     log,
	}, nil
}

// List returns every job newest first
func (s *JobStore) List(ctx context.Context) ([]domain.Job, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "postedDate", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 0})
	cur, err := s.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}

	jobs := []domain.Job{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	return jobs, nil
}

// Get retrieves a job by ID
func (s *JobStore) Get(ctx context.Context, id string) (domain.Job, error) {
	job := domain.Job{}
	res := s.collection.FindOne(ctx, bson.M{"id": id})
	if res.Err() == mongo.ErrNoDocuments {
		return job, &domain.ErrNotFound{Type: "job", ID: id}
	}
	if res.Err() != nil {
		return job, fmt.Errorf("failed to find job %q: %w", id, res.Err())
	}
	if err := res.Decode(&job); err != nil {
		return job, fmt.Errorf("failed to decode job: %w", err)
	}
	return job, nil
}

// Create inserts a new job under a fresh ID
func (s *JobStore) Create(ctx context.Context, in domain.JobInput) (string, error) {
	id := uuid.NewString()
	if _, err := s.collection.InsertOne(ctx, in.WithID(id)); err != nil {
		return "", fmt.Errorf("failed to insert job %q: %w", id, err)
	}
	return id, nil
}

// Update replaces the whole document except _id
func (s *JobStore) Update(ctx context.Context, id string, in domain.JobInput) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"id": id}, in.WithID(id))
	if err != nil {
		return fmt.Errorf("failed to replace job %q: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return &domain.ErrNotFound{Type: "job", ID: id}
	}
	return nil
}

// Delete removes a job. Deleting a missing job is a no-op.
func (s *JobStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete job %q: %w", id, err)
	}
	return nil
}

// Watch opens a change stream on the jobs collection. It needs a replica set;
// on a standalone server the error is returned immediately.
func (s *JobStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	stream, err := s.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs change stream: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer func() { _ = stream.Close(context.Background()) }()
		for stream.Next(ctx) {
			select {
			case out <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.logger.Warn("jobs change stream ended", logger.Error(err))
		}
	}()

	return out, nil
}

// ClaimSeed inserts the seed marker; the unique _id lets exactly one caller win
func (s *JobStore) ClaimSeed(ctx context.Context) (bool, error) {
	_, err := s.markers.InsertOne(ctx, bson.M{"_id": seedMarkerID, "at": time.Now()})
	if err == nil {
		return true, nil
	}
	if isDuplicateKey(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to claim seed marker: %w", err)
}

// ReleaseSeed deletes the seed marker
func (s *JobStore) ReleaseSeed(ctx context.Context) error {
	if _, err := s.markers.DeleteOne(ctx, bson.M{"_id": seedMarkerID}); err != nil {
		return fmt.Errorf("failed to release seed marker: %w", err)
	}
	return nil
}
