package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

type sessionDocument struct {
	HashedToken string       `bson:"hashedToken"`
	Session     auth.Session `bson:"session"`
	Deadline    time.Time    `bson:"deadline"`
}

// SessionStore keeps admin sessions in the "sessions" collection.
// A TTL index on deadline lets MongoDB reap expired sessions.
type SessionStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewSessionStore ensures indexes and returns the store
func NewSessionStore(database *mongo.Database) (*SessionStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()

	unique := true
	expireAfter := int32(0)
	collection := database.Collection("sessions")
	if _, err := collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys:    bson.M{"hashedToken": 1},
				Options: &options.IndexOptions{Unique: &unique},
			},
			{
				Keys:    bson.M{"deadline": 1},
				Options: &options.IndexOptions{ExpireAfterSeconds: &expireAfter},
			},
		},
	); err != nil {
		return nil, fmt.Errorf("failed to add indexes to sessions collection: %w", err)
	}

	return &SessionStore{collection: collection, now: time.Now}, nil
}

func (s *SessionStore) Save(ctx context.Context, key string, session auth.Session, ttl time.Duration) error {
	doc := sessionDocument{
		HashedToken: key,
		Session:     session,
		Deadline:    s.now().Add(ttl),
	}
	_, err := s.collection.ReplaceOne(
		ctx,
		bson.M{"hashedToken": key},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, key string) (auth.Session, error) {
	doc := sessionDocument{}
	// The TTL monitor runs about once a minute, so filter on deadline too
	res := s.collection.FindOne(ctx, bson.M{
		"hashedToken": key,
		"deadline":    bson.M{"$gt": s.now()},
	})
	if res.Err() == mongo.ErrNoDocuments {
		return auth.Session{}, &domain.ErrNotFound{Type: "session", ID: key}
	}
	if res.Err() != nil {
		return auth.Session{}, fmt.Errorf("failed to find session: %w", res.Err())
	}
	if err := res.Decode(&doc); err != nil {
		return auth.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return doc.Session, nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"hashedToken": key}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
