package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const envconfigPrefix = "MONGODB"

// Config represents the options for a MongoDB connection
type Config struct {
	ConnectionString string        `envconfig:"CONNECTION_STRING" required:"true"`
	Database         string        `envconfig:"DATABASE" default:"jobboard"`
	ConnectTimeout   time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
}

// ConfigFromEnvironment reads MONGODB_* variables
func ConfigFromEnvironment() (Config, error) {
	c := Config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, fmt.Errorf("failed to read mongodb configuration from environment: %w", err)
	}
	return c, nil
}

// Database connects and returns the configured database
func Database(ctx context.Context, c Config) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	// Majority writes so every reader of the change stream sees committed data
	client, err := mongo.Connect(
		connectCtx,
		options.Client().ApplyURI(c.ConnectionString).SetWriteConcern(
			writeconcern.Majority(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client.Database(c.Database), nil
}

// CheckHealth pings the primary
func CheckHealth(ctx context.Context, db *mongo.Database) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.Client().Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// isDuplicateKey reports a unique index violation
func isDuplicateKey(err error) bool {
	if writeException, ok := err.(mongo.WriteException); ok {
		for _, we := range writeException.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	}
	return false
}
