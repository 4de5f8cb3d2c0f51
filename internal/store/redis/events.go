package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultEventStreamLen caps the click stream, approximately
const DefaultEventStreamLen = 100000

// EventStream appends analytics events to a capped Redis stream
type EventStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewEventStream creates an event stream writer for StreamJobClicks
func NewEventStream(client *redis.Client) *EventStream {
	return &EventStream{
		client: client,
		stream: StreamJobClicks,
		maxLen: DefaultEventStreamLen,
	}
}

// Append adds one event
func (e *EventStream) Append(ctx context.Context, fields map[string]any) error {
	err := e.client.XAdd(ctx, &redis.XAddArgs{
		Stream: e.stream,
		MaxLen: e.maxLen,
		Approx: true,
		Values: fields,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Len returns the number of events in the stream
func (e *EventStream) Len(ctx context.Context) (int64, error) {
	n, err := e.client.XLen(ctx, e.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get stream length: %w", err)
	}
	return n, nil
}
