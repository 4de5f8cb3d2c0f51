package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// EventJobClick is the name of the click-through event.
const EventJobClick = "job_click"

// ClickEvent is emitted when a visitor follows a listing to its apply page.
type ClickEvent struct {
	JobID          string    `json:"job_id"`
	Company        string    `json:"company"`
	JobTitle       string    `json:"job_title"`
	DestinationURL string    `json:"destination_url"`
	Source         string    `json:"source"`
	At             time.Time `json:"timestamp"`
}

// NewClickEvent builds the event for job and the decorated destination.
func NewClickEvent(job domain.Job, destination, source string, at time.Time) ClickEvent {
	if source == "" {
		source = DefaultSource
	}
	return ClickEvent{
		JobID:          job.ID,
		Company:        job.Company,
		JobTitle:       job.Title,
		DestinationURL: destination,
		Source:         source,
		At:             at.UTC(),
	}
}

// Fields flattens the event for key/value sinks.
func (e ClickEvent) Fields() map[string]any {
	return map[string]any{
		"event":           EventJobClick,
		"job_id":          e.JobID,
		"company":         e.Company,
		"job_title":       e.JobTitle,
		"destination_url": e.DestinationURL,
		"source":          e.Source,
		"timestamp":       e.At.Format(time.RFC3339),
	}
}

// Beacon records click events.
type Beacon interface {
	Track(ctx context.Context, e ClickEvent) error
}

// Fire sends e to b and logs failures. A nil b is a no-op; navigation
// never depends on analytics.
func Fire(ctx context.Context, b Beacon, e ClickEvent, log logger.Logger) {
	if b == nil {
		return
	}
	if err := b.Track(ctx, e); err != nil {
		log.Warn("failed to record click event",
			logger.String("job_id", e.JobID),
			logger.Error(err))
	}
}

// LogBeacon writes click events to the application log.
type LogBeacon struct {
	logger logger.Logger
}

func NewLogBeacon(log logger.Logger) *LogBeacon {
	return &LogBeacon{logger: log}
}

func (b *LogBeacon) Track(_ context.Context, e ClickEvent) error {
	b.logger.Info("job click tracked",
		logger.String("event", EventJobClick),
		logger.String("job_id", e.JobID),
		logger.String("company", e.Company),
		logger.String("job_title", e.JobTitle),
		logger.String("destination_url", e.DestinationURL),
		logger.String("source", e.Source))
	return nil
}

// Appender is a key/value event sink such as a Redis stream.
type Appender interface {
	Append(ctx context.Context, fields map[string]any) error
}

// StreamBeacon appends click events to an Appender.
type StreamBeacon struct {
	sink Appender
}

func NewStreamBeacon(sink Appender) *StreamBeacon {
	return &StreamBeacon{sink: sink}
}

func (b *StreamBeacon) Track(ctx context.Context, e ClickEvent) error {
	return b.sink.Append(ctx, e.Fields())
}

// Multi sends every event to all beacons and joins their errors.
type Multi []Beacon

func (m Multi) Track(ctx context.Context, e ClickEvent) error {
	var errs []error
	for _, b := range m {
		if b == nil {
			continue
		}
		if err := b.Track(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
