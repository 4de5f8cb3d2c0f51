package utils

import (
	"context"
	"io"

	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// Closer is a named shutdown step.
type Closer struct {
	Name  string
	Close func(ctx context.Context) error
}

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseAll runs closers in reverse registration order and logs each outcome.
// It returns the number of steps that failed.
func CloseAll(ctx context.Context, log logger.Logger, closers []Closer) int {
	failed := 0
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.Close(ctx); err != nil {
			failed++
			log.Warn("failed to close", logger.String("component", c.Name), logger.Error(err))
			continue
		}
		log.Info("✅ closed cleanly", logger.String("component", c.Name))
	}
	return failed
}
