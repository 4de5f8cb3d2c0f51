package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

// Store holds uploaded logo images and hands out their public URLs.
type Store interface {
	// Upload writes r under key and returns the object's public URL.
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// Delete removes the object behind url. Missing objects are not an error.
	Delete(ctx context.Context, url string) error
	// Owns reports whether url points into this store.
	Owns(url string) bool
}

// LogoKey returns the object key for a company logo uploaded at t.
func LogoKey(company string, t time.Time) string {
	return fmt.Sprintf("logos/%s_%d", domain.SafeToken(company), t.UnixMilli())
}
