package favicon

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// DefaultProbeTimeout bounds a single favicon probe.
const DefaultProbeTimeout = 5 * time.Second

// serviceURL is the favicon service used for derived logos.
const serviceURL = "https://www.google.com/s2/favicons?sz=64&domain="

// Messages returned to the admin form.
const (
	MsgApplyURLRequired = "Please enter the apply URL first."
	MsgCannotDerive     = "Could not derive a favicon from the URL."
	MsgCannotLoad       = "Could not load the favicon. Please check the URL."
)

// URL derives the favicon service URL for the host of siteURL.
func URL(siteURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("no host in %q", siteURL)
	}
	return serviceURL + url.QueryEscape(u.Hostname()), nil
}

// ExtractDomain returns the host of siteURL without its "www." label, or "".
func ExtractDomain(siteURL string) string {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Cache remembers successful probes per domain.
type Cache interface {
	Lookup(ctx context.Context, domain string) (string, error)
	Put(ctx context.Context, domain, url string) error
}

// Resolver derives favicon URLs and checks that they load as images.
type Resolver struct {
	client  *http.Client
	timeout time.Duration
	cache   Cache
	logger  logger.Logger
}

// NewResolver creates a resolver. client defaults to http.DefaultClient,
// timeout to DefaultProbeTimeout; cache may be nil.
func NewResolver(client *http.Client, timeout time.Duration, cache Cache, log logger.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Resolver{client: client, timeout: timeout, cache: cache, logger: log}
}

// Resolve returns a verified favicon URL for applyURL. Failures come back as
// *domain.ErrValidation carrying a message for the form.
func (r *Resolver) Resolve(ctx context.Context, applyURL string) (string, error) {
	if strings.TrimSpace(applyURL) == "" {
		return "", domain.NewErrValidation(MsgApplyURLRequired)
	}
	iconURL, err := URL(applyURL)
	if err != nil {
		return "", domain.NewErrValidation(MsgCannotDerive)
	}

	host := ExtractDomain(applyURL)
	if r.cache != nil {
		cached, err := r.cache.Lookup(ctx, host)
		if err != nil {
			r.logger.Warn("favicon cache lookup failed", logger.Error(err))
		} else if cached != "" {
			return cached, nil
		}
	}

	if !r.Probe(ctx, iconURL) {
		return "", domain.NewErrValidation(MsgCannotLoad)
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, host, iconURL); err != nil {
			r.logger.Warn("failed to cache favicon", logger.Error(err))
		}
	}
	return iconURL, nil
}

// Probe reports whether iconURL answers 2xx with an image content type
// within the probe timeout.
func (r *Resolver) Probe(ctx context.Context, iconURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("favicon probe failed",
			logger.String("url", iconURL),
			logger.Error(err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "image/")
}
