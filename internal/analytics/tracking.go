package analytics

import (
	"net/url"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

// DefaultSource identifies this board in utm_source, ref and click events.
const DefaultSource = "jobboard"

// AddTrackingParams decorates an apply URL with campaign parameters.
// Existing parameters of the same name are replaced. An empty URL yields ""
// and an unparsable one is returned unchanged.
func AddTrackingParams(rawURL string, job domain.Job, source string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return rawURL
	}
	if source == "" {
		source = DefaultSource
	}

	q := u.Query()
	q.Set("utm_source", source)
	q.Set("utm_medium", "referral")
	q.Set("utm_campaign", "job_listing")
	q.Set("utm_content", domain.SafeToken(job.Company+"_"+job.Title))
	q.Set("utm_term", job.ID)
	q.Set("ref", source)
	q.Set("job_id", job.ID)
	u.RawQuery = q.Encode()

	return u.String()
}
