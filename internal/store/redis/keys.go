package redis

const (
	// KeyPrefixJob is the prefix for job keys
	KeyPrefixJob = "jobboard:job:"
	// KeyJobsByPosted is the sorted set of job IDs scored by posted date
	KeyJobsByPosted = "jobboard:jobs:by_posted"
	// KeyJobsSeq is the insertion counter used to break posted-date ties
	KeyJobsSeq = "jobboard:jobs:seq"
	// KeyJobSeqs maps job ID to its insertion sequence
	KeyJobSeqs = "jobboard:jobs:seqs"
	// KeySeeded is set once the sample listings were written
	KeySeeded = "jobboard:jobs:seeded"
	// ChannelJobChanges carries one message per committed job mutation
	ChannelJobChanges = "jobboard:jobs:changes"

	// KeyPrefixSession is the prefix for admin session keys
	KeyPrefixSession = "jobboard:session:"
	// KeyPrefixFavicon is the prefix for cached favicon probes
	KeyPrefixFavicon = "jobboard:favicon:"
	// StreamJobClicks is the stream job_click events are appended to
	StreamJobClicks = "jobboard:events:job_click"
)

// JobKey returns the Redis key for a job by ID
func JobKey(id string) string {
	return KeyPrefixJob + id
}

// SessionKey returns the Redis key for a hashed session token
func SessionKey(hashed string) string {
	return KeyPrefixSession + hashed
}

// FaviconKey returns the Redis key for a cached favicon probe
func FaviconKey(domain string) string {
	return KeyPrefixFavicon + domain
}
