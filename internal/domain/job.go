package domain

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date format used for PostedDate and Deadline.
const DateLayout = "2006-01-02"

// Job is a single job listing.
//
// Listings are always presented newest first (PostedDate descending).
// A listing without ApplyURL is still shown but cannot be clicked through.
type Job struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the store on creation and never reassigned.
	ID string `json:"id" bson:"id"`

	// ─────────────────────────────
	// Display fields (required)
	// ─────────────────────────────

	Title    string `json:"title" bson:"title"`
	Company  string `json:"company" bson:"company"`
	Location string `json:"location" bson:"location"`

	// PostedDate is an ISO calendar date (YYYY-MM-DD) and the only sort key.
	PostedDate string `json:"postedDate" bson:"postedDate"`

	// ─────────────────────────────
	// Optional fields
	// ─────────────────────────────

	// Logo may point at an uploaded object, an external image or a favicon service.
	Logo string `json:"logo,omitempty" bson:"logo,omitempty"`

	// Deadline is an ISO calendar date. Empty means no deadline is shown.
	Deadline string `json:"deadline,omitempty" bson:"deadline,omitempty"`

	// ApplyURL is the external application page.
	ApplyURL string `json:"applyUrl,omitempty" bson:"applyUrl,omitempty"`
}

// JobInput is a Job without its store-assigned identifier.
// Updates replace every field, so a field left empty here is cleared on the stored record.
type JobInput struct {
	Title      string `json:"title" yaml:"title"`
	Company    string `json:"company" yaml:"company"`
	Location   string `json:"location" yaml:"location"`
	PostedDate string `json:"postedDate" yaml:"postedDate"`
	Logo       string `json:"logo,omitempty" yaml:"logo,omitempty"`
	Deadline   string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	ApplyURL   string `json:"applyUrl,omitempty" yaml:"applyUrl,omitempty"`
}

// WithID builds the stored Job for the given identifier.
func (in JobInput) WithID(id string) Job {
	return Job{
		ID:         id,
		Title:      in.Title,
		Company:    in.Company,
		Location:   in.Location,
		PostedDate: in.PostedDate,
		Logo:       in.Logo,
		Deadline:   in.Deadline,
		ApplyURL:   in.ApplyURL,
	}
}

// Navigable reports whether clicking the listing leads somewhere.
func (j Job) Navigable() bool {
	return j.ApplyURL != ""
}

// PostedDay returns the posted date as days since the Unix epoch.
// Unparseable dates sort last.
func (j Job) PostedDay() int64 {
	t, err := time.Parse(DateLayout, j.PostedDate)
	if err != nil {
		return 0
	}
	return t.Unix() / 86400
}

// SortJobs orders jobs by PostedDate descending.
// The sort is stable, so callers that pass insertion order keep it across ties.
func SortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, k int) bool {
		return jobs[i].PostedDate > jobs[k].PostedDate
	})
}
