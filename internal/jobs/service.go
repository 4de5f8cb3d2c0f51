package jobs

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// Store persists job listings. Implementations live under internal/store.
type Store interface {
	// List returns every job ordered by PostedDate descending.
	List(ctx context.Context) ([]domain.Job, error)
	// Get returns *domain.ErrNotFound when id does not exist.
	Get(ctx context.Context, id string) (domain.Job, error)
	// Create stores a new job and returns its assigned id.
	Create(ctx context.Context, in domain.JobInput) (string, error)
	// Update fully replaces the job; *domain.ErrNotFound when id does not exist.
	Update(ctx context.Context, id string, in domain.JobInput) error
	// Delete removes the job. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Watch signals every committed change until ctx is done.
	// The channel is closed when the watch ends for any reason.
	Watch(ctx context.Context) (<-chan struct{}, error)
	// ClaimSeed returns true exactly once per store, to the caller allowed to seed it.
	ClaimSeed(ctx context.Context) (bool, error)
	// ReleaseSeed hands the claim back so a later ClaimSeed succeeds again.
	ReleaseSeed(ctx context.Context) error
}

// LogoStore is the part of the object store the service needs for cleanup.
type LogoStore interface {
	Owns(url string) bool
	Delete(ctx context.Context, url string) error
}

// User-facing messages for backend failures.
const (
	msgList   = "Failed to load job listings. Please try again later."
	msgCreate = "Failed to create the job listing."
	msgUpdate = "Failed to update the job listing."
	msgDelete = "Failed to delete the job listing."
	msgSeed   = "Failed to initialize sample job listings."
)

// Service is the job record adapter: validation in front of a Store.
// Mutations return as soon as the store confirms them; readers observe
// the effect through the store's change feed.
type Service struct {
	store   Store
	logos   LogoStore
	samples []domain.JobInput
	logger  logger.Logger
}

// NewService creates a job service. logos may be nil.
func NewService(store Store, logos LogoStore, samples []domain.JobInput, log logger.Logger) *Service {
	return &Service{
		store:   store,
		logos:   logos,
		samples: samples,
		logger:  log,
	}
}

// Store exposes the underlying store, e.g. as a snapshot source.
func (s *Service) Store() Store { return s.store }

// List returns all jobs newest first. An empty store that was never seeded
// is filled with the sample set first.
func (s *Service) List(ctx context.Context) ([]domain.Job, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return nil, s.transient("list jobs", msgList, err)
	}
	if len(jobs) > 0 {
		return jobs, nil
	}

	seeded, err := s.EnsureSeeded(ctx)
	if err != nil {
		return nil, err
	}
	if !seeded {
		return jobs, nil
	}

	jobs, err = s.store.List(ctx)
	if err != nil {
		return nil, s.transient("list jobs", msgList, err)
	}
	return jobs, nil
}

// EnsureSeeded writes the sample set if no caller has done so before.
// Concurrent first loads race on the store's seed claim; only the winner writes.
func (s *Service) EnsureSeeded(ctx context.Context) (bool, error) {
	if len(s.samples) == 0 {
		return false, nil
	}

	claimed, err := s.store.ClaimSeed(ctx)
	if err != nil {
		return false, s.transient("claim seed", msgSeed, err)
	}
	if !claimed {
		return false, nil
	}

	created := make([]string, 0, len(s.samples))
	for _, sample := range s.samples {
		id, err := s.store.Create(ctx, sample.Normalize())
		if err != nil {
			s.abandonSeed(ctx, created)
			return false, s.transient("seed jobs", msgSeed, err)
		}
		created = append(created, id)
	}

	s.logger.Info("seeded job store with sample listings",
		logger.Int("count", len(s.samples)))
	return true, nil
}

// Get returns a single job.
func (s *Service) Get(ctx context.Context, id string) (domain.Job, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return job, err
		}
		return job, s.transient("get job", msgList, err)
	}
	return job, nil
}

// Create validates the input and stores it. Validation errors are
// returned before the store is touched.
func (s *Service) Create(ctx context.Context, in domain.JobInput) (string, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, in)
	if err != nil {
		return "", s.transient("create job", msgCreate, err)
	}

	s.logger.Info("job created",
		logger.String("job_id", id),
		logger.String("company", in.Company))
	return id, nil
}

// Update replaces every field of an existing job.
func (s *Service) Update(ctx context.Context, id string, in domain.JobInput) error {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	previous, err := s.store.Get(ctx, id)
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return err
		}
		return s.transient("update job", msgUpdate, err)
	}

	if err := s.store.Update(ctx, id, in); err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return err
		}
		return s.transient("update job", msgUpdate, err)
	}

	if previous.Logo != in.Logo {
		s.removeLogo(ctx, previous.Logo)
	}

	s.logger.Info("job updated", logger.String("job_id", id))
	return nil
}

// Delete removes a job and, best effort, its uploaded logo.
func (s *Service) Delete(ctx context.Context, id string) error {
	previous, err := s.store.Get(ctx, id)
	if err != nil {
		var nf *domain.ErrNotFound
		if !errors.As(err, &nf) {
			return s.transient("delete job", msgDelete, err)
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return s.transient("delete job", msgDelete, err)
	}

	s.removeLogo(ctx, previous.Logo)

	s.logger.Info("job deleted", logger.String("job_id", id))
	return nil
}

// abandonSeed undoes a partial seed and releases the claim so the next
// empty List tries again.
func (s *Service) abandonSeed(ctx context.Context, created []string) {
	for _, id := range created {
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to remove partially seeded job",
				logger.String("job_id", id),
				logger.Error(err))
		}
	}
	if err := s.store.ReleaseSeed(ctx); err != nil {
		s.logger.Error("failed to release seed claim", logger.Error(err))
		return
	}
	s.logger.Warn("seed abandoned, claim released", logger.Int("rolled_back", len(created)))
}

// removeLogo deletes an uploaded logo. Failures are logged and swallowed.
func (s *Service) removeLogo(ctx context.Context, url string) {
	if s.logos == nil || url == "" || !s.logos.Owns(url) {
		return
	}
	if err := s.logos.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete logo",
			logger.String("url", url),
			logger.Error(err))
	}
}

func (s *Service) transient(op, msg string, err error) error {
	s.logger.Error("backend operation failed",
		logger.String("op", op),
		logger.Error(err))
	return &domain.ErrTransientBackend{Op: op, Message: msg, Err: err}
}
