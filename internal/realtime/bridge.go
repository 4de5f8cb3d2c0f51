package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// ErrSubscriptionActive is returned when a bridge already has a live subscription.
var ErrSubscriptionActive = errors.New("realtime: subscription already active")

// Source is an ordered job collection with a change feed.
type Source interface {
	List(ctx context.Context) ([]domain.Job, error)
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Bridge owns at most one live subscription to a Source and delivers full,
// ordered snapshots to its subscriber. One bridge serves one page.
type Bridge struct {
	source       Source
	logger       logger.Logger
	pollInterval time.Duration

	mu     sync.Mutex
	active *subscription
}

// NewBridge creates a bridge. When pollInterval is positive the bridge keeps
// polling List after the change feed fails; zero disables polling.
func NewBridge(source Source, log logger.Logger, pollInterval time.Duration) *Bridge {
	return &Bridge{
		source:       source,
		logger:       log,
		pollInterval: pollInterval,
	}
}

type subscription struct {
	onUpdate func([]domain.Job)
	cancel   context.CancelFunc
	done     chan struct{}

	// deliverMu serializes callbacks with unsubscribe.
	deliverMu sync.Mutex
	closed    bool
}

// Subscribe attaches onUpdate. It receives the current snapshot right away and
// a fresh one after every change. Feed failures deliver an empty snapshot
// instead of an error.
//
// The returned unsubscribe is idempotent. Once it returns, onUpdate is never
// called again. It must not be called from inside onUpdate.
func (b *Bridge) Subscribe(onUpdate func([]domain.Job)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil {
		return nil, ErrSubscriptionActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		onUpdate: onUpdate,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	b.active = sub

	go b.run(ctx, sub)

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(sub) })
	}, nil
}

// Active reports whether a subscription is live.
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.active != nil
}

func (b *Bridge) unsubscribe(sub *subscription) {
	sub.cancel()

	sub.deliverMu.Lock()
	sub.closed = true
	sub.deliverMu.Unlock()

	<-sub.done

	b.mu.Lock()
	if b.active == sub {
		b.active = nil
	}
	b.mu.Unlock()
}

func (b *Bridge) run(ctx context.Context, sub *subscription) {
	defer close(sub.done)

	changes, err := b.source.Watch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("failed to open job change feed", logger.Error(err))
		b.deliver(sub, []domain.Job{})
		b.poll(ctx, sub)
		return
	}

	b.refresh(ctx, sub)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				b.logger.Warn("job change feed closed")
				b.deliver(sub, []domain.Job{})
				b.poll(ctx, sub)
				return
			}
			b.refresh(ctx, sub)
		}
	}
}

// poll refreshes on a ticker until ctx is done. No-op when polling is disabled.
func (b *Bridge) poll(ctx context.Context, sub *subscription) {
	if b.pollInterval <= 0 {
		return
	}

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.refresh(ctx, sub)
		}
	}
}

func (b *Bridge) refresh(ctx context.Context, sub *subscription) {
	jobs, err := b.source.List(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		b.logger.Error("failed to load job snapshot", logger.Error(err))
		jobs = []domain.Job{}
	}
	b.deliver(sub, jobs)
}

func (b *Bridge) deliver(sub *subscription, jobs []domain.Job) {
	sub.deliverMu.Lock()
	defer sub.deliverMu.Unlock()

	if sub.closed {
		return
	}
	sub.onUpdate(jobs)
}
