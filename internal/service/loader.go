package service

import (
	"context"
	"sync"
	"time"

	"bentapos/backend/internal/domain"
)

// LoadFunc is the query a Loader runs in the background.
type LoadFunc func(ctx context.Context, userID int64, day time.Time) (domain.SalesAggregate, error)

// LoadResult is delivered on the Loader's result channel exactly once per
// published load.
type LoadResult struct {
	Seq       uint64
	Aggregate domain.SalesAggregate
	Err       error
}

// Loader runs sales-date queries off the caller's goroutine so an
// interactive surface stays responsive. Each Load bumps a sequence number;
// a finishing query only publishes if its sequence is still the latest, so
// a slow earlier query can never overwrite a faster later one.
type Loader struct {
	load    LoadFunc
	mu      sync.Mutex
	latest  uint64
	results chan LoadResult
}

func NewLoader(load LoadFunc) *Loader {
	return &Loader{
		load:    load,
		results: make(chan LoadResult, 1),
	}
}

// NewSalesLoader returns a Loader backed by this service's date query.
func (s *Service) NewSalesLoader() *Loader {
	return NewLoader(s.LoadSalesForDate)
}

// Load starts a background query and returns its sequence number. The result
// arrives on Results unless a newer Load supersedes it first.
func (l *Loader) Load(ctx context.Context, userID int64, day time.Time) uint64 {
	l.mu.Lock()
	l.latest++
	seq := l.latest
	l.mu.Unlock()

	go func() {
		agg, err := l.load(ctx, userID, day)
		l.publish(LoadResult{Seq: seq, Aggregate: agg, Err: err})
	}()

	return seq
}

// Results is the completion signal: the consumer observes an aggregate only
// after its load has fully finished and been published.
func (l *Loader) Results() <-chan LoadResult {
	return l.results
}

func (l *Loader) publish(res LoadResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Seq != l.latest {
		// Superseded by a newer Load; drop it.
		return
	}

	// Replace an unclaimed older result rather than blocking.
	select {
	case <-l.results:
	default:
	}
	l.results <- res
}
