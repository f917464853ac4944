package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bentapos/backend/internal/domain"
)

func TestLoader_DeliversResultWithSequence(t *testing.T) {
	loader := NewLoader(func(ctx context.Context, userID int64, day time.Time) (domain.SalesAggregate, error) {
		return domain.SalesAggregate{Date: day.Format("2006-01-02")}, nil
	})

	seq := loader.Load(context.Background(), 1, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))

	select {
	case res := <-loader.Results():
		if res.Seq != seq {
			t.Fatalf("expected seq %d, got %d", seq, res.Seq)
		}
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Aggregate.Date != "2026-08-20" {
			t.Fatalf("unexpected aggregate date %q", res.Aggregate.Date)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no result delivered")
	}
}

func TestLoader_PropagatesLoadError(t *testing.T) {
	wantErr := errors.New("storage down")
	loader := NewLoader(func(ctx context.Context, userID int64, day time.Time) (domain.SalesAggregate, error) {
		return domain.SalesAggregate{}, wantErr
	})

	loader.Load(context.Background(), 1, time.Now())

	select {
	case res := <-loader.Results():
		if !errors.Is(res.Err, wantErr) {
			t.Fatalf("expected load error, got %v", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no result delivered")
	}
}

func TestLoader_SlowEarlierLoadNeverOvertakesLaterOne(t *testing.T) {
	release := make(chan struct{})
	slowDay := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	fastDay := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	loader := NewLoader(func(ctx context.Context, userID int64, day time.Time) (domain.SalesAggregate, error) {
		if day.Equal(slowDay) {
			<-release
		}
		return domain.SalesAggregate{Date: day.Format("2006-01-02")}, nil
	})

	loader.Load(context.Background(), 1, slowDay)
	fastSeq := loader.Load(context.Background(), 1, fastDay)

	select {
	case res := <-loader.Results():
		if res.Seq != fastSeq {
			t.Fatalf("expected latest seq %d, got %d", fastSeq, res.Seq)
		}
		if res.Aggregate.Date != "2026-08-02" {
			t.Fatalf("expected latest day's aggregate, got %q", res.Aggregate.Date)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("latest load never delivered")
	}

	// Let the stale query finish; its result must be dropped, not published.
	close(release)
	select {
	case res := <-loader.Results():
		t.Fatalf("stale result published: %+v", res)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLoader_UnclaimedResultReplacedByNewer(t *testing.T) {
	loader := NewLoader(func(ctx context.Context, userID int64, day time.Time) (domain.SalesAggregate, error) {
		return domain.SalesAggregate{Date: day.Format("2006-01-02")}, nil
	})

	first := loader.Load(context.Background(), 1, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	// Wait until the first result is sitting unclaimed in the buffer.
	deadline := time.After(2 * time.Second)
	for {
		loader.mu.Lock()
		buffered := len(loader.results) == 1
		loader.mu.Unlock()
		if buffered {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first result never buffered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	second := loader.Load(context.Background(), 1, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC))
	if second <= first {
		t.Fatalf("sequence must increase, got %d then %d", first, second)
	}

	var last LoadResult
	for {
		select {
		case res := <-loader.Results():
			last = res
			if res.Seq == second {
				if res.Aggregate.Date != "2026-08-02" {
					t.Fatalf("unexpected aggregate %q", res.Aggregate.Date)
				}
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("never observed latest result, last seen %+v", last)
		}
	}
}
