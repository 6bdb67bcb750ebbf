package maintenance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeStore struct {
	sweepCalls []uint64 // ttl passed on each call
	evict      int
}

func (f *fakeStore) Sweep(now uint64, ttl uint64) int {
	f.sweepCalls = append(f.sweepCalls, ttl)
	return f.evict
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeperRunSweepsAllTargetsOnTick(t *testing.T) {
	access := &fakeStore{evict: 3}
	replay := &fakeStore{evict: 0}

	s := New(10*time.Millisecond, testLogger())
	s.Add("access", access, 1800)
	s.Add("replay", replay, 3600)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	s.Run(ctx)

	if len(access.sweepCalls) == 0 {
		t.Error("expected at least one sweep call on the access target")
	}
	if len(replay.sweepCalls) == 0 {
		t.Error("expected at least one sweep call on the replay target")
	}
	for _, ttl := range access.sweepCalls {
		if ttl != 1800 {
			t.Errorf("access sweep ttl = %d, want 1800", ttl)
		}
	}
	for _, ttl := range replay.sweepCalls {
		if ttl != 3600 {
			t.Errorf("replay sweep ttl = %d, want 3600", ttl)
		}
	}
}

func TestSweeperRunStopsOnContextCancel(t *testing.T) {
	access := &fakeStore{}
	s := New(5*time.Millisecond, testLogger())
	s.Add("access", access, 1800)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
