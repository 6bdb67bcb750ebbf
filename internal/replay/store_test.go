package replay

import "testing"

func TestObserveFirstSeenIsNew(t *testing.T) {
	s := NewStore()
	var header [32]byte
	header[0] = 1

	if got := s.Observe(header, 1000, 3600); got != New {
		t.Errorf("Observe = %v, want New", got)
	}
}

func TestObserveWithinTTLIsReused(t *testing.T) {
	s := NewStore()
	var header [32]byte
	header[0] = 1

	s.Observe(header, 1000, 3600)
	if got := s.Observe(header, 1000+10, 3600); got != Reused {
		t.Errorf("Observe = %v, want Reused", got)
	}
}

func TestObserveAfterTTLIsRefreshed(t *testing.T) {
	s := NewStore()
	var header [32]byte
	header[0] = 1

	s.Observe(header, 1000, 3600)
	if got := s.Observe(header, 1000+3601, 3600); got != Refreshed {
		t.Errorf("Observe = %v, want Refreshed", got)
	}
	// After a refresh, the entry is reused again within its new window.
	if got := s.Observe(header, 1000+3601+10, 3600); got != Reused {
		t.Errorf("Observe after refresh = %v, want Reused", got)
	}
}

func TestObserveDistinctHeadersIndependent(t *testing.T) {
	s := NewStore()
	var h1, h2 [32]byte
	h1[0] = 1
	h2[0] = 2

	s.Observe(h1, 1000, 3600)
	if got := s.Observe(h2, 1000, 3600); got != New {
		t.Errorf("Observe(h2) = %v, want New", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestSweepEvictsOnlyExpired(t *testing.T) {
	s := NewStore()
	var stale, fresh [32]byte
	stale[0] = 1
	fresh[0] = 2

	s.Observe(stale, 1000, 3600)
	s.Observe(fresh, 5000, 3600)

	evicted := s.Sweep(5000, 3600)
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after sweep", s.Len())
	}
}
