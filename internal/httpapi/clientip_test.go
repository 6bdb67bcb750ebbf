package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSourceIDFallsBackToRemoteAddr(t *testing.T) {
	strategy := newIPStrategy(false)
	req := httptest.NewRequest(http.MethodGet, "/build-puzzle", nil)
	req.RemoteAddr = "203.0.113.9:4567"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")

	id, err := sourceID(strategy, req)
	if err != nil {
		t.Fatalf("sourceID failed: %v", err)
	}
	// Forwarded-For is ignored when TrustForwardedFor is false.
	if id != "203.0.113.9" {
		t.Errorf("sourceID = %q, want %q", id, "203.0.113.9")
	}
}

func TestSourceIDHonorsForwardedForWhenTrusted(t *testing.T) {
	strategy := newIPStrategy(true)
	req := httptest.NewRequest(http.MethodGet, "/build-puzzle", nil)
	req.RemoteAddr = "203.0.113.9:4567"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9")

	id, err := sourceID(strategy, req)
	if err != nil {
		t.Fatalf("sourceID failed: %v", err)
	}
	if id != "198.51.100.1" {
		t.Errorf("sourceID = %q, want leftmost non-private %q", id, "198.51.100.1")
	}
}

func TestSourceIDStripsPortFromRemoteAddr(t *testing.T) {
	strategy := newIPStrategy(false)
	req := httptest.NewRequest(http.MethodGet, "/build-puzzle", nil)
	req.RemoteAddr = "192.0.2.1:9999"

	id, err := sourceID(strategy, req)
	if err != nil {
		t.Fatalf("sourceID failed: %v", err)
	}
	if id != "192.0.2.1" {
		t.Errorf("sourceID = %q, want %q", id, "192.0.2.1")
	}
}
