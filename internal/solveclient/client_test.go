package solveclient

import (
	"context"
	"testing"
	"time"

	"github.com/fcaptcha/fcaptcha-go/internal/codec"
	"github.com/fcaptcha/fcaptcha-go/internal/solver"
)

func TestSolveSolutionsZeroSubSolutionsReturnsEmpty(t *testing.T) {
	var header [codec.HeaderSize]byte
	got, err := solveSolutions(context.Background(), header, 0, 0)
	if err != nil {
		t.Fatalf("solveSolutions failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty buffer, got %d bytes", len(got))
	}
}

func TestSolveSolutionsAtZeroDifficultyProducesValidWindows(t *testing.T) {
	var header [codec.HeaderSize]byte
	for i := range header {
		header[i] = byte(i * 3)
	}

	const n = 4
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	buf, err := solveSolutions(ctx, header, n, 0)
	if err != nil {
		t.Fatalf("solveSolutions failed: %v", err)
	}

	wantLen := (n - 1) + solver.SolutionSize
	if len(buf) != wantLen {
		t.Fatalf("buffer length = %d, want %d", len(buf), wantLen)
	}

	for i := 0; i < n; i++ {
		window := buf[i : i+solver.SolutionSize]
		if !solver.Check(header[:], window, 0) {
			t.Errorf("window %d does not satisfy the threshold check", i)
		}
	}
}

func TestSolveFirstWindowFindsASatisfyingCandidate(t *testing.T) {
	var header [codec.HeaderSize]byte
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	candidate, err := solveFirstWindow(ctx, header, 0)
	if err != nil {
		t.Fatalf("solveFirstWindow failed: %v", err)
	}
	if len(candidate) != solver.SolutionSize {
		t.Fatalf("candidate length = %d, want %d", len(candidate), solver.SolutionSize)
	}
	if !solver.Check(header[:], candidate, 0) {
		t.Error("candidate does not satisfy the threshold check")
	}
}

func TestSolveSolutionsRespectsContextCancellation(t *testing.T) {
	var header [codec.HeaderSize]byte
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := solveSolutions(ctx, header, 2, 255)
	if err == nil {
		t.Fatal("expected error when context is already canceled")
	}
}
