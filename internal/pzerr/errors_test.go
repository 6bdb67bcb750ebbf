package pzerr

import (
	"errors"
	"testing"
)

func TestKindOfReturnsWrappedKind(t *testing.T) {
	err := Wrap(ErrPuzzleExpired, nil)
	if got := KindOf(err); got != KindPuzzleExpired {
		t.Errorf("KindOf = %v, want %v", got, KindPuzzleExpired)
	}
}

func TestKindOfReturnsEmptyForPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Errorf("KindOf = %v, want empty Kind", got)
	}
}

func TestWrapDefaultsMessageToSentinel(t *testing.T) {
	err := Wrap(ErrPuzzleReuse, nil)
	if !errors.Is(err, ErrPuzzleReuse) {
		t.Error("expected wrapped error to unwrap to the sentinel")
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	underlying := errors.New("decode failed: unexpected EOF")
	err := Wrap(ErrDecodeBase64, underlying)
	if !errors.Is(err, underlying) {
		t.Error("expected wrapped error to unwrap to the underlying error")
	}
	if got := KindOf(err); got != KindDecodeBase64 {
		t.Errorf("KindOf = %v, want %v", got, KindDecodeBase64)
	}
}

func TestVerifyErrorErrorMessage(t *testing.T) {
	err := Wrap(ErrSignatureMismatch, nil)
	if err.Error() != ErrSignatureMismatch.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), ErrSignatureMismatch.Error())
	}
}
