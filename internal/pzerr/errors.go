// Package pzerr defines the sentinel error taxonomy shared by the puzzle
// builder and verifier. Callers classify a returned error with errors.Is
// against these sentinels, or by inspecting VerifyError.Kind.
package pzerr

import "errors"

// Sentinel errors for the builder and verifier state machines. Each one
// corresponds 1:1 to an entry in the verifier's error taxonomy.
var (
	ErrInputMalformed         = errors.New("input malformed")
	ErrDecodeHex              = errors.New("hex decode failed")
	ErrDecodeBase64           = errors.New("base64 decode failed")
	ErrSignatureKeyInvalid    = errors.New("signature key invalid")
	ErrSignatureMismatch      = errors.New("signature mismatch")
	ErrPuzzleReuse            = errors.New("puzzle reuse")
	ErrPuzzleExpired          = errors.New("puzzle expired")
	ErrDuplicateSolution      = errors.New("duplicate solution")
	ErrSolutionBelowThreshold = errors.New("solution below threshold")
	ErrConversion             = errors.New("conversion error")
	ErrDataAccess             = errors.New("data access error")
	ErrTimeError              = errors.New("time error")
)

// Kind names one of the sentinel errors above, used for structured
// logging and metrics labels without stringifying the wrapped error.
type Kind string

const (
	KindInputMalformed         Kind = "input_malformed"
	KindDecodeHex              Kind = "decode_hex"
	KindDecodeBase64           Kind = "decode_base64"
	KindSignatureKeyInvalid    Kind = "signature_key_invalid"
	KindSignatureMismatch      Kind = "signature_mismatch"
	KindPuzzleReuse            Kind = "puzzle_reuse"
	KindPuzzleExpired          Kind = "puzzle_expired"
	KindDuplicateSolution      Kind = "duplicate_solution"
	KindSolutionBelowThreshold Kind = "solution_below_threshold"
	KindConversion             Kind = "conversion"
	KindDataAccess             Kind = "data_access"
	KindTimeError              Kind = "time_error"
)

var kindBySentinel = map[error]Kind{
	ErrInputMalformed:         KindInputMalformed,
	ErrDecodeHex:              KindDecodeHex,
	ErrDecodeBase64:           KindDecodeBase64,
	ErrSignatureKeyInvalid:    KindSignatureKeyInvalid,
	ErrSignatureMismatch:      KindSignatureMismatch,
	ErrPuzzleReuse:            KindPuzzleReuse,
	ErrPuzzleExpired:          KindPuzzleExpired,
	ErrDuplicateSolution:      KindDuplicateSolution,
	ErrSolutionBelowThreshold: KindSolutionBelowThreshold,
	ErrConversion:             KindConversion,
	ErrDataAccess:             KindDataAccess,
	ErrTimeError:              KindTimeError,
}

// VerifyError wraps a detection-site error with its taxonomy Kind, so the
// HTTP adapter can log *why* a verification failed without leaking that
// reason to the client.
type VerifyError struct {
	Kind Kind
	Err  error
}

func (e *VerifyError) Error() string {
	return e.Err.Error()
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// Wrap builds a VerifyError from one of the sentinels above, annotated
// with additional context via fmt-style wrapping by the caller.
func Wrap(sentinel error, err error) *VerifyError {
	kind, ok := kindBySentinel[sentinel]
	if !ok {
		kind = KindDataAccess
	}
	if err == nil {
		err = sentinel
	}
	return &VerifyError{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err if it is (or wraps) a *VerifyError,
// and the zero Kind otherwise.
func KindOf(err error) Kind {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
