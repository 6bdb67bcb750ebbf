package puzzle

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fcaptcha/fcaptcha-go/internal/auth"
	"github.com/fcaptcha/fcaptcha-go/internal/codec"
	"github.com/fcaptcha/fcaptcha-go/internal/pzerr"
	"github.com/fcaptcha/fcaptcha-go/internal/replay"
	"github.com/fcaptcha/fcaptcha-go/internal/solver"
)

const secondsPerExpiryUnit = 300

// Verifier orchestrates the 9-step verification state machine: parse,
// signature, replay, expiry, diagnostics, and the per-sub-solution
// Blake2b threshold check.
type Verifier struct {
	Replay *replay.Store
	Secret []byte
	// VerboseDiagnostics controls whether the diagnostics segment is
	// decoded at all. A decode failure there is always best-effort and
	// never fails verification, per the resolved open question in §9.
	VerboseDiagnostics bool
	Logger             *slog.Logger
}

// NewVerifier constructs a Verifier backed by store and keyed by secret.
func NewVerifier(store *replay.Store, secret []byte) *Verifier {
	return &Verifier{Replay: store, Secret: secret}
}

// Verify runs the full ordered state machine against solution (the
// 4-part submitted puzzle string) at time now, with the given replay
// TTL. Returns nil on success, or a *pzerr.VerifyError identifying the
// first failure encountered.
func (v *Verifier) Verify(ctx context.Context, solution string, now time.Time, puzzleTTL uint64) error {
	// 1. Parse
	parts := strings.Split(solution, ".")
	if len(parts) != 4 {
		return pzerr.Wrap(pzerr.ErrInputMalformed, fmt.Errorf("%w: expected 4 dot-separated parts, got %d", pzerr.ErrInputMalformed, len(parts)))
	}
	sigHex, headerB64, solutionsB64, diagnosticsB64 := parts[0], parts[1], parts[2], parts[3]

	// 2. Decode signature
	sig, err := codec.HexDecode(sigHex)
	if err != nil {
		return pzerr.Wrap(pzerr.ErrDecodeHex, err)
	}
	if len(sig) != 32 {
		return pzerr.Wrap(pzerr.ErrDecodeHex, fmt.Errorf("%w: signature must be 32 bytes, got %d", pzerr.ErrDecodeHex, len(sig)))
	}

	// 3. Decode header
	header, rawHeader, err := codec.DecodeHeaderB64(headerB64)
	if err != nil {
		return pzerr.Wrap(pzerr.ErrInputMalformed, err)
	}

	// 4. Verify signature
	ok, err := auth.Verify(v.Secret, rawHeader[:], sig)
	if err != nil {
		return pzerr.Wrap(pzerr.ErrSignatureKeyInvalid, err)
	}
	if !ok {
		return pzerr.Wrap(pzerr.ErrSignatureMismatch, nil)
	}

	// 5. Replay check — mutates the store before expiry/solution checks
	// are even considered, per the ordering rationale in §4.G.
	var headerKey [codec.HeaderSize]byte
	copy(headerKey[:], rawHeader[:])
	if puzzleTTL == 0 {
		puzzleTTL = replay.DefaultTTL
	}
	outcome := v.Replay.Observe(headerKey, uint64(now.Unix()), puzzleTTL)
	if outcome == replay.Reused {
		return pzerr.Wrap(pzerr.ErrPuzzleReuse, nil)
	}

	// 6. Expiry check
	age := now.Unix() - int64(header.Timestamp)
	expirySec := int64(header.ExpiryUnits) * secondsPerExpiryUnit
	if expirySec != 0 && age > expirySec {
		return pzerr.Wrap(pzerr.ErrPuzzleExpired, nil)
	}

	// 7. Diagnostics — best-effort only, never fails verification.
	if v.VerboseDiagnostics {
		if _, err := codec.Base64Decode(diagnosticsB64); err != nil && v.Logger != nil {
			v.Logger.WarnContext(ctx, "diagnostics segment malformed, ignoring", "error", err)
		}
	}

	// 8. Solutions
	solutionsBuf, err := codec.Base64Decode(solutionsB64)
	if err != nil {
		return pzerr.Wrap(pzerr.ErrDecodeBase64, err)
	}

	n := int(header.SolutionsCount)
	if n > 0 && len(solutionsBuf) < (n-1)+solver.SolutionSize {
		return pzerr.Wrap(pzerr.ErrInputMalformed, fmt.Errorf("%w: solutions buffer too short for %d sub-solutions", pzerr.ErrInputMalformed, n))
	}

	seen := make(map[uint64]struct{}, n)
	for i := 0; i < n; i++ {
		// Stride-of-1, width-8 sliding window: intentionally overlapping,
		// not a stride-of-8 partition. Reproduces the reference client's
		// indexing convention exactly for wire compatibility.
		sub := solutionsBuf[i : i+solver.SolutionSize]
		subKey := binary.LittleEndian.Uint64(sub)

		if _, dup := seen[subKey]; dup {
			return pzerr.Wrap(pzerr.ErrDuplicateSolution, nil)
		}
		seen[subKey] = struct{}{}

		if !solver.Check(rawHeader[:], sub, header.Difficulty) {
			return pzerr.Wrap(pzerr.ErrSolutionBelowThreshold, nil)
		}
	}

	// 9. Exhausted without error.
	return nil
}
