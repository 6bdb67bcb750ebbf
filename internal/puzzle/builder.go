// Package puzzle composes the binary codec, HMAC authenticator, access
// tracker, replay store, and Blake2b solver into the puzzle builder (F)
// and result verifier (G) described by the protocol.
package puzzle

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/fcaptcha/fcaptcha-go/internal/access"
	"github.com/fcaptcha/fcaptcha-go/internal/auth"
	"github.com/fcaptcha/fcaptcha-go/internal/codec"
	"github.com/fcaptcha/fcaptcha-go/internal/pzerr"
)

const (
	fixedAccountID   uint32 = 1
	fixedAppID       uint32 = 1
	fixedPuzzleVer   uint8  = 1
	fixedExpiryUnits uint8  = 12 // 12 * 300s = 3600s
)

// Builder composes puzzle strings for a source identifier, scaling
// difficulty from its recent access history.
type Builder struct {
	Access *access.Tracker
	Secret []byte
}

// NewBuilder constructs a Builder backed by tracker and keyed by secret.
func NewBuilder(tracker *access.Tracker, secret []byte) *Builder {
	return &Builder{Access: tracker, Secret: secret}
}

// Build composes a signed, issuance-form puzzle string ("hex(sig).b64(header)")
// for sourceID at time now, using the given nonce and access TTL.
func (b *Builder) Build(sourceID string, now time.Time, nonce uint64, accessTTL uint64) (string, error) {
	unixSec := now.Unix()
	if unixSec < 0 {
		return "", fmt.Errorf("%w: time before epoch", pzerr.ErrConversion)
	}

	rec := b.Access.Touch(sourceID, uint64(unixSec), accessTTL)
	solutionsCount, difficulty := access.Scale(rec.Count)

	header := codec.Header{
		Timestamp:      uint32(uint64(unixSec) & 0xFFFFFFFF),
		AccountID:      fixedAccountID,
		AppID:          fixedAppID,
		PuzzleVer:      fixedPuzzleVer,
		ExpiryUnits:    fixedExpiryUnits,
		SolutionsCount: solutionsCount,
		Difficulty:     difficulty,
		Nonce:          nonce,
	}

	raw := codec.EncodeHeader(header)

	sig, err := auth.Sign(b.Secret, raw[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", pzerr.ErrSignatureKeyInvalid, err)
	}

	return codec.HexEncode(sig) + "." + codec.Base64Encode(raw[:]), nil
}

// BuildRandom is Build with a freshly generated 64-bit nonce, for the
// common case where the caller has no reason to pick the nonce itself.
func (b *Builder) BuildRandom(sourceID string, now time.Time, accessTTL uint64) (string, error) {
	nonce, err := randomNonce()
	if err != nil {
		return "", fmt.Errorf("%w: %v", pzerr.ErrDataAccess, err)
	}
	return b.Build(sourceID, now, nonce, accessTTL)
}

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
