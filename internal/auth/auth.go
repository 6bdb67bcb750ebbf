// Package auth implements HMAC-SHA256 signing and constant-time
// verification of puzzle headers.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"github.com/fcaptcha/fcaptcha-go/internal/pzerr"
)

// Sign computes the HMAC-SHA256 of header, keyed by secret.
func Sign(secret []byte, header []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", pzerr.ErrSignatureKeyInvalid)
	}
	mac := hmac.New(sha256.New, secret)
	if _, err := mac.Write(header); err != nil {
		return nil, fmt.Errorf("%w: %v", pzerr.ErrSignatureKeyInvalid, err)
	}
	return mac.Sum(nil), nil
}

// Verify reports whether signature is the correct HMAC-SHA256 of header
// under secret. Comparison is constant-time via hmac.Equal.
func Verify(secret []byte, header []byte, signature []byte) (bool, error) {
	expected, err := Sign(secret, header)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, signature), nil
}
