// Package codec implements the 32-byte puzzle header wire encoding and the
// hex/base64 framing used by the puzzle string. Big-endian throughout, per
// the FriendlyCaptcha v1 wire format.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/fcaptcha/fcaptcha-go/internal/pzerr"
)

// HeaderSize is the fixed wire size of an encoded puzzle header.
const HeaderSize = 32

// HeaderB64Len is the exact length of a standard-base64-encoded header.
const HeaderB64Len = 44

// Header is the decoded form of the 32-byte puzzle header.
type Header struct {
	Timestamp      uint32
	AccountID      uint32
	AppID          uint32
	PuzzleVer      uint8
	ExpiryUnits    uint8
	SolutionsCount uint8
	Difficulty     uint8
	Nonce          uint64
}

// EncodeHeader serializes h into the 32-byte wire form. Reserved bytes
// [16:24) are always emitted as zero.
func EncodeHeader(h Header) [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint32(b[0:4], h.Timestamp)
	binary.BigEndian.PutUint32(b[4:8], h.AccountID)
	binary.BigEndian.PutUint32(b[8:12], h.AppID)
	b[12] = h.PuzzleVer
	b[13] = h.ExpiryUnits
	b[14] = h.SolutionsCount
	b[15] = h.Difficulty
	// b[16:24] reserved, left zero
	binary.BigEndian.PutUint64(b[24:32], h.Nonce)
	return b
}

// DecodeHeader parses exactly HeaderSize bytes into a Header. Reserved
// bytes are ignored, per spec.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("%w: header must be %d bytes, got %d", pzerr.ErrInputMalformed, HeaderSize, len(b))
	}
	return Header{
		Timestamp:      binary.BigEndian.Uint32(b[0:4]),
		AccountID:      binary.BigEndian.Uint32(b[4:8]),
		AppID:          binary.BigEndian.Uint32(b[8:12]),
		PuzzleVer:      b[12],
		ExpiryUnits:    b[13],
		SolutionsCount: b[14],
		Difficulty:     b[15],
		Nonce:          binary.BigEndian.Uint64(b[24:32]),
	}, nil
}

// HexEncode lowercase-hex-encodes b.
func HexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

// HexDecode decodes a lowercase (or mixed-case) hex string.
func HexDecode(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pzerr.ErrDecodeHex, err)
	}
	return b, nil
}

// Base64Encode encodes b using standard padded base64.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64Decode decodes a standard padded base64 string.
func Base64Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pzerr.ErrDecodeBase64, err)
	}
	return b, nil
}

// DecodeHeaderB64 decodes the header segment of a puzzle string: it MUST
// be exactly HeaderB64Len characters and decode to exactly HeaderSize
// bytes, or InputMalformed is returned. A segment of the right length that
// is not valid base64 returns DecodeBase64.
func DecodeHeaderB64(s string) (Header, [HeaderSize]byte, error) {
	var raw [HeaderSize]byte
	if len(s) != HeaderB64Len {
		return Header{}, raw, fmt.Errorf("%w: header segment must be %d chars, got %d", pzerr.ErrInputMalformed, HeaderB64Len, len(s))
	}
	decoded, err := Base64Decode(s)
	if err != nil {
		return Header{}, raw, err
	}
	if len(decoded) != HeaderSize {
		return Header{}, raw, fmt.Errorf("%w: decoded header must be %d bytes, got %d", pzerr.ErrInputMalformed, HeaderSize, len(decoded))
	}
	copy(raw[:], decoded)
	h, err := DecodeHeader(raw[:])
	if err != nil {
		return Header{}, raw, err
	}
	return h, raw, nil
}
