// Package solver implements the Blake2b-256 sub-solution threshold check:
// given a 32-byte puzzle header and an 8-byte candidate, decide whether
// the candidate is an accepted proof-of-work solution.
package solver

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"
)

// BlockSize is the fixed size of the hashed block: header (32) + zero
// padding (88) + sub-solution (8) = 128 bytes.
const (
	BlockSize      = 128
	HeaderSize     = 32
	SolutionSize   = 8
	solutionOffset = BlockSize - SolutionSize
)

// BuildBlock composes the zero-padded 128-byte block P ‖ zeros(88) ‖ S
// hashed by the threshold check. header must be exactly HeaderSize bytes
// and solution exactly SolutionSize bytes.
func BuildBlock(header []byte, solution []byte) [BlockSize]byte {
	var block [BlockSize]byte
	copy(block[0:HeaderSize], header)
	copy(block[solutionOffset:], solution)
	return block
}

// ThresholdFromDifficulty reproduces the spec's float-derived threshold
// T = floor(2^(255.999 - difficulty) / 8), saturating at 2^32-1. This
// formula yields numbers far outside the 32-bit range for most in-use
// difficulty bytes (122, 130, 141, 149 all saturate); the saturation is
// wire-compatible behavior, not a bug, and must be reproduced exactly.
func ThresholdFromDifficulty(difficulty uint8) uint32 {
	exp := 255.999 - float64(difficulty)
	val := math.Pow(2, exp) / 8
	if math.IsInf(val, 1) || math.IsNaN(val) || val > math.MaxUint32 {
		return math.MaxUint32
	}
	if val < 0 {
		return 0
	}
	return uint32(val)
}

// Check hashes the zero-padded block built from header and solution with
// Blake2b-256 and reports whether the little-endian leading 32 bits fall
// strictly below the difficulty's threshold.
func Check(header []byte, solution []byte, difficulty uint8) bool {
	block := BuildBlock(header, solution)
	hash := blake2b.Sum256(block[:])
	leading := binary.LittleEndian.Uint32(hash[0:4])
	return leading < ThresholdFromDifficulty(difficulty)
}
