package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, for logs and file names.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeSeriesHash fingerprints an ordered list of sorted draws. Two series
// with the same draws in the same order hash identically.
func ComputeSeriesHash(draws [][]int) Hash {
	var data strings.Builder
	for _, d := range draws {
		for i, n := range d {
			if i > 0 {
				data.WriteByte(',')
			}
			data.WriteString(strconv.Itoa(n))
		}
		data.WriteByte(';')
	}
	return NewHash([]byte(data.String()))
}
