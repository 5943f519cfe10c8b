// Package encoding is a thin wrapper over REZI, the teacher's compact
// binary format for persisted state, used here for document debug dumps
// rather than save-game data.
package encoding

import "github.com/dekarrin/rezi"

// Encode serializes v to REZI's binary form.
func Encode(v any) []byte {
	return rezi.EncBinary(v)
}

// Decode populates v from REZI-encoded data, returning the number of bytes
// consumed.
func Decode(data []byte, v any) (int, error) {
	return rezi.DecBinary(data, v)
}
