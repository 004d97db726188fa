package lattice

import (
	"encoding/binary"
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
)

// Digest hashes the occupancy set. Two stores holding the same
// (position, category, colour) triples produce the same digest regardless
// of the order in which the voxels were placed.
func (s *Store) Digest() uint64 {
	h := xxhash.New()
	var b [12]byte
	for _, r := range s.Records() {
		binary.LittleEndian.PutUint64(b[:8], PackKey(r.Pos))
		binary.LittleEndian.PutUint32(b[8:], uint32(r.Category))
		_, _ = h.Write(b[:])
		_, _ = h.WriteString(r.Color)
	}
	return h.Sum64()
}

// DigestHex is Digest formatted for logs and CLI output.
func (s *Store) DigestHex() string {
	return fmt.Sprintf("%016x", s.Digest())
}
