// Package uuid generates time-ordered UUIDv7 identifiers for primary keys.
// Sequential prefixes keep b-tree inserts close together, which plain v4
// random UUIDs do not.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New returns a fresh UUIDv7: 48 bits of Unix milliseconds, then version,
// variant, and random bits per RFC 4122.
func New() string {
	var id [16]byte

	ms := uint64(time.Now().UnixMilli())
	binary.BigEndian.PutUint64(id[0:8], ms<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		// No entropy available; a random v4 still satisfies uniqueness.
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
