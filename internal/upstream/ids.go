package upstream

import (
	"crypto/sha256"

	"github.com/google/uuid"
)

// DeterministicUUID derives a stable UUID from an upstream identifier using
// SHA256, so the same upstream id always maps to the same local id and a
// re-import updates rows instead of duplicating them.
func DeterministicUUID(namespace, upstreamID string) uuid.UUID {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte(":"))
	h.Write([]byte(upstreamID))
	digest := h.Sum(nil)

	// Use first 16 bytes as UUID, set version 5 (SHA-based)
	var id uuid.UUID
	copy(id[:], digest[:16])
	id[6] = (id[6] & 0x0f) | 0x50 // version 5
	id[8] = (id[8] & 0x3f) | 0x80 // variant RFC4122
	return id
}

// resolveID keeps ids that already are UUIDs and maps anything else.
func resolveID(namespace, raw string) uuid.UUID {
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return DeterministicUUID(namespace, raw)
}
