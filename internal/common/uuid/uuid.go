// Package uuid provides time-ordered (v7) identifiers for spore calls.
// It wraps github.com/google/uuid.
package uuid

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// New returns a new UUIDv7. Falls back to a random v4 UUID if the v7
// generator fails.
func New() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewCallID returns the string form of a new UUIDv7 used to tag one client
// invocation in logs.
func NewCallID() string {
	return New().String()
}

// CallTime extracts the creation time encoded in a UUIDv7 call id.
func CallTime(callID string) (time.Time, error) {
	id, err := uuid.Parse(callID)
	if err != nil {
		return time.Time{}, err
	}
	if id.Version() != uuid.Version(7) {
		return time.Time{}, fmt.Errorf("call id %s is not a v7 uuid", callID)
	}
	tsMillis := binary.BigEndian.Uint64(id[0:8]) >> 16
	return time.UnixMilli(int64(tsMillis)), nil
}
