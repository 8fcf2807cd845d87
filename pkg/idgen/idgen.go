// Package idgen generates identifiers for orchestrator records.
//
// Session identifiers use ULIDs so that lexicographic order matches
// creation order (useful for tiebreaks and directory listings). NewUUID
// returns plain UUIDs; no orchestrator record currently uses it.
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a new monotonically-increasing ULID string.
func NewULID() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewUUID returns a new random UUID string.
func NewUUID() string {
	return uuid.New().String()
}
