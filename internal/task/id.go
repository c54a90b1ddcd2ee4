package task

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// NewID returns a fresh ULID string timestamped at now.
func NewID(now time.Time) string {
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	}
	return id.String()
}
