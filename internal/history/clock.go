package history

import (
	"fmt"
	"math/rand"
	"time"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// ActionIDGenerator produces ids of the form "action-<unix-ms>-<suffix>",
// where the suffix is 9 random base-36 characters. The millisecond prefix
// keeps ids roughly sortable; the suffix disambiguates same-millisecond ids.
type ActionIDGenerator struct{}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func (ActionIDGenerator) New() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("action-%d-%s", time.Now().UnixMilli(), suffix)
}
