// Package idgen produces human-readable identifier candidates for events
// and passes. The identifiers are fast to generate, not provably unique:
// callers must back them with a storage-level unique constraint and
// regenerate when that constraint fires.
package idgen

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

const suffixLength = 5

var (
	mu  sync.Mutex
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewEventID returns an identifier candidate for an event.
func NewEventID() string {
	return newID("EVT")
}

// NewPassID returns an identifier candidate for an event pass.
func NewPassID() string {
	return newID("PASS")
}

func newID(prefix string) string {
	mu.Lock()
	n := rng.Int63()
	mu.Unlock()

	suffix := strconv.FormatInt(n, 36)
	if len(suffix) > suffixLength {
		suffix = suffix[:suffixLength]
	}
	for len(suffix) < suffixLength {
		suffix = "0" + suffix
	}

	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)

	return strings.ToUpper(prefix + millis + suffix)
}
