// Package entity converts loosely-typed backend and cache payloads into
// canonical domain entities.
//
// Every function here is total: any input, including nil, malformed JSON
// and values of the wrong type, produces a valid entity. Normalising an
// already-normalised entity returns it unchanged.
package entity

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/learnquest/questsync/internal/core/domain"
)

// Normaliser builds canonical entities. The zero value is not usable;
// create one with New.
type Normaliser struct {
	now   func() time.Time
	newID func() (string, error)
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithClock sets the clock used for missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normaliser) {
		n.now = now
	}
}

// WithIDSource sets the random source used for generated ids.
// When it fails, ids fall back to a timestamp plus a random suffix.
func WithIDSource(source func() (string, error)) Option {
	return func(n *Normaliser) {
		n.newID = source
	}
}

// New creates a Normaliser using the wall clock and random UUIDs.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{
		now: time.Now,
		newID: func() (string, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Now returns the normaliser's current time in UTC.
func (n *Normaliser) Now() time.Time {
	return n.now().UTC()
}

// LocalID returns a fresh id of the form <prefix>-<random>.
func (n *Normaliser) LocalID(prefix string) string {
	if id, err := n.newID(); err == nil && id != "" {
		return prefix + "-" + id
	}
	return fmt.Sprintf("%s-%d-%d", prefix, n.now().UnixMilli(), rand.Intn(1_000_000))
}

// TemporaryID returns an id marking an entity the backend has not confirmed.
func (n *Normaliser) TemporaryID(kind string) string {
	return n.LocalID(domain.TemporaryIDPrefix + kind)
}

func (n *Normaliser) timeOr(v any) time.Time {
	if t, ok := asTime(v); ok {
		return t
	}
	return n.Now()
}
