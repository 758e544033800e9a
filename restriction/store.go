// Package restriction keeps the timed voice-channel bans in process memory.
package restriction

import (
	"sort"
	"time"

	"modbot/model"

	"github.com/puzpuzpuz/xsync/v4"
)

// Duration is how long a voice restriction lasts once created.
const Duration = 48 * time.Hour

type key struct {
	subjectID string
	channelID string
}

// Store maps (member, voice channel) to the instant the restriction lapses.
// Expired entries are removed when they are next read.
type Store struct {
	entries *xsync.Map[key, time.Time]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: xsync.NewMap[key, time.Time]()}
}

// Put inserts or overwrites the restriction for the pair.
func (s *Store) Put(subjectID, channelID string, expiresAt time.Time) {
	s.entries.Store(key{subjectID, channelID}, expiresAt)
}

// IsActive reports whether the pair is restricted at now. An entry found
// expired is deleted in the same atomic step.
func (s *Store) IsActive(subjectID, channelID string, now time.Time) bool {
	active := false
	s.entries.Compute(key{subjectID, channelID}, func(expiresAt time.Time, loaded bool) (time.Time, xsync.ComputeOp) {
		if !loaded {
			return expiresAt, xsync.CancelOp
		}
		if now.Before(expiresAt) {
			active = true
			return expiresAt, xsync.CancelOp
		}
		return expiresAt, xsync.DeleteOp
	})
	return active
}

// Release removes the pair whether or not it has expired. It reports whether
// an entry was present.
func (s *Store) Release(subjectID, channelID string) bool {
	_, ok := s.entries.LoadAndDelete(key{subjectID, channelID})
	return ok
}

// Sweep deletes every entry expired at now and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	var expired []key
	s.entries.Range(func(k key, expiresAt time.Time) bool {
		if !now.Before(expiresAt) {
			expired = append(expired, k)
		}
		return true
	})

	removed := 0
	for _, k := range expired {
		// Re-check under the key lock: a Put may have renewed it since Range.
		s.entries.Compute(k, func(expiresAt time.Time, loaded bool) (time.Time, xsync.ComputeOp) {
			if loaded && !now.Before(expiresAt) {
				removed++
				return expiresAt, xsync.DeleteOp
			}
			return expiresAt, xsync.CancelOp
		})
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len() int {
	return s.entries.Size()
}

// Active lists the restrictions still in force at now, soonest expiry first.
// It does not purge.
func (s *Store) Active(now time.Time) []model.Restriction {
	var out []model.Restriction
	s.entries.Range(func(k key, expiresAt time.Time) bool {
		if now.Before(expiresAt) {
			out = append(out, model.Restriction{SubjectID: k.subjectID, ChannelID: k.channelID, ExpiresAt: expiresAt})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].SubjectID < out[j].SubjectID
		}
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}
