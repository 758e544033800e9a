package model

import "time"

// Restriction bans a member from joining one voice channel until ExpiresAt.
type Restriction struct {
	SubjectID string    `json:"subject_id"`
	ChannelID string    `json:"channel_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActiveAt reports whether the restriction still applies at t.
func (r Restriction) ActiveAt(t time.Time) bool {
	return t.Before(r.ExpiresAt)
}
