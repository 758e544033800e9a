// Package vcban restricts members from rejoining a voice channel for a fixed window.
package vcban

import (
	"log/slog"
	"time"

	"modbot/metrics"
	"modbot/model"
	"modbot/restriction"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// Disconnector is the part of the session used to move members out of voice.
type Disconnector interface {
	GuildMemberMove(guildID string, userID string, channelID *string, options ...discordgo.RequestOption) error
}

// VoiceJoin is a voice state change reduced to what enforcement needs.
type VoiceJoin struct {
	GuildID   string
	MemberID  string
	IsBot     bool
	ChannelID string // empty when the member left voice
	IsVoice   bool
	At        time.Time
}

// Listener evicts members who join a channel they are restricted from.
type Listener struct {
	store    *restriction.Store
	session  Disconnector
	recorder model.Recorder
	exempt   func(userID string) bool
}

// NewListener wires a listener. recorder and exempt may be nil.
func NewListener(store *restriction.Store, session Disconnector, recorder model.Recorder, exempt func(userID string) bool) *Listener {
	if exempt == nil {
		exempt = func(string) bool { return false }
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Listener{store: store, session: session, recorder: recorder, exempt: exempt}
}

// HandleJoin applies the restriction to one voice event and reports whether a
// disconnect was attempted. Platform failures are logged, never returned.
func (l *Listener) HandleJoin(j VoiceJoin) bool {
	if j.IsBot || l.exempt(j.MemberID) {
		return false
	}
	if j.ChannelID == "" || !j.IsVoice {
		return false
	}
	if !l.store.IsActive(j.MemberID, j.ChannelID, j.At) {
		return false
	}

	if err := l.session.GuildMemberMove(j.GuildID, j.MemberID, nil); err != nil {
		if utils.IsPermissionError(err) {
			metrics.EvictionFailures.WithLabelValues("permission").Inc()
			slog.Warn("missing permission to disconnect restricted member", "guild", j.GuildID, "member", j.MemberID, "channel", j.ChannelID)
		} else {
			metrics.EvictionFailures.WithLabelValues("api").Inc()
			slog.Error("failed to disconnect restricted member", "guild", j.GuildID, "member", j.MemberID, "channel", j.ChannelID, "error", err)
		}
		return true
	}

	metrics.Evictions.Inc()
	slog.Info("auto-kicked restricted member", "guild", j.GuildID, "member", j.MemberID, "channel", j.ChannelID)
	record(l.recorder, model.ModAction{
		GuildID:   j.GuildID,
		Action:    model.ActionVCKick,
		TargetID:  j.MemberID,
		ChannelID: j.ChannelID,
		CreatedAt: j.At.Unix(),
	})
	return true
}

type nopRecorder struct{}

func (nopRecorder) Record(model.ModAction) error { return nil }

func record(r model.Recorder, action model.ModAction) {
	if err := r.Record(action); err != nil {
		slog.Warn("failed to record moderation action", "action", action.Action, "target", action.TargetID, "error", err)
	}
}
