// Package emojinick lets members decorate their nickname with a single emoji.
package emojinick

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modbot/metrics"
	"modbot/model"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/maypok86/otter/v2"
)

var (
	ErrGuildNotConfigured = errors.New("emojinick: guild not configured")
	ErrInvalidEmoji       = errors.New("emojinick: not exactly one supported emoji")
	ErrCannotEditOthers   = errors.New("emojinick: caller lacks Manage Nicknames")
	ErrRoleRequired       = errors.New("emojinick: caller lacks an allowed role")
)

// CooldownError is returned while the caller must wait before using the command again.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("emojinick: on cooldown for %s", e.Remaining.Round(time.Second))
}

// cooldownRetention bounds how long a cooldown entry is kept in memory.
const cooldownRetention = 24 * time.Hour

// Session is the part of the Discord session used here.
type Session interface {
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
}

// Request describes a set or remove call. TargetID empty means the caller.
type Request struct {
	GuildID           string
	CallerID          string
	CallerRoles       []string
	CallerPerms       int64
	TargetID          string
	TargetDisplayName string
	Emoji             string
	At                time.Time
}

func (r Request) isSelf() bool {
	return r.TargetID == "" || r.TargetID == r.CallerID
}

func (r Request) target() string {
	if r.TargetID == "" {
		return r.CallerID
	}
	return r.TargetID
}

// Service edits nicknames.
type Service struct {
	session   Session
	recorder  model.Recorder
	config    func() *model.Config
	cooldowns *otter.Cache[string, time.Time] // guild:user -> ready at
}

// NewService wires a service.
func NewService(session Session, recorder model.Recorder, config func() *model.Config) *Service {
	return &Service{
		session:  session,
		recorder: recorder,
		config:   config,
		cooldowns: otter.Must(&otter.Options[string, time.Time]{
			MaximumSize:      10_000,
			ExpiryCalculator: otter.ExpiryWriting[string, time.Time](cooldownRetention),
		}),
	}
}

func allowedRoles(g model.GuildConfig) []string {
	if len(g.EmojiNick.AllowedRoleIDs) > 0 {
		return g.EmojiNick.AllowedRoleIDs
	}
	return g.StaffRoleIDs()
}

func (s *Service) authorize(req Request) (model.GuildConfig, error) {
	guildCfg, ok := s.config().Guild(req.GuildID)
	if !ok {
		return guildCfg, ErrGuildNotConfigured
	}
	if !req.isSelf() && !utils.HasPermission(req.CallerPerms, discordgo.PermissionManageNicknames) {
		return guildCfg, ErrCannotEditOthers
	}
	return guildCfg, nil
}

// SetEmoji replaces the custom emoji in the target's nickname and returns the new nickname.
func (s *Service) SetEmoji(req Request) (string, error) {
	guildCfg, err := s.authorize(req)
	if err != nil {
		return "", err
	}
	if !IsEmoji(req.Emoji) {
		return "", ErrInvalidEmoji
	}
	exempt := utils.HasAnyRole(req.CallerRoles, allowedRoles(guildCfg))
	if req.isSelf() && !exempt {
		return "", ErrRoleRequired
	}

	key := req.GuildID + ":" + req.CallerID
	if !exempt {
		if readyAt, ok := s.cooldowns.GetIfPresent(key); ok && req.At.Before(readyAt) {
			return "", &CooldownError{Remaining: readyAt.Sub(req.At)}
		}
	}

	p := Split(req.TargetDisplayName)
	p.Emoji = req.Emoji
	nick := p.String()
	if err := s.session.GuildMemberNickname(req.GuildID, req.target(), nick); err != nil {
		return "", fmt.Errorf("failed to set nickname: %w", err)
	}
	if !exempt && guildCfg.EmojiNick.Cooldown > 0 {
		s.cooldowns.Set(key, req.At.Add(guildCfg.EmojiNick.Cooldown))
	}
	s.record(req, nick)
	return nick, nil
}

// RemoveEmoji drops the custom emoji and keeps the medal.
func (s *Service) RemoveEmoji(req Request) (string, error) {
	if _, err := s.authorize(req); err != nil {
		return "", err
	}
	p := Split(req.TargetDisplayName)
	p.Emoji = ""
	nick := p.String()
	if err := s.session.GuildMemberNickname(req.GuildID, req.target(), nick); err != nil {
		return "", fmt.Errorf("failed to set nickname: %w", err)
	}
	s.record(req, nick)
	return nick, nil
}

// OnRolesChanged strips the custom emoji from a member who lost every allowed
// role. It reports whether the nickname was changed.
func (s *Service) OnRolesChanged(guildID, userID, displayName string, before, after []string) bool {
	guildCfg, ok := s.config().Guild(guildID)
	if !ok {
		return false
	}
	allowed := allowedRoles(guildCfg)
	if !utils.HasAnyRole(before, allowed) || utils.HasAnyRole(after, allowed) {
		return false
	}
	p := Split(displayName)
	if p.Emoji == "" {
		return false
	}
	p.Emoji = ""
	if err := s.session.GuildMemberNickname(guildID, userID, p.String()); err != nil {
		slog.Debug("failed to strip emoji from nickname", "guild", guildID, "member", userID, "error", err)
		return false
	}
	return true
}

func (s *Service) record(req Request, nick string) {
	metrics.ModerationActions.WithLabelValues(model.ActionEmojiNick).Inc()
	if s.recorder == nil || req.isSelf() {
		return
	}
	err := s.recorder.Record(model.ModAction{
		GuildID:     req.GuildID,
		Action:      model.ActionEmojiNick,
		ModeratorID: req.CallerID,
		TargetID:    req.target(),
		Detail:      nick,
	})
	if err != nil {
		slog.Warn("failed to record nickname edit", "target", req.target(), "error", err)
	}
}
