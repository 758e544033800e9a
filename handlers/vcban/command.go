package vcban

import (
	"errors"
	"log/slog"
	"time"

	"modbot/metrics"
	"modbot/model"
	"modbot/restriction"
	"modbot/utils"
)

var (
	ErrGuildNotConfigured = errors.New("vcban: guild not configured")
	ErrUnauthorized       = errors.New("vcban: caller lacks a host or moderator role")
	ErrNotOwner           = errors.New("vcban: explicit channel requires owner")
	ErrCallerMissing      = errors.New("vcban: invoking member not present")
	ErrTargetMissing      = errors.New("vcban: target member missing")
	ErrCallerNotInVoice   = errors.New("vcban: caller not in a voice channel")
	ErrNotVoiceChannel    = errors.New("vcban: channel is not a voice channel")
	ErrModeDisabled       = errors.New("vcban: mode disabled in this guild")
)

// Invocation modes.
const (
	ModeExplicit  = "explicit"
	ModeColocated = "colocated"
)

// Invocation carries one restrict or release request. ChannelID set selects the
// explicit-channel mode; empty selects the caller's current voice channel.
type Invocation struct {
	GuildID         string
	GuildOwnerID    string
	CallerID        string
	CallerRoles     []string
	CallerChannelID string // caller's current voice channel, empty if not connected
	TargetID        string
	TargetChannelID string // target's current voice channel, empty if not connected
	ChannelID       string
	ChannelIsVoice  bool
	At              time.Time
}

// Result describes a created restriction.
type Result struct {
	Restriction  model.Restriction
	Mode         string
	Disconnected bool
}

// Commander validates and applies restriction commands.
type Commander struct {
	store    *restriction.Store
	session  Disconnector
	recorder model.Recorder
	config   func() *model.Config
}

// NewCommander wires a commander. config is read on every call so reloads apply.
// recorder may be nil.
func NewCommander(store *restriction.Store, session Disconnector, recorder model.Recorder, config func() *model.Config) *Commander {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Commander{store: store, session: session, recorder: recorder, config: config}
}

// authorize returns the caller's permission level when it may use the command at all.
func (c *Commander) authorize(inv Invocation) (model.GuildConfig, string, error) {
	cfg := c.config()
	guildCfg, ok := cfg.Guild(inv.GuildID)
	if !ok {
		return model.GuildConfig{}, "", ErrGuildNotConfigured
	}
	if inv.CallerID == "" {
		return guildCfg, "", ErrCallerMissing
	}
	level := utils.CheckPermission(cfg, guildCfg, inv.CallerID, inv.GuildOwnerID, inv.CallerRoles)
	switch level {
	case utils.OwnerPermission, utils.HostPermission, utils.ModPermission:
		return guildCfg, level, nil
	}
	return guildCfg, level, ErrUnauthorized
}

// Restrict writes a 48 hour restriction for the target. In colocated mode the
// target is also disconnected when currently in the channel.
func (c *Commander) Restrict(inv Invocation) (Result, error) {
	guildCfg, level, err := c.authorize(inv)
	if err != nil {
		return Result{}, err
	}
	if inv.TargetID == "" {
		return Result{}, ErrTargetMissing
	}

	res := Result{Mode: ModeColocated}
	channelID := inv.CallerChannelID
	if inv.ChannelID != "" {
		res.Mode = ModeExplicit
		if !guildCfg.VCBan.ExplicitChannel {
			return Result{}, ErrModeDisabled
		}
		if level != utils.OwnerPermission {
			return Result{}, ErrNotOwner
		}
		if !inv.ChannelIsVoice {
			return Result{}, ErrNotVoiceChannel
		}
		channelID = inv.ChannelID
	} else {
		if !guildCfg.VCBan.Colocated {
			return Result{}, ErrModeDisabled
		}
		if channelID == "" {
			return Result{}, ErrCallerNotInVoice
		}
	}

	expiresAt := inv.At.Add(restriction.Duration)
	c.store.Put(inv.TargetID, channelID, expiresAt)
	res.Restriction = model.Restriction{SubjectID: inv.TargetID, ChannelID: channelID, ExpiresAt: expiresAt}
	metrics.RestrictionsCreated.WithLabelValues(res.Mode).Inc()
	slog.Info("voice restriction created", "guild", inv.GuildID, "caller", inv.CallerID, "target", inv.TargetID, "channel", channelID, "mode", res.Mode, "expires_at", expiresAt)

	record(c.recorder, model.ModAction{
		GuildID:     inv.GuildID,
		Action:      model.ActionVCBan,
		ModeratorID: inv.CallerID,
		TargetID:    inv.TargetID,
		ChannelID:   channelID,
		Detail:      res.Mode,
		CreatedAt:   inv.At.Unix(),
	})

	if res.Mode == ModeColocated && inv.TargetChannelID == channelID {
		if err := c.session.GuildMemberMove(inv.GuildID, inv.TargetID, nil); err != nil {
			slog.Warn("failed to disconnect member on restriction", "guild", inv.GuildID, "target", inv.TargetID, "error", err)
		} else {
			res.Disconnected = true
			metrics.Evictions.Inc()
		}
	}
	return res, nil
}

// Release cancels a restriction before it lapses and reports whether one existed.
func (c *Commander) Release(inv Invocation) (bool, error) {
	if _, _, err := c.authorize(inv); err != nil {
		return false, err
	}
	if inv.TargetID == "" {
		return false, ErrTargetMissing
	}
	channelID := inv.ChannelID
	if channelID == "" {
		channelID = inv.CallerChannelID
	}
	if channelID == "" {
		return false, ErrCallerNotInVoice
	}

	released := c.store.Release(inv.TargetID, channelID)
	if released {
		slog.Info("voice restriction released", "guild", inv.GuildID, "caller", inv.CallerID, "target", inv.TargetID, "channel", channelID)
		record(c.recorder, model.ModAction{
			GuildID:     inv.GuildID,
			Action:      model.ActionVCUnban,
			ModeratorID: inv.CallerID,
			TargetID:    inv.TargetID,
			ChannelID:   channelID,
			CreatedAt:   inv.At.Unix(),
		})
	}
	return released, nil
}

// rejectionText maps a command error to the message shown to the caller.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, ErrGuildNotConfigured):
		return "Voice restrictions are not enabled in this server."
	case errors.Is(err, ErrUnauthorized):
		return "You do not have permission to use this command."
	case errors.Is(err, ErrNotOwner):
		return "Only the host can restrict a member from a specific channel."
	case errors.Is(err, ErrCallerMissing):
		return "This command can only be used by a server member."
	case errors.Is(err, ErrTargetMissing):
		return "Please specify a member."
	case errors.Is(err, ErrCallerNotInVoice):
		return "You must be in a voice channel to use this command."
	case errors.Is(err, ErrNotVoiceChannel):
		return "That channel is not a voice channel."
	case errors.Is(err, ErrModeDisabled):
		return "This form of the command is disabled in this server."
	default:
		return "Something went wrong."
	}
}
