// Package giffilter removes GIFs from configured channels and briefly times out the poster.
package giffilter

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"modbot/metrics"
	"modbot/model"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

var gifURLPattern = regexp.MustCompile(`(?i)https?://\S+\.gif(?:\?\S*)?`)

// Any of these exempts a member from the filter.
const staffPermissions = discordgo.PermissionManageServer | discordgo.PermissionManageMessages |
	discordgo.PermissionModerateMembers | discordgo.PermissionAdministrator

// ContainsGIF reports whether a message carries a GIF as an attachment, an embed or a link.
func ContainsGIF(m *discordgo.Message) bool {
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		if strings.HasSuffix(strings.ToLower(a.Filename), ".gif") || strings.Contains(strings.ToLower(a.ContentType), "gif") {
			return true
		}
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		url := strings.ToLower(e.URL)
		if (e.Type == discordgo.EmbedTypeGifv || e.Type == discordgo.EmbedTypeImage) && strings.Contains(url, ".gif") {
			return true
		}
		if strings.HasSuffix(url, ".gif") {
			return true
		}
		if e.Image != nil && strings.HasSuffix(strings.ToLower(e.Image.URL), ".gif") {
			return true
		}
		if e.Thumbnail != nil && strings.HasSuffix(strings.ToLower(e.Thumbnail.URL), ".gif") {
			return true
		}
	}
	return gifURLPattern.MatchString(m.Content)
}

// Session is the part of the Discord session used here.
type Session interface {
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
}

// Post is a guild message with what the filter needs to know about its author.
type Post struct {
	Message      *discordgo.Message
	AuthorPerms  int64
	GuildOwnerID string
	ChannelName  string
	At           time.Time
}

// Filter applies the GIF rule.
type Filter struct {
	session  Session
	recorder model.Recorder
	config   func() *model.Config
}

// New wires a filter.
func New(session Session, recorder model.Recorder, config func() *model.Config) *Filter {
	return &Filter{session: session, recorder: recorder, config: config}
}

// Watches reports whether the channel is filtered in the guild.
func (f *Filter) Watches(guildID, channelID string) bool {
	g, ok := f.config().Guild(guildID)
	return ok && slices.Contains(g.GifFilter.ChannelIDs, channelID)
}

// Handle deletes the message and times the author out. It reports whether the
// timeout was applied.
func (f *Filter) Handle(p Post) bool {
	m := p.Message
	if m == nil || m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return false
	}
	if !f.Watches(m.GuildID, m.ChannelID) || !ContainsGIF(m) {
		return false
	}
	if m.Author.ID == p.GuildOwnerID || p.AuthorPerms&staffPermissions != 0 {
		return false
	}
	guildCfg, _ := f.config().Guild(m.GuildID)

	if err := f.session.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		if utils.IsPermissionError(err) {
			slog.Warn("missing permission to delete GIF message", "channel", m.ChannelID, "message", m.ID)
			return false
		}
		if !utils.IsNotFound(err) {
			slog.Warn("failed to delete GIF message", "channel", m.ChannelID, "message", m.ID, "error", err)
		}
	}

	until := p.At.Add(guildCfg.GifFilter.Timeout)
	reason := "Posted a GIF (auto-timeout)"
	if p.ChannelName != "" {
		reason = "Posted a GIF in #" + p.ChannelName + " (auto-timeout)"
	}
	if err := f.session.GuildMemberTimeout(m.GuildID, m.Author.ID, &until, discordgo.WithAuditLogReason(reason)); err != nil {
		slog.Debug("failed to time out GIF poster", "guild", m.GuildID, "member", m.Author.ID, "error", err)
		return false
	}

	metrics.ModerationActions.WithLabelValues(model.ActionGifTimeout).Inc()
	if f.recorder != nil {
		err := f.recorder.Record(model.ModAction{
			GuildID:   m.GuildID,
			Action:    model.ActionGifTimeout,
			TargetID:  m.Author.ID,
			ChannelID: m.ChannelID,
			Detail:    guildCfg.GifFilter.Timeout.String(),
			CreatedAt: p.At.Unix(),
		})
		if err != nil {
			slog.Warn("failed to record GIF timeout", "member", m.Author.ID, "error", err)
		}
	}
	return true
}

// OnMessageCreate adapts the gateway event for Handle.
func (f *Filter) OnMessageCreate(s *discordgo.Session, mc *discordgo.MessageCreate) {
	m := mc.Message
	if m == nil || m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	if !f.Watches(m.GuildID, m.ChannelID) || !ContainsGIF(m) {
		return
	}
	p := Post{Message: m, At: time.Now()}
	if s.State != nil {
		if g, err := s.State.Guild(m.GuildID); err == nil {
			p.GuildOwnerID = g.OwnerID
		}
		if ch, err := s.State.Channel(m.ChannelID); err == nil {
			p.ChannelName = ch.Name
		}
	}
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		slog.Warn("failed to compute member permissions, skipping GIF filter", "member", m.Author.ID, "error", err)
		return
	}
	p.AuthorPerms = perms
	f.Handle(p)
}
