package vcban

import (
	"fmt"
	"log/slog"
	"time"

	"modbot/restriction"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// OnVoiceStateUpdate adapts the gateway event for HandleJoin.
func (l *Listener) OnVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil {
		return
	}
	join := VoiceJoin{
		GuildID:   v.GuildID,
		MemberID:  v.UserID,
		ChannelID: v.ChannelID,
		At:        time.Now(),
	}
	if v.Member != nil && v.Member.User != nil {
		join.IsBot = v.Member.User.Bot
	}
	if s.State != nil && s.State.User != nil && s.State.User.ID == v.UserID {
		join.IsBot = true
	}
	if join.ChannelID != "" {
		join.IsVoice = isVoiceChannel(s, join.ChannelID)
	}
	l.HandleJoin(join)
}

func lookupChannel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if s.State != nil {
		if ch, err := s.State.Channel(channelID); err == nil {
			return ch, nil
		}
	}
	return s.Channel(channelID)
}

func isVoiceChannel(s *discordgo.Session, channelID string) bool {
	ch, err := lookupChannel(s, channelID)
	if err != nil {
		slog.Warn("failed to resolve channel", "channel", channelID, "error", err)
		return false
	}
	return isVoiceType(ch.Type)
}

func isVoiceType(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildVoice || t == discordgo.ChannelTypeGuildStageVoice
}

func guildOwnerID(s *discordgo.Session, guildID string) string {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g.OwnerID
		}
	}
	g, err := s.Guild(guildID)
	if err != nil {
		slog.Warn("failed to fetch guild", "guild", guildID, "error", err)
		return ""
	}
	return g.OwnerID
}

func voiceChannelOf(s *discordgo.Session, guildID, userID string) string {
	if s.State == nil || userID == "" {
		return ""
	}
	vs, err := s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

func (c *Commander) interactionInvocation(s *discordgo.Session, i *discordgo.InteractionCreate) Invocation {
	inv := Invocation{GuildID: i.GuildID, At: time.Now()}
	if i.Member != nil && i.Member.User != nil {
		inv.CallerID = i.Member.User.ID
		inv.CallerRoles = i.Member.Roles
	}
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		switch opt.Name {
		case "member":
			inv.TargetID = opt.UserValue(nil).ID
		case "channel":
			inv.ChannelID = opt.ChannelValue(nil).ID
		}
	}
	if inv.ChannelID != "" {
		if data.Resolved != nil && data.Resolved.Channels[inv.ChannelID] != nil {
			inv.ChannelIsVoice = isVoiceType(data.Resolved.Channels[inv.ChannelID].Type)
		} else {
			inv.ChannelIsVoice = isVoiceChannel(s, inv.ChannelID)
		}
	}
	inv.GuildOwnerID = guildOwnerID(s, i.GuildID)
	inv.CallerChannelID = voiceChannelOf(s, i.GuildID, inv.CallerID)
	inv.TargetChannelID = voiceChannelOf(s, i.GuildID, inv.TargetID)
	return inv
}

func confirmation(res Result) string {
	msg := fmt.Sprintf("<@%s> will be auto-kicked from voice channel <#%s> for the next %d hours.",
		res.Restriction.SubjectID, res.Restriction.ChannelID, int(restriction.Duration.Hours()))
	if res.Disconnected {
		msg += " They have been disconnected."
	}
	return msg
}

// HandleSlash serves /vcban.
func (c *Commander) HandleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	res, err := c.Restrict(c.interactionInvocation(s, i))
	if err != nil {
		utils.SendErrorResponse(s, i, rejectionText(err))
		return
	}
	utils.SendPublicResponse(s, i, confirmation(res))
}

// HandleReleaseSlash serves /vcunban.
func (c *Commander) HandleReleaseSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	inv := c.interactionInvocation(s, i)
	released, err := c.Release(inv)
	if err != nil {
		utils.SendErrorResponse(s, i, rejectionText(err))
		return
	}
	utils.Respond(s, i, releaseText(inv, released), true)
}

func releaseText(inv Invocation, released bool) string {
	channelID := inv.ChannelID
	if channelID == "" {
		channelID = inv.CallerChannelID
	}
	if !released {
		return fmt.Sprintf("<@%s> has no active restriction for <#%s>.", inv.TargetID, channelID)
	}
	return fmt.Sprintf("✅ Lifted the restriction on <@%s> for <#%s>.", inv.TargetID, channelID)
}

func (c *Commander) messageInvocation(s *discordgo.Session, m *discordgo.MessageCreate, channelArg, memberArg string) Invocation {
	inv := Invocation{GuildID: m.GuildID, At: time.Now()}
	if m.Author != nil && m.Member != nil {
		inv.CallerID = m.Author.ID
		inv.CallerRoles = m.Member.Roles
	}
	inv.TargetID = utils.ParseID(memberArg)
	inv.ChannelID = utils.ParseID(channelArg)
	if inv.ChannelID != "" {
		inv.ChannelIsVoice = isVoiceChannel(s, inv.ChannelID)
	}
	inv.GuildOwnerID = guildOwnerID(s, m.GuildID)
	inv.CallerChannelID = voiceChannelOf(s, m.GuildID, inv.CallerID)
	inv.TargetChannelID = voiceChannelOf(s, m.GuildID, inv.TargetID)
	return inv
}

func reply(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, text, m.Reference()); err != nil {
		slog.Warn("failed to reply to command", "channel", m.ChannelID, "error", err)
	}
}

// HandleText serves `vcban <#channel|id> <@member|id>`.
func (c *Commander) HandleText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		reply(s, m, "Usage: vcban <#channel> <@member>")
		return
	}
	inv := c.messageInvocation(s, m, args[0], args[1])
	if inv.ChannelID == "" {
		reply(s, m, rejectionText(ErrNotVoiceChannel))
		return
	}
	res, err := c.Restrict(inv)
	if err != nil {
		reply(s, m, rejectionText(err))
		return
	}
	reply(s, m, confirmation(res))
}

// HandleReleaseText serves `vcunban <#channel|id> <@member|id>`.
func (c *Commander) HandleReleaseText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		reply(s, m, "Usage: vcunban <#channel> <@member>")
		return
	}
	inv := c.messageInvocation(s, m, args[0], args[1])
	released, err := c.Release(inv)
	if err != nil {
		reply(s, m, rejectionText(err))
		return
	}
	reply(s, m, releaseText(inv, released))
}
