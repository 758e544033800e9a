package emojinick

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

func displayName(m *discordgo.Member) string {
	if m == nil {
		return ""
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

func buildRequest(s *discordgo.Session, i *discordgo.InteractionCreate) Request {
	req := Request{GuildID: i.GuildID, At: time.Now()}
	if i.Member != nil && i.Member.User != nil {
		req.CallerID = i.Member.User.ID
		req.CallerRoles = i.Member.Roles
		req.CallerPerms = i.Member.Permissions
	}
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		switch opt.Name {
		case "emoji":
			req.Emoji = strings.TrimSpace(opt.StringValue())
		case "member":
			req.TargetID = opt.UserValue(nil).ID
		}
	}

	if req.isSelf() {
		req.TargetDisplayName = displayName(i.Member)
		return req
	}
	var target *discordgo.Member
	if data.Resolved != nil {
		target = data.Resolved.Members[req.TargetID]
		if target != nil && target.User == nil {
			target.User = data.Resolved.Users[req.TargetID]
		}
	}
	if target == nil {
		m, err := s.GuildMember(i.GuildID, req.TargetID)
		if err != nil {
			slog.Warn("failed to fetch member", "guild", i.GuildID, "member", req.TargetID, "error", err)
		}
		target = m
	}
	req.TargetDisplayName = displayName(target)
	return req
}

func errorText(err error) string {
	var cd *CooldownError
	switch {
	case errors.As(err, &cd):
		return fmt.Sprintf("⏳ You're on cooldown! Try again in `%d` seconds.", int(cd.Remaining.Seconds()))
	case errors.Is(err, ErrInvalidEmoji):
		return "❌ Please provide exactly one valid emoji."
	case errors.Is(err, ErrCannotEditOthers):
		return "❌ You don't have permission to change other users' nicknames."
	case errors.Is(err, ErrRoleRequired), errors.Is(err, ErrGuildNotConfigured):
		return "❌ You don't have the required role to use this command."
	case utils.IsPermissionError(err):
		return "❌ I don't have permission to change that user's nickname."
	default:
		return fmt.Sprintf("⚠️ Error: %v", err)
	}
}

// HandleSet serves /setemoji.
func (svc *Service) HandleSet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	req := buildRequest(s, i)
	nick, err := svc.SetEmoji(req)
	if err != nil {
		utils.Respond(s, i, errorText(err), true)
		return
	}
	utils.Respond(s, i, fmt.Sprintf("✅ Updated <@%s>'s nickname to `%s`", req.target(), nick), !req.isSelf())
}

// HandleRemove serves /rmemoji.
func (svc *Service) HandleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	req := buildRequest(s, i)
	if _, err := svc.RemoveEmoji(req); err != nil {
		utils.Respond(s, i, errorText(err), true)
		return
	}
	utils.Respond(s, i, fmt.Sprintf("✅ Removed emoji from <@%s>'s nickname.", req.target()), !req.isSelf())
}

// OnMemberUpdate strips the emoji when the member loses the roles that allow it.
func (svc *Service) OnMemberUpdate(s *discordgo.Session, u *discordgo.GuildMemberUpdate) {
	if u.Member == nil || u.User == nil || u.BeforeUpdate == nil {
		return
	}
	svc.OnRolesChanged(u.GuildID, u.User.ID, displayName(u.Member), u.BeforeUpdate.Roles, u.Roles)
}
