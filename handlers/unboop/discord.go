package unboop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

const scanNotice = "🔍 Scanning full audit log. This may take a moment..."

func (u *Unbooper) run(ctx context.Context, guildID, callerID string, say func(string)) {
	say(scanNotice)
	report, err := u.Run(ctx, guildID, callerID)
	for _, f := range report.Failures {
		say(fmt.Sprintf("❌ Failed to unban <@%s>: %v", f.UserID, f.Err))
	}
	if err != nil {
		if errors.Is(err, ErrGuildNotConfigured) {
			say("This command is not enabled in this server.")
			return
		}
		slog.Error("unboop run failed", "guild", guildID, "error", err)
		say("❌ Failed to read the audit log.")
		return
	}
	slog.Info("unboop run finished", "guild", guildID, "scanned", report.Scanned, "unbanned", len(report.Unbanned), "failed", len(report.Failures))
	say(report.Summary())
}

// HandleText serves the unboop text command.
func (u *Unbooper) HandleText(s *discordgo.Session, m *discordgo.MessageCreate, _ []string) {
	if m.GuildID == "" || m.Author == nil {
		return
	}
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil || !Authorized(perms) {
		if _, err := s.ChannelMessageSend(m.ChannelID, "You need Ban Members and View Audit Log to use this command."); err != nil {
			slog.Warn("failed to send message", "error", err)
		}
		return
	}
	u.run(context.Background(), m.GuildID, m.Author.ID, func(text string) {
		if _, err := s.ChannelMessageSend(m.ChannelID, text); err != nil {
			slog.Warn("failed to send message", "channel", m.ChannelID, "error", err)
		}
	})
}

// HandleSlash serves /unboop.
func (u *Unbooper) HandleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil || !Authorized(i.Member.Permissions) {
		utils.SendErrorResponse(s, i, "You need Ban Members and View Audit Log to use this command.")
		return
	}
	if err := utils.DeferResponse(s, i, false); err != nil {
		slog.Warn("failed to defer unboop", "error", err)
		return
	}
	first := true
	u.run(context.Background(), i.GuildID, i.Member.User.ID, func(text string) {
		if first {
			first = false
			utils.SendFollowUp(s, i.Interaction, text)
			return
		}
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: text}); err != nil {
			slog.Warn("failed to send follow-up", "error", err)
		}
	})
}
