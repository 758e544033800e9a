package nickhistory

import (
	"log/slog"
	"strconv"

	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// subcommand options of /mod_nick history
func historyOptions(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "history" && opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt.Options
		}
	}
	return nil
}

// mayView reports whether the member may read the audit log.
func mayView(m *discordgo.Member) bool {
	return m != nil && utils.HasPermission(m.Permissions, discordgo.PermissionViewAuditLogs)
}

// HandleHistory serves /mod_nick history.
func HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		utils.Respond(s, i, "This command can only be used in a server.", true)
		return
	}
	if !mayView(i.Member) {
		utils.SendErrorResponse(s, i, "You need the **View Audit Log** permission to use this command.")
		return
	}

	var targetID, rawID string
	limit := ClampLimit(0, false)
	for _, opt := range historyOptions(i) {
		switch opt.Name {
		case "user":
			targetID = opt.UserValue(nil).ID
		case "user_id":
			rawID = opt.StringValue()
		case "limit":
			limit = ClampLimit(int(opt.IntValue()), true)
		}
	}
	if targetID == "" && rawID != "" {
		if _, err := strconv.ParseUint(rawID, 10, 64); err != nil {
			utils.Respond(s, i, "That doesn't look like a valid numeric Discord ID.", true)
			return
		}
		targetID = rawID
	}
	if targetID == "" {
		utils.Respond(s, i, "Please provide a user or a raw user ID.", true)
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		slog.Warn("failed to defer nickname history", "error", err)
		return
	}

	changes, err := Lookup(s, i.GuildID, targetID, limit)
	if err != nil {
		if utils.IsPermissionError(err) {
			followUp(s, i, "I couldn't access the audit log. Please ensure I have **View Audit Log**.")
		} else {
			slog.Error("failed to read audit log", "guild", i.GuildID, "error", err)
			followUp(s, i, "Discord API error while reading the audit log.")
		}
		return
	}
	if len(changes) == 0 {
		followUp(s, i, "No nickname changes found for that ID in the recent audit logs I checked.")
		return
	}

	display := targetID
	if s.State != nil {
		if _, err := s.State.Member(i.GuildID, targetID); err == nil {
			display = "<@" + targetID + ">"
		}
	}
	for _, embed := range Pages(changes, display) {
		_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			slog.Warn("failed to send nickname history page", "error", err)
			return
		}
	}
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		slog.Warn("failed to send follow-up", "error", err)
	}
}
