package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	"modbot/bot"
	"modbot/model"
	"modbot/utils"
	"modbot/utils/database"

	"github.com/bwmarrin/discordgo"
)

const defaultModLogLimit = 10

func guildOwnerID(s *discordgo.Session, guildID string) string {
	if s.State == nil {
		return ""
	}
	g, err := s.State.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.OwnerID
}

// HandleModLog serves /modlog. Owners, hosts and moderators may read the ledger.
func HandleModLog(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cfg := b.GetConfig()
	guildCfg, ok := cfg.Guild(i.GuildID)
	if !ok {
		utils.SendErrorResponse(s, i, "This command is not enabled in this server.")
		return
	}
	switch utils.CheckPermission(cfg, guildCfg, i.Member.User.ID, guildOwnerID(s, i.GuildID), i.Member.Roles) {
	case utils.OwnerPermission, utils.HostPermission, utils.ModPermission:
	default:
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	var targetID string
	limit := defaultModLogLimit
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "member":
			if u := opt.UserValue(nil); u != nil {
				targetID = u.ID
			}
		case "limit":
			limit = int(opt.IntValue())
		}
	}
	if targetID == "" {
		utils.SendErrorResponse(s, i, "Member not found.")
		return
	}

	actions, err := database.GetModActionsByTarget(b.DB, i.GuildID, targetID, limit)
	if err != nil {
		slog.Error("failed to read moderation ledger", "guild", i.GuildID, "target", targetID, "error", err)
		utils.SendErrorResponse(s, i, "Failed to read the moderation log.")
		return
	}
	utils.SendEmbedResponse(s, i, true, modLogEmbed(targetID, actions))
}

func modLogLine(a model.ModAction) string {
	by := "bot"
	if a.ModeratorID != "" {
		by = "<@" + a.ModeratorID + ">"
	}
	line := fmt.Sprintf("<t:%d:R> `%s` by %s", a.CreatedAt, a.Action, by)
	if a.ChannelID != "" {
		line += " in <#" + a.ChannelID + ">"
	}
	if a.Detail != "" {
		line += ": " + a.Detail
	}
	return line
}

func modLogEmbed(targetID string, actions []model.ModAction) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Moderation log",
		Color: 0x5865F2,
	}
	if len(actions) == 0 {
		embed.Description = fmt.Sprintf("No recorded actions for <@%s>.", targetID)
		return embed
	}
	lines := make([]string, 0, len(actions)+1)
	lines = append(lines, fmt.Sprintf("Latest %d action(s) for <@%s>:", len(actions), targetID))
	for _, a := range actions {
		lines = append(lines, modLogLine(a))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
