package handlers

import (
	"modbot/bot"
	"modbot/metrics"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	h, ok := b.CommandHandlers[name]
	if !ok {
		return
	}
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	metrics.Commands.WithLabelValues(name).Inc()
	h(s, i)
}
