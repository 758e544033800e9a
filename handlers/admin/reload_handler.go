package admin

import (
	"log/slog"

	"modbot/bot"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleReloadConfig serves /bot-reload. Only configured owners may use it.
func HandleReloadConfig(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || i.Member.User == nil || !b.GetConfig().IsOwner(i.Member.User.ID) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	if err := b.ReloadConfig(); err != nil {
		slog.Error("config reload failed", "user", i.Member.User.ID, "error", err)
		utils.SendErrorResponse(s, i, "Config reload failed: "+err.Error())
		if err := utils.LogError(s, b.GetConfig().LogChannelID, "System", "Reload", err.Error()); err != nil {
			slog.Warn("failed to send reload log", "error", err)
		}
		return
	}
	utils.Respond(s, i, "✅ Configuration reloaded.", true)
	if err := utils.LogInfo(s, b.GetConfig().LogChannelID, "System", "Reload", "Configuration reloaded by <@"+i.Member.User.ID+">."); err != nil {
		slog.Warn("failed to send reload log", "error", err)
	}
}
