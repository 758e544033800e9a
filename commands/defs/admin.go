package defs

import "github.com/bwmarrin/discordgo"

var BotStatus = &discordgo.ApplicationCommand{
	Name:        "bot-status",
	Description: "Display bot and system status information",
}

var BotReload = &discordgo.ApplicationCommand{
	Name:        "bot-reload",
	Description: "Reload the moderation configuration (owners only)",
}

var ModLog = &discordgo.ApplicationCommand{
	Name:        "modlog",
	Description: "Show the moderation actions recorded for a member",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to look up",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "limit",
			Description: "How many entries to show (default 10)",
			Required:    false,
			MinValue:    &minOne,
			MaxValue:    25,
		},
	},
}

var minOne = float64(1)
