package defs

import "github.com/bwmarrin/discordgo"

var voiceChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice}

// VCBan restricts a member from a voice channel. Without a channel option the
// caller's current voice channel is used.
var VCBan = &discordgo.ApplicationCommand{
	Name:        "vcban",
	Description: "Auto-kick a member from a voice channel for 48 hours",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to restrict",
			Required:    true,
		},
		{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Voice channel (defaults to the one you are in)",
			Required:     false,
			ChannelTypes: voiceChannelTypes,
		},
	},
}

var VCUnban = &discordgo.ApplicationCommand{
	Name:        "vcunban",
	Description: "Lift a voice channel restriction",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Restricted member",
			Required:    true,
		},
		{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Voice channel (defaults to the one you are in)",
			Required:     false,
			ChannelTypes: voiceChannelTypes,
		},
	},
}
