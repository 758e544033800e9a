package defs

import "github.com/bwmarrin/discordgo"

var Audit = &discordgo.ApplicationCommand{
	Name:        "audit",
	Description: "Remove every role from a member",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to audit",
			Required:    true,
		},
	},
}

var SetEmoji = &discordgo.ApplicationCommand{
	Name:        "setemoji",
	Description: "Add an emoji to a nickname",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "emoji",
			Description: "A single emoji",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to edit (requires Manage Nicknames)",
			Required:    false,
		},
	},
}

var RmEmoji = &discordgo.ApplicationCommand{
	Name:        "rmemoji",
	Description: "Remove the emoji from a nickname",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to edit (requires Manage Nicknames)",
			Required:    false,
		},
	},
}

var viewAuditLogs int64 = discordgo.PermissionViewAuditLogs

var ModNick = &discordgo.ApplicationCommand{
	Name:                     "mod_nick",
	Description:              "Nickname moderation tools",
	DefaultMemberPermissions: &viewAuditLogs,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "history",
			Description: "Show a member's nickname changes from the audit log",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to look up",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "user_id",
					Description: "Raw user id, for members who left",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Audit log entries to scan (1-200, default 100)",
				},
			},
		},
	},
}

var Unboop = &discordgo.ApplicationCommand{
	Name:        "unboop",
	Description: "Unban everyone whose ban reason matches the configured keywords",
}
