package commands

import (
	"sort"

	"modbot/commands/defs"
	"modbot/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands builds the slash commands registered in one guild. Docket
// commands are only included when the guild has docket roles configured.
func GenerateCommands(guildCfg *model.GuildConfig) []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		defs.VCBan,
		defs.VCUnban,
		defs.Audit,
		defs.SetEmoji,
		defs.RmEmoji,
		defs.ModNick,
		defs.Unboop,
		defs.ModLog,
		defs.BotStatus,
		defs.BotReload,
	}
	if choices := docketChoices(guildCfg.DocketRoles); len(choices) > 0 {
		cmds = append(cmds,
			docketCommand("assign_docket", "Give a member a docket role", choices),
			docketCommand("remove_docket", "Take a docket role from a member", choices),
		)
	}
	return cmds
}

func docketChoices(roles map[string]string) []*discordgo.ApplicationCommandOptionChoice {
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)
	// Discord caps choices at 25.
	if len(names) > 25 {
		names = names[:25]
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	return choices
}

func docketCommand(name, description string, choices []*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to update",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "docket_type",
				Description: "Docket role",
				Required:    true,
				Choices:     choices,
			},
		},
	}
}
