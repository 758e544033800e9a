package commands

import (
	"fmt"
	"testing"

	"modbot/model"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(cmds []*discordgo.ApplicationCommand) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Name)
	}
	return out
}

func find(cmds []*discordgo.ApplicationCommand, name string) *discordgo.ApplicationCommand {
	for _, c := range cmds {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGenerateCommandsWithoutDockets(t *testing.T) {
	cmds := GenerateCommands(&model.GuildConfig{GuildID: "g1"})

	assert.Contains(t, names(cmds), "vcban")
	assert.Contains(t, names(cmds), "bot-status")
	assert.NotContains(t, names(cmds), "assign_docket")
}

func TestGenerateCommandsDocketChoices(t *testing.T) {
	cmds := GenerateCommands(&model.GuildConfig{DocketRoles: map[string]string{
		"verified": "r2",
		"appeal":   "r1",
	}})

	assign := find(cmds, "assign_docket")
	require.NotNil(t, assign)
	require.NotNil(t, find(cmds, "remove_docket"))

	choices := assign.Options[1].Choices
	require.Len(t, choices, 2)
	assert.Equal(t, "appeal", choices[0].Name)
	assert.Equal(t, "verified", choices[1].Value)
}

func TestDocketChoicesCapped(t *testing.T) {
	roles := make(map[string]string)
	for i := range 30 {
		roles[fmt.Sprintf("docket-%02d", i)] = fmt.Sprint(i)
	}
	assert.Len(t, docketChoices(roles), 25)
}

func TestVCBanChannelOptionIsVoiceOnly(t *testing.T) {
	vcban := find(GenerateCommands(&model.GuildConfig{}), "vcban")
	require.NotNil(t, vcban)

	channel := vcban.Options[1]
	assert.Equal(t, "channel", channel.Name)
	assert.False(t, channel.Required)
	assert.ElementsMatch(t, []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice}, channel.ChannelTypes)
}

func TestModNickRequiresAuditLogAccess(t *testing.T) {
	modNick := find(GenerateCommands(&model.GuildConfig{}), "mod_nick")
	require.NotNil(t, modNick)
	require.NotNil(t, modNick.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionViewAuditLogs), *modNick.DefaultMemberPermissions)
}
