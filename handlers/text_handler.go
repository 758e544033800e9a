package handlers

import (
	"strings"

	"modbot/bot"
	"modbot/metrics"

	"github.com/bwmarrin/discordgo"
)

func textCommands(f features) map[string]func(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	return map[string]func(s *discordgo.Session, m *discordgo.MessageCreate, args []string){
		"vcban":       f.commander.HandleText,
		"vcunban":     f.commander.HandleReleaseText,
		"unboop":      f.unbooper.HandleText,
		"trolladd":    f.trolls.HandleAdd,
		"trollremove": f.trolls.HandleRemove,
		"deleteon":    f.trolls.HandleDeleteOn,
		"deleteoff":   f.trolls.HandleDeleteOff,
		"bomb":        f.trolls.HandleBomb,
	}
}

// parseCommand splits a prefixed message into a lower-cased command name and its arguments.
func parseCommand(prefix, content string) (string, []string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func dispatchText(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	name, args, ok := parseCommand(b.GetConfig().CommandPrefix, m.Content)
	if !ok {
		return
	}
	h, ok := b.TextCommands[name]
	if !ok {
		return
	}
	metrics.Commands.WithLabelValues(name).Inc()
	h(s, m, args)
}
