package troll

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

const replyLifetime = 5 * time.Second

// OnMessageCreate feeds every guild message through OnMessage.
func (t *Troll) OnMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	t.OnMessage(m.Message)
}

// allowed deletes the command message and reports whether the author may manage messages.
func allowed(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if m.GuildID == "" || m.Author == nil {
		return false
	}
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil || !utils.HasPermission(perms, discordgo.PermissionManageMessages) {
		return false
	}
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		slog.Debug("failed to delete command message", "message", m.ID, "error", err)
	}
	return true
}

// flash posts a reply and removes it a few seconds later.
func flash(s *discordgo.Session, channelID, text string) {
	msg, err := s.ChannelMessageSend(channelID, text)
	if err != nil {
		slog.Warn("failed to send message", "channel", channelID, "error", err)
		return
	}
	time.AfterFunc(replyLifetime, func() {
		if err := s.ChannelMessageDelete(channelID, msg.ID); err != nil {
			slog.Debug("failed to delete reply", "message", msg.ID, "error", err)
		}
	})
}

func targetArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return utils.ParseID(args[0])
}

// HandleAdd serves `trolladd <@user> [emoji]`.
func (t *Troll) HandleAdd(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !allowed(s, m) {
		return
	}
	userID := targetArg(args)
	if userID == "" {
		flash(s, m.ChannelID, "Usage: trolladd <@user> [emoji]")
		return
	}
	emoji := ""
	if len(args) > 1 {
		emoji = args[1]
	}
	if t.Add(m.GuildID, userID, emoji) {
		flash(s, m.ChannelID, fmt.Sprintf("<@%s> will pay for their crimes.", userID))
	} else {
		flash(s, m.ChannelID, fmt.Sprintf("<@%s> is already on the list.", userID))
	}
}

// HandleRemove serves `trollremove <@user>`.
func (t *Troll) HandleRemove(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !allowed(s, m) {
		return
	}
	userID := targetArg(args)
	if userID == "" {
		flash(s, m.ChannelID, "Usage: trollremove <@user>")
		return
	}
	if t.Remove(m.GuildID, userID) {
		flash(s, m.ChannelID, fmt.Sprintf("Removed <@%s> from the list.", userID))
	} else {
		flash(s, m.ChannelID, fmt.Sprintf("<@%s> is not on the list.", userID))
	}
}

// HandleDeleteOn serves `deleteon <@user>`.
func (t *Troll) HandleDeleteOn(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !allowed(s, m) {
		return
	}
	if userID := targetArg(args); userID != "" {
		t.SetAutoDelete(m.GuildID, userID, true)
	}
}

// HandleDeleteOff serves `deleteoff <@user>`.
func (t *Troll) HandleDeleteOff(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !allowed(s, m) {
		return
	}
	if userID := targetArg(args); userID != "" {
		t.SetAutoDelete(m.GuildID, userID, false)
	}
}

// HandleBomb serves `bomb [seconds]`. The countdown runs in its own goroutine.
func (t *Troll) HandleBomb(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !allowed(s, m) {
		return
	}
	countdown := 5
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			flash(s, m.ChannelID, "Usage: bomb [seconds]")
			return
		}
		countdown = n
	}
	if countdown < 1 || countdown > maxCountdown {
		flash(s, m.ChannelID, fmt.Sprintf("The countdown must be between 1 and %d seconds!", maxCountdown))
		return
	}
	go func() {
		deleted, err := t.Bomb(m.ChannelID, countdown)
		if err != nil {
			slog.Warn("bomb failed", "channel", m.ChannelID, "error", err)
			return
		}
		slog.Info("bomb exploded", "channel", m.ChannelID, "deleted", deleted)
	}()
}
