// Package troll is a moderator toy: reactions on a member's messages, auto-delete and a purge countdown.
package troll

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"modbot/model"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultEmoji        = "😷"
	defaultMaxReactions = 10
	bombPurgeLimit      = 15
	maxCountdown        = 60
	bulkDeleteMaxAge    = 14 * 24 * time.Hour
)

var ErrCountdown = fmt.Errorf("troll: countdown must be between 1 and %d seconds", maxCountdown)

// Session is the part of the Discord session used here.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

type key struct {
	guildID string
	userID  string
}

type target struct {
	emoji string
	count int
}

// Troll holds the per-guild target lists in memory.
type Troll struct {
	session Session
	config  func() *model.Config
	sleep   func(time.Duration)
	now     func() time.Time

	mu         sync.Mutex
	targets    map[key]*target
	autoDelete map[key]bool
}

// New wires the toy.
func New(session Session, config func() *model.Config) *Troll {
	return &Troll{
		session:    session,
		config:     config,
		sleep:      time.Sleep,
		now:        time.Now,
		targets:    make(map[key]*target),
		autoDelete: make(map[key]bool),
	}
}

func (t *Troll) settings(guildID string) (string, int) {
	emoji, maxReactions := defaultEmoji, defaultMaxReactions
	if g, ok := t.config().Guild(guildID); ok {
		if g.Troll.Emoji != "" {
			emoji = g.Troll.Emoji
		}
		if g.Troll.MaxReactions > 0 {
			maxReactions = g.Troll.MaxReactions
		}
	}
	return emoji, maxReactions
}

// Add starts reacting to the user's messages. It reports false when the user was already listed.
func (t *Troll) Add(guildID, userID, emoji string) bool {
	if emoji == "" {
		emoji, _ = t.settings(guildID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key{guildID, userID}
	if _, ok := t.targets[k]; ok {
		return false
	}
	t.targets[k] = &target{emoji: emoji}
	return true
}

// Remove stops reacting. It reports false when the user was not listed.
func (t *Troll) Remove(guildID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key{guildID, userID}
	if _, ok := t.targets[k]; !ok {
		return false
	}
	delete(t.targets, k)
	return true
}

// SetAutoDelete toggles deletion of every message the user posts.
func (t *Troll) SetAutoDelete(guildID, userID string, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on {
		t.autoDelete[key{guildID, userID}] = true
	} else {
		delete(t.autoDelete, key{guildID, userID})
	}
}

// reaction returns the emoji to add for the author, if any.
func (t *Troll) reaction(k key) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tg, ok := t.targets[k]
	if !ok {
		return "", false
	}
	return tg.emoji, true
}

// countReaction records a successful reaction and drops the target at the limit.
func (t *Troll) countReaction(k key, limit int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tg, ok := t.targets[k]
	if !ok {
		return
	}
	tg.count++
	if tg.count >= limit {
		delete(t.targets, k)
	}
}

// OnMessage applies auto-delete or the reaction to a posted message.
func (t *Troll) OnMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	k := key{m.GuildID, m.Author.ID}

	t.mu.Lock()
	del := t.autoDelete[k]
	t.mu.Unlock()
	if del {
		if err := t.session.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
			slog.Debug("failed to auto-delete message", "channel", m.ChannelID, "message", m.ID, "error", err)
		}
		return
	}

	emoji, ok := t.reaction(k)
	if !ok {
		return
	}
	if err := t.session.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		slog.Debug("failed to add reaction", "channel", m.ChannelID, "message", m.ID, "error", err)
		return
	}
	_, limit := t.settings(m.GuildID)
	t.countReaction(k, limit)
}

// Bomb counts down in the channel, then deletes up to 15 recent messages other
// than the countdown itself. Messages too old for a bulk delete are removed one
// by one. It returns how many were deleted.
func (t *Troll) Bomb(channelID string, countdown int) (int, error) {
	if countdown < 1 || countdown > maxCountdown {
		return 0, ErrCountdown
	}
	msg, err := t.session.ChannelMessageSend(channelID, fmt.Sprintf("💣 The bomb is ticking... %d seconds remaining!", countdown))
	if err != nil {
		return 0, fmt.Errorf("failed to send countdown: %w", err)
	}
	for remaining := countdown - 1; remaining >= 0; remaining-- {
		t.sleep(time.Second)
		content := "💥 BOOM! The bomb has exploded!"
		if remaining > 0 {
			content = fmt.Sprintf("💣 The bomb is ticking... %d seconds remaining!", remaining)
		}
		if _, err := t.session.ChannelMessageEdit(channelID, msg.ID, content); err != nil {
			slog.Debug("failed to edit countdown", "channel", channelID, "error", err)
		}
	}

	recent, err := t.session.ChannelMessages(channelID, bombPurgeLimit+1, "", "", "")
	if err != nil {
		return 0, fmt.Errorf("failed to list messages: %w", err)
	}
	cutoff := t.now().Add(-bulkDeleteMaxAge)
	var bulk, single []string
	for _, m := range recent {
		if m.ID == msg.ID || len(bulk)+len(single) >= bombPurgeLimit {
			continue
		}
		if ts, err := discordgo.SnowflakeTimestamp(m.ID); err == nil && ts.Before(cutoff) {
			single = append(single, m.ID)
		} else {
			bulk = append(bulk, m.ID)
		}
	}
	if len(bulk) == 1 {
		single = append(bulk, single...)
		bulk = nil
	}

	deleted := 0
	if len(bulk) > 0 {
		if err := t.session.ChannelMessagesBulkDelete(channelID, bulk); err != nil {
			return 0, fmt.Errorf("failed to delete messages: %w", err)
		}
		deleted += len(bulk)
	}
	for _, id := range single {
		if err := t.session.ChannelMessageDelete(channelID, id); err != nil {
			slog.Debug("failed to delete message", "channel", channelID, "message", id, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
