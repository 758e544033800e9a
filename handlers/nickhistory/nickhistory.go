// Package nickhistory looks up nickname changes of a member in the guild audit log.
package nickhistory

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	DefaultLimit = 100
	MaxLimit     = 200
	PageSize     = 10

	auditPageSize  = 100
	maxValueLength = 64
)

// AuditLogReader is the part of the session used to read the audit log.
type AuditLogReader interface {
	GuildAuditLog(guildID, userID, beforeID string, actionType, limit int, options ...discordgo.RequestOption) (*discordgo.GuildAuditLog, error)
}

// Change is one nickname change. A nil value means no nickname was set.
type Change struct {
	EntryID string
	ActorID string
	Reason  string
	Before  *string
	After   *string
	At      time.Time
}

// ClampLimit bounds the number of audit log entries to scan.
func ClampLimit(limit int, provided bool) int {
	if !provided {
		return DefaultLimit
	}
	return max(1, min(MaxLimit, limit))
}

// Lookup scans up to limit member-update entries, newest first, and returns the
// nickname changes that target the member.
func Lookup(r AuditLogReader, guildID, targetID string, limit int) ([]Change, error) {
	var changes []Change
	before := ""
	for scanned := 0; scanned < limit; {
		n := min(auditPageSize, limit-scanned)
		page, err := r.GuildAuditLog(guildID, "", before, int(discordgo.AuditLogActionMemberUpdate), n)
		if err != nil {
			return nil, fmt.Errorf("failed to read audit log for guild %s: %w", guildID, err)
		}
		if page == nil || len(page.AuditLogEntries) == 0 {
			break
		}
		for _, entry := range page.AuditLogEntries {
			if entry == nil {
				continue
			}
			if c, ok := nickChange(entry); ok && entry.TargetID == targetID {
				changes = append(changes, c)
			}
			before = entry.ID
		}
		scanned += len(page.AuditLogEntries)
		if len(page.AuditLogEntries) < n {
			break
		}
	}
	return changes, nil
}

func nickChange(entry *discordgo.AuditLogEntry) (Change, bool) {
	for _, ch := range entry.Changes {
		if ch == nil || ch.Key == nil || *ch.Key != discordgo.AuditLogChangeKeyNick {
			continue
		}
		c := Change{
			EntryID: entry.ID,
			ActorID: entry.UserID,
			Reason:  entry.Reason,
			Before:  stringValue(ch.OldValue),
			After:   stringValue(ch.NewValue),
		}
		if equal(c.Before, c.After) {
			return Change{}, false
		}
		if ts, err := discordgo.SnowflakeTimestamp(entry.ID); err == nil {
			c.At = ts
		}
		return c, true
	}
	return Change{}, false
}

func stringValue(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "~", `\~`, "`", "\\`", "|", `\|`, ">", `\>`,
)

// EscapeMarkdown escapes the characters Discord treats as formatting.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatNick renders a nickname value for display.
func FormatNick(v *string) string {
	if v == nil {
		return "None"
	}
	if strings.TrimSpace(*v) == "" {
		return "“”"
	}
	if utf8.RuneCountInString(*v) > maxValueLength {
		return string([]rune(*v)[:maxValueLength]) + "…"
	}
	return *v
}

// Pages renders the changes as embeds of PageSize fields each.
func Pages(changes []Change, targetDisplay string) []*discordgo.MessageEmbed {
	total := (len(changes) + PageSize - 1) / PageSize
	embeds := make([]*discordgo.MessageEmbed, 0, total)
	for page := 0; page < total; page++ {
		chunk := changes[page*PageSize : min((page+1)*PageSize, len(changes))]
		embed := &discordgo.MessageEmbed{
			Title:       "Nickname changes for " + targetDisplay,
			Description: fmt.Sprintf("Results from the guild audit log (page %d/%d).", page+1, total),
			Color:       0x5865F2,
		}
		for _, c := range chunk {
			actor := "Unknown"
			if c.ActorID != "" {
				actor = "<@" + c.ActorID + ">"
			}
			reason := c.Reason
			if reason == "" {
				reason = "No reason provided"
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: fmt.Sprintf("Changed by %s • <t:%d:R>", actor, c.At.Unix()),
				Value: fmt.Sprintf("**Before:** %s\n**After:**  %s\n**Reason:** %s",
					EscapeMarkdown(FormatNick(c.Before)), EscapeMarkdown(FormatNick(c.After)), EscapeMarkdown(reason)),
			})
		}
		embeds = append(embeds, embed)
	}
	return embeds
}
