package nickhistory

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditCall struct {
	before string
	limit  int
}

type fakeAuditLog struct {
	entries []*discordgo.AuditLogEntry // newest first
	calls   []auditCall
	err     error
}

func (f *fakeAuditLog) GuildAuditLog(_, _, beforeID string, _, limit int, _ ...discordgo.RequestOption) (*discordgo.GuildAuditLog, error) {
	f.calls = append(f.calls, auditCall{beforeID, limit})
	if f.err != nil {
		return nil, f.err
	}
	start := 0
	if beforeID != "" {
		for i, e := range f.entries {
			if e.ID == beforeID {
				start = i + 1
			}
		}
	}
	end := min(start+limit, len(f.entries))
	return &discordgo.GuildAuditLog{AuditLogEntries: f.entries[start:end]}, nil
}

func nickEntry(id, target string, before, after interface{}) *discordgo.AuditLogEntry {
	key := discordgo.AuditLogChangeKeyNick
	return &discordgo.AuditLogEntry{
		ID:       id,
		TargetID: target,
		UserID:   "mod",
		Changes:  []*discordgo.AuditLogChange{{Key: &key, OldValue: before, NewValue: after}},
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, ClampLimit(0, false))
	assert.Equal(t, 1, ClampLimit(0, true))
	assert.Equal(t, 1, ClampLimit(-5, true))
	assert.Equal(t, 50, ClampLimit(50, true))
	assert.Equal(t, 200, ClampLimit(500, true))
}

func TestLookupFiltersTargetAndNick(t *testing.T) {
	roleKey := discordgo.AuditLogChangeKeyRoleAdd
	f := &fakeAuditLog{entries: []*discordgo.AuditLogEntry{
		nickEntry("5", "u1", "old", "new"),
		nickEntry("4", "u2", "x", "y"),
		nickEntry("3", "u1", "same", "same"),
		{ID: "2", TargetID: "u1", Changes: []*discordgo.AuditLogChange{{Key: &roleKey}}},
		nickEntry("1", "u1", nil, "first"),
	}}

	changes, err := Lookup(f, "g1", "u1", 100)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "5", changes[0].EntryID)
	assert.Equal(t, "new", *changes[0].After)
	assert.Nil(t, changes[1].Before)
	assert.Equal(t, "mod", changes[1].ActorID)
}

func TestLookupPaginates(t *testing.T) {
	var entries []*discordgo.AuditLogEntry
	for i := 250; i > 0; i-- {
		entries = append(entries, nickEntry(fmt.Sprint(i), "u1", "a", fmt.Sprint(i)))
	}
	f := &fakeAuditLog{entries: entries}

	changes, err := Lookup(f, "g1", "u1", 150)
	require.NoError(t, err)
	assert.Len(t, changes, 150)
	require.Len(t, f.calls, 2)
	assert.Equal(t, auditCall{"", 100}, f.calls[0])
	assert.Equal(t, auditCall{"151", 50}, f.calls[1])
}

func TestLookupStopsOnShortPage(t *testing.T) {
	f := &fakeAuditLog{entries: []*discordgo.AuditLogEntry{nickEntry("1", "u1", "a", "b")}}

	changes, err := Lookup(f, "g1", "u1", 200)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
	assert.Len(t, f.calls, 1)
}

func TestLookupError(t *testing.T) {
	f := &fakeAuditLog{err: errors.New("forbidden")}
	_, err := Lookup(f, "g1", "u1", 10)
	assert.ErrorIs(t, err, f.err)
}

func TestFormatNick(t *testing.T) {
	empty := "  "
	short := "Bob"
	long := strings.Repeat("é", 70)

	assert.Equal(t, "None", FormatNick(nil))
	assert.Equal(t, "“”", FormatNick(&empty))
	assert.Equal(t, "Bob", FormatNick(&short))
	assert.Equal(t, strings.Repeat("é", 64)+"…", FormatNick(&long))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\*\*bold\*\* \_x\_ \~\~ \| \> \\`, EscapeMarkdown(`**bold** _x_ ~~ | > \`))
}

func TestPages(t *testing.T) {
	nick := "n"
	changes := make([]Change, 23)
	for i := range changes {
		changes[i] = Change{ActorID: "mod", After: &nick}
	}

	pages := Pages(changes, "<@u1>")
	require.Len(t, pages, 3)
	assert.Len(t, pages[0].Fields, 10)
	assert.Len(t, pages[2].Fields, 3)
	assert.Equal(t, "Results from the guild audit log (page 3/3).", pages[2].Description)
	assert.Contains(t, pages[0].Fields[0].Value, "**Before:** None")
	assert.Contains(t, pages[0].Fields[0].Value, "**Reason:** No reason provided")

	assert.Empty(t, Pages(nil, "x"))
}

func TestMayView(t *testing.T) {
	assert.False(t, mayView(nil))
	assert.False(t, mayView(&discordgo.Member{Permissions: discordgo.PermissionSendMessages}))
	assert.True(t, mayView(&discordgo.Member{Permissions: discordgo.PermissionViewAuditLogs}))
	assert.True(t, mayView(&discordgo.Member{Permissions: discordgo.PermissionAdministrator}))
}
