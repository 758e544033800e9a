package unboop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"modbot/model"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeSession struct {
	entries   []*discordgo.AuditLogEntry
	banned    map[string]bool
	unbanErr  map[string]error
	unbanned  []string
	posts     []string
	auditErr  error
	pageCalls int
}

func (f *fakeSession) GuildAuditLog(_, _, beforeID string, _, limit int, _ ...discordgo.RequestOption) (*discordgo.GuildAuditLog, error) {
	f.pageCalls++
	if f.auditErr != nil {
		return nil, f.auditErr
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

func (f *fakeSession) GuildBan(_, userID string, _ ...discordgo.RequestOption) (*discordgo.GuildBan, error) {
	if f.banned[userID] {
		return &discordgo.GuildBan{User: &discordgo.User{ID: userID}}, nil
	}
	return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
}

func (f *fakeSession) GuildBanDelete(_, userID string, _ ...discordgo.RequestOption) error {
	if err := f.unbanErr[userID]; err != nil {
		return err
	}
	f.unbanned = append(f.unbanned, userID)
	delete(f.banned, userID)
	return nil
}

func (f *fakeSession) ChannelMessageSend(_ string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.posts = append(f.posts, content)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(string, *discordgo.MessageEmbed, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

type fakeRecorder struct{ actions []model.ModAction }

func (r *fakeRecorder) Record(a model.ModAction) error {
	r.actions = append(r.actions, a)
	return nil
}

func ban(id, target, reason string) *discordgo.AuditLogEntry {
	return &discordgo.AuditLogEntry{ID: id, TargetID: target, Reason: reason}
}

func testConfig() *model.Config {
	return &model.Config{ServerConfigs: map[string]model.GuildConfig{
		"g1": {GuildID: "g1", Enable: true, Unboop: model.UnboopConfig{Keywords: []string{"becky", "boop"}, LogChannelID: "log"}},
	}}
}

func TestRunUnbansMatchingReasons(t *testing.T) {
	sess := &fakeSession{
		entries: []*discordgo.AuditLogEntry{
			ban("9", "u1", "BOOP spam"),
			ban("8", "u2", "raiding"),
			ban("7", "u3", "becky said so"),
			ban("6", "u1", "becky"), // older duplicate, ignored
			ban("5", "u4", "boop"),  // no longer banned
		},
		banned: map[string]bool{"u1": true, "u2": true, "u3": true},
	}
	rec := &fakeRecorder{}
	u := New(sess, rec, testConfig, nil)

	report, err := u.Run(context.Background(), "g1", "mod")
	require.NoError(t, err)
	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, []string{"u1", "u3"}, sess.unbanned)
	assert.Empty(t, report.Failures)
	require.Len(t, sess.posts, 2)
	assert.Contains(t, sess.posts[0], "**Unbanned**: <@u1>")
	assert.Len(t, rec.actions, 2)
	assert.Equal(t, "✅ Unbanned 2 user(s).", report.Summary())
}

func TestRunWalksEveryPage(t *testing.T) {
	sess := &fakeSession{banned: map[string]bool{}}
	for i := 250; i > 0; i-- {
		id := fmt.Sprint(i)
		sess.entries = append(sess.entries, ban(id, "u"+id, "boop"))
	}
	sess.banned["u1"] = true
	u := New(sess, nil, testConfig, nil)

	report, err := u.Run(context.Background(), "g1", "mod")
	require.NoError(t, err)
	assert.Equal(t, 250, report.Scanned)
	assert.Equal(t, 3, sess.pageCalls)
	assert.Equal(t, []string{"u1"}, sess.unbanned)
}

func TestRunReportsFailures(t *testing.T) {
	sess := &fakeSession{
		entries:  []*discordgo.AuditLogEntry{ban("2", "u1", "boop"), ban("1", "u2", "boop")},
		banned:   map[string]bool{"u1": true, "u2": true},
		unbanErr: map[string]error{"u1": errors.New("nope")},
	}
	u := New(sess, nil, testConfig, nil)

	report, err := u.Run(context.Background(), "g1", "mod")
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "u1", report.Failures[0].UserID)
	assert.Equal(t, []string{"u2"}, sess.unbanned)
}

func TestRunNoMatches(t *testing.T) {
	sess := &fakeSession{entries: []*discordgo.AuditLogEntry{ban("1", "u1", "spam")}, banned: map[string]bool{"u1": true}}
	u := New(sess, nil, testConfig, nil)

	report, err := u.Run(context.Background(), "g1", "mod")
	require.NoError(t, err)
	assert.Empty(t, sess.unbanned)
	assert.Equal(t, "🚫 No users found in full audit log with matching ban reasons.", report.Summary())
}

func TestRunAuditError(t *testing.T) {
	sess := &fakeSession{auditErr: errors.New("forbidden")}
	_, err := New(sess, nil, testConfig, nil).Run(context.Background(), "g1", "mod")
	assert.ErrorIs(t, err, sess.auditErr)

	_, err = New(sess, nil, testConfig, nil).Run(context.Background(), "g9", "mod")
	assert.ErrorIs(t, err, ErrGuildNotConfigured)
}

func TestRunHonoursCancelledContext(t *testing.T) {
	sess := &fakeSession{entries: []*discordgo.AuditLogEntry{ban("1", "u1", "boop")}, banned: map[string]bool{"u1": true}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u := New(sess, nil, testConfig, rate.NewLimiter(rate.Limit(0.001), 0))

	_, err := u.Run(ctx, "g1", "mod")
	assert.Error(t, err)
	assert.Empty(t, sess.unbanned)
}

func TestAuthorized(t *testing.T) {
	assert.True(t, Authorized(discordgo.PermissionBanMembers|discordgo.PermissionViewAuditLogs))
	assert.True(t, Authorized(discordgo.PermissionAdministrator))
	assert.False(t, Authorized(discordgo.PermissionBanMembers))
}
