// Package unboop lifts bans whose audit log reason contains a configured keyword.
package unboop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"modbot/metrics"
	"modbot/model"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

const (
	auditPageSize = 100
	unbanReason   = "Auto-unbanned: matched keyword in audit log ban reason."
	// RequiredPermissions must all be held by the caller.
	RequiredPermissions = discordgo.PermissionBanMembers | discordgo.PermissionViewAuditLogs
)

var ErrGuildNotConfigured = errors.New("unboop: guild not configured")

// Session is the part of the Discord session used here.
type Session interface {
	GuildAuditLog(guildID, userID, beforeID string, actionType, limit int, options ...discordgo.RequestOption) (*discordgo.GuildAuditLog, error)
	GuildBan(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.GuildBan, error)
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	utils.ChannelSender
}

// Unban is a lifted ban.
type Unban struct {
	UserID string
	Reason string
}

// Failure is a ban that matched but could not be lifted.
type Failure struct {
	UserID string
	Err    error
}

// Report summarises one run.
type Report struct {
	Scanned  int
	Unbanned []Unban
	Failures []Failure
}

// Unbooper walks the ban audit log and lifts matching bans.
type Unbooper struct {
	session  Session
	recorder model.Recorder
	config   func() *model.Config
	limiter  *rate.Limiter
}

// New wires an unbooper. limiter paces the unban calls.
func New(session Session, recorder model.Recorder, config func() *model.Config, limiter *rate.Limiter) *Unbooper {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Unbooper{session: session, recorder: recorder, config: config, limiter: limiter}
}

// Authorized reports whether the permission set allows running the command.
func Authorized(perms int64) bool {
	return utils.HasPermission(perms, RequiredPermissions)
}

func matches(reason string, keywords []string) bool {
	reason = strings.ToLower(reason)
	for _, k := range keywords {
		if k != "" && strings.Contains(reason, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Run scans the whole ban history of the guild. Each user is considered once,
// using the newest ban entry.
func (u *Unbooper) Run(ctx context.Context, guildID, callerID string) (Report, error) {
	cfg := u.config()
	guildCfg, ok := cfg.Guild(guildID)
	if !ok {
		return Report{}, ErrGuildNotConfigured
	}
	logChannel := guildCfg.Unboop.LogChannelID
	if logChannel == "" {
		logChannel = cfg.LogChannelID
	}

	var report Report
	seen := make(map[string]bool)
	before := ""
	for {
		page, err := u.session.GuildAuditLog(guildID, "", before, int(discordgo.AuditLogActionMemberBanAdd), auditPageSize)
		if err != nil {
			return report, fmt.Errorf("failed to read ban audit log for guild %s: %w", guildID, err)
		}
		if page == nil || len(page.AuditLogEntries) == 0 {
			break
		}
		for _, entry := range page.AuditLogEntries {
			if entry == nil {
				continue
			}
			before = entry.ID
			report.Scanned++
			if entry.TargetID == "" || seen[entry.TargetID] {
				continue
			}
			seen[entry.TargetID] = true
			if !matches(entry.Reason, guildCfg.Unboop.Keywords) {
				continue
			}
			if err := u.lift(ctx, guildID, callerID, logChannel, entry, &report); err != nil {
				return report, err
			}
		}
		if len(page.AuditLogEntries) < auditPageSize {
			break
		}
	}
	return report, nil
}

// lift unbans one user. Only a cancelled context is returned as an error.
func (u *Unbooper) lift(ctx context.Context, guildID, callerID, logChannel string, entry *discordgo.AuditLogEntry, report *Report) error {
	if _, err := u.session.GuildBan(guildID, entry.TargetID); err != nil {
		if !utils.IsNotFound(err) {
			report.Failures = append(report.Failures, Failure{UserID: entry.TargetID, Err: err})
		}
		return nil
	}
	if err := u.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := u.session.GuildBanDelete(guildID, entry.TargetID, discordgo.WithAuditLogReason(unbanReason)); err != nil {
		slog.Warn("failed to unban user", "guild", guildID, "user", entry.TargetID, "error", err)
		report.Failures = append(report.Failures, Failure{UserID: entry.TargetID, Err: err})
		return nil
	}

	report.Unbanned = append(report.Unbanned, Unban{UserID: entry.TargetID, Reason: entry.Reason})
	metrics.ModerationActions.WithLabelValues(model.ActionUnban).Inc()
	utils.PostFeed(u.session, logChannel,
		fmt.Sprintf("🔓 **Unbanned**: <@%s> (`%s`)\n📝 **Reason**: %s", entry.TargetID, entry.TargetID, entry.Reason))
	if u.recorder != nil {
		err := u.recorder.Record(model.ModAction{
			GuildID:     guildID,
			Action:      model.ActionUnban,
			ModeratorID: callerID,
			TargetID:    entry.TargetID,
			Detail:      entry.Reason,
		})
		if err != nil {
			slog.Warn("failed to record unban", "user", entry.TargetID, "error", err)
		}
	}
	return nil
}

// Summary is the closing line of a run.
func (r Report) Summary() string {
	if len(r.Unbanned) == 0 {
		return "🚫 No users found in full audit log with matching ban reasons."
	}
	return fmt.Sprintf("✅ Unbanned %d user(s).", len(r.Unbanned))
}
