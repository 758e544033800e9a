// Package docket grants and revokes the configured docket roles.
package docket

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"modbot/metrics"
	"modbot/model"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrGuildNotConfigured = errors.New("docket: guild not configured")
	ErrUnauthorized       = errors.New("docket: caller lacks a host, moderator or docket manager role")
	ErrMissingPermission  = errors.New("docket: caller lacks Manage Roles")
	ErrUnknownDocket      = errors.New("docket: unknown docket type")
	ErrAlreadyAssigned    = errors.New("docket: member already has the role")
	ErrNotAssigned        = errors.New("docket: member does not have the role")
	ErrSelfAudit          = errors.New("docket: cannot audit yourself")
	ErrNoRoles            = errors.New("docket: member has no roles")
)

// Session is the part of the Discord session used here.
type Session interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberEdit(guildID, userID string, data *discordgo.GuildMemberParams, options ...discordgo.RequestOption) (*discordgo.Member, error)
	utils.ChannelSender
}

// Request describes an assign, remove or audit call.
type Request struct {
	GuildID     string
	CallerID    string
	CallerName  string
	CallerRoles []string
	CallerPerms int64
	TargetID    string
	TargetRoles []string
	DocketType  string
}

// Service applies docket commands.
type Service struct {
	session  Session
	recorder model.Recorder
	config   func() *model.Config
	roleName func(guildID, roleID string) string
}

// NewService wires a service. roleName resolves a display name and may be nil.
func NewService(session Session, recorder model.Recorder, config func() *model.Config, roleName func(guildID, roleID string) string) *Service {
	if roleName == nil {
		roleName = func(_, roleID string) string { return roleID }
	}
	return &Service{session: session, recorder: recorder, config: config, roleName: roleName}
}

func (s *Service) docketRole(req Request) (model.GuildConfig, string, error) {
	guildCfg, ok := s.config().Guild(req.GuildID)
	if !ok {
		return guildCfg, "", ErrGuildNotConfigured
	}
	allowed := append(guildCfg.StaffRoleIDs(), guildCfg.DocketManagerRoleIDs...)
	if !utils.HasAnyRole(req.CallerRoles, allowed) {
		return guildCfg, "", ErrUnauthorized
	}
	roleID, ok := guildCfg.DocketRoles[req.DocketType]
	if !ok || roleID == "" {
		return guildCfg, "", ErrUnknownDocket
	}
	return guildCfg, roleID, nil
}

// Assign grants the docket role and returns its display name.
func (s *Service) Assign(req Request) (string, error) {
	guildCfg, roleID, err := s.docketRole(req)
	if err != nil {
		return "", err
	}
	name := s.roleName(req.GuildID, roleID)
	if slices.Contains(req.TargetRoles, roleID) {
		return name, ErrAlreadyAssigned
	}
	if err := s.session.GuildMemberRoleAdd(req.GuildID, req.TargetID, roleID, discordgo.WithAuditLogReason("Assigned by "+req.CallerName)); err != nil {
		return name, fmt.Errorf("failed to add role %s: %w", roleID, err)
	}

	s.record(req, model.ActionDocketAssign, req.DocketType)
	utils.PostFeed(s.session, guildCfg.SupportFeedChannelID,
		fmt.Sprintf("🟢 <@%s> **assigned** %s to <@%s>.", req.CallerID, name, req.TargetID))
	return name, nil
}

// Remove revokes the docket role and returns its display name.
func (s *Service) Remove(req Request) (string, error) {
	guildCfg, roleID, err := s.docketRole(req)
	if err != nil {
		return "", err
	}
	name := s.roleName(req.GuildID, roleID)
	if !slices.Contains(req.TargetRoles, roleID) {
		return name, ErrNotAssigned
	}
	if err := s.session.GuildMemberRoleRemove(req.GuildID, req.TargetID, roleID, discordgo.WithAuditLogReason("Removed by "+req.CallerName)); err != nil {
		return name, fmt.Errorf("failed to remove role %s: %w", roleID, err)
	}

	s.record(req, model.ActionDocketRemove, req.DocketType)
	utils.PostFeed(s.session, guildCfg.SupportFeedChannelID,
		fmt.Sprintf("🔴 <@%s> **removed** %s from <@%s>.", req.CallerID, name, req.TargetID))
	return name, nil
}

// Audit strips every role from the target and returns how many were removed.
func (s *Service) Audit(req Request) (int, error) {
	guildCfg, ok := s.config().Guild(req.GuildID)
	if !ok {
		return 0, ErrGuildNotConfigured
	}
	if !utils.HasPermission(req.CallerPerms, discordgo.PermissionManageRoles) {
		return 0, ErrMissingPermission
	}
	if req.CallerID == req.TargetID {
		return 0, ErrSelfAudit
	}
	// The @everyone role shares the guild id and is never listed as removable.
	var roles []string
	for _, id := range req.TargetRoles {
		if id != "" && id != req.GuildID {
			roles = append(roles, id)
		}
	}
	if len(roles) == 0 {
		return 0, ErrNoRoles
	}

	empty := []string{}
	_, err := s.session.GuildMemberEdit(req.GuildID, req.TargetID, &discordgo.GuildMemberParams{Roles: &empty},
		discordgo.WithAuditLogReason("All roles removed by "+req.CallerName))
	if err != nil {
		return 0, fmt.Errorf("failed to clear roles: %w", err)
	}

	s.record(req, model.ActionRoleAudit, fmt.Sprintf("%d roles", len(roles)))
	utils.PostFeed(s.session, guildCfg.SupportFeedChannelID,
		fmt.Sprintf("🟠 <@%s> **removed all roles** from <@%s> for audit.", req.CallerID, req.TargetID))
	return len(roles), nil
}

func (s *Service) record(req Request, action, detail string) {
	metrics.ModerationActions.WithLabelValues(action).Inc()
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(model.ModAction{
		GuildID:     req.GuildID,
		Action:      action,
		ModeratorID: req.CallerID,
		TargetID:    req.TargetID,
		Detail:      detail,
	})
	if err != nil {
		slog.Warn("failed to record docket action", "action", action, "target", req.TargetID, "error", err)
	}
}
