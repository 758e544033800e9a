package docket

import (
	"errors"
	"fmt"
	"log/slog"

	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// RoleNameFromState resolves role names from the session cache.
func RoleNameFromState(s *discordgo.Session) func(guildID, roleID string) string {
	return func(guildID, roleID string) string {
		if s.State != nil {
			if role, err := s.State.Role(guildID, roleID); err == nil {
				return role.Name
			}
		}
		return roleID
	}
}

func memberRoles(s *discordgo.Session, data discordgo.ApplicationCommandInteractionData, guildID, userID string) []string {
	if data.Resolved != nil {
		if m, ok := data.Resolved.Members[userID]; ok && m != nil {
			return m.Roles
		}
	}
	if s.State != nil {
		if m, err := s.State.Member(guildID, userID); err == nil {
			return m.Roles
		}
	}
	m, err := s.GuildMember(guildID, userID)
	if err != nil {
		slog.Warn("failed to fetch member", "guild", guildID, "member", userID, "error", err)
		return nil
	}
	return m.Roles
}

func buildRequest(s *discordgo.Session, i *discordgo.InteractionCreate) Request {
	req := Request{GuildID: i.GuildID}
	if i.Member != nil && i.Member.User != nil {
		req.CallerID = i.Member.User.ID
		req.CallerName = i.Member.User.Username
		req.CallerRoles = i.Member.Roles
		req.CallerPerms = i.Member.Permissions
	}
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		switch opt.Name {
		case "member":
			req.TargetID = opt.UserValue(nil).ID
		case "docket_type":
			req.DocketType = opt.StringValue()
		}
	}
	if req.TargetID != "" {
		req.TargetRoles = memberRoles(s, data, i.GuildID, req.TargetID)
	}
	return req
}

func errorText(err error, req Request, roleName string) string {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrGuildNotConfigured):
		return "You do not have permission to use this command."
	case errors.Is(err, ErrMissingPermission):
		return "You do not have permission to use this command. (Manage Roles required)"
	case errors.Is(err, ErrUnknownDocket):
		return "Unknown docket type."
	case errors.Is(err, ErrAlreadyAssigned):
		return fmt.Sprintf("⚠️ <@%s> already has the **%s** role.", req.TargetID, roleName)
	case errors.Is(err, ErrNotAssigned):
		return fmt.Sprintf("⚠️ <@%s> does not have the **%s** role.", req.TargetID, roleName)
	case errors.Is(err, ErrSelfAudit):
		return "You cannot remove your own roles."
	case errors.Is(err, ErrNoRoles):
		return fmt.Sprintf("⚠️ <@%s> already has no roles to remove.", req.TargetID)
	case utils.IsPermissionError(err):
		return "I do not have permission to change that member's roles."
	default:
		return "Failed to update roles."
	}
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, req Request, roleName string) {
	text := errorText(err, req, roleName)
	if errors.Is(err, ErrAlreadyAssigned) || errors.Is(err, ErrNotAssigned) || errors.Is(err, ErrNoRoles) {
		utils.Respond(s, i, text, true)
		return
	}
	if !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrMissingPermission) {
		slog.Warn("docket command failed", "guild", req.GuildID, "target", req.TargetID, "error", err)
	}
	utils.SendErrorResponse(s, i, text)
}

// HandleAssign serves /assign_docket.
func (svc *Service) HandleAssign(s *discordgo.Session, i *discordgo.InteractionCreate) {
	req := buildRequest(s, i)
	name, err := svc.Assign(req)
	if err != nil {
		respondError(s, i, err, req, name)
		return
	}
	utils.Respond(s, i, fmt.Sprintf("✅ Assigned **%s** to <@%s>.", name, req.TargetID), true)
}

// HandleRemove serves /remove_docket.
func (svc *Service) HandleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	req := buildRequest(s, i)
	name, err := svc.Remove(req)
	if err != nil {
		respondError(s, i, err, req, name)
		return
	}
	utils.Respond(s, i, fmt.Sprintf("✅ Removed **%s** from <@%s>.", name, req.TargetID), true)
}

// HandleAudit serves /audit.
func (svc *Service) HandleAudit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	req := buildRequest(s, i)
	if _, err := svc.Audit(req); err != nil {
		respondError(s, i, err, req, "")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Auditing all roles from <@%s>.", req.TargetID))
}
