package utils

import (
	"slices"

	"modbot/model"

	"github.com/bwmarrin/discordgo"
)

// Permission levels
const (
	OwnerPermission         = "owner"
	HostPermission          = "host"
	ModPermission           = "mod"
	DocketManagerPermission = "docket_manager"
	GuestPermission         = "guest"
)

// hasAnyRole reports whether any of the member's roles is in allowed.
func hasAnyRole(memberRoleIDs, allowed []string) bool {
	for _, id := range memberRoleIDs {
		if id != "" && slices.Contains(allowed, id) {
			return true
		}
	}
	return false
}

// CheckPermission returns the highest permission level of a member against the guild config.
// Owners are the configured owner ids plus the guild owner.
func CheckPermission(cfg *model.Config, guildCfg model.GuildConfig, userID, guildOwnerID string, memberRoleIDs []string) string {
	if cfg.IsOwner(userID) || (guildOwnerID != "" && guildOwnerID == userID) {
		return OwnerPermission
	}
	if hasAnyRole(memberRoleIDs, guildCfg.HostRoleIDs) {
		return HostPermission
	}
	if hasAnyRole(memberRoleIDs, guildCfg.ModRoleIDs) {
		return ModPermission
	}
	if hasAnyRole(memberRoleIDs, guildCfg.DocketManagerRoleIDs) {
		return DocketManagerPermission
	}
	return GuestPermission
}

// HasAnyRole reports whether the member holds one of the given roles.
func HasAnyRole(memberRoleIDs, allowed []string) bool {
	return hasAnyRole(memberRoleIDs, allowed)
}

// HasPermission checks a Discord permission bitfield. Administrator implies every permission.
func HasPermission(perms, perm int64) bool {
	return perms&discordgo.PermissionAdministrator != 0 || perms&perm == perm
}
