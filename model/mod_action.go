package model

// Action types recorded in the moderation ledger.
const (
	ActionVCBan        = "vcban"
	ActionVCUnban      = "vcunban"
	ActionVCKick       = "vckick"
	ActionDocketAssign = "docket_assign"
	ActionDocketRemove = "docket_remove"
	ActionRoleAudit    = "role_audit"
	ActionUnban        = "unban"
	ActionGifTimeout   = "gif_timeout"
	ActionEmojiNick    = "emoji_nick"
)

// ModAction represents a single moderation action taken through the bot.
// The database table is named 'mod_actions'.
type ModAction struct {
	ID          int64  `db:"id"` // Primary Key, Auto-increment
	GuildID     string `db:"guild_id"`
	Action      string `db:"action"`
	ModeratorID string `db:"moderator_id"` // empty when the bot acted on its own
	TargetID    string `db:"target_id"`
	ChannelID   string `db:"channel_id"`
	Detail      string `db:"detail"`
	CreatedAt   int64  `db:"created_at"`
}
