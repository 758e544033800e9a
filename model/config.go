package model

import "time"

// Env holds the process-level settings read from the environment.
type Env struct {
	BotToken      string   `env:"BOT_TOKEN,required,notEmpty"`
	AppID         string   `env:"APP_ID"`
	LogChannelID  string   `env:"LOG_CHANNEL_ID"`
	OwnerUserIDs  []string `env:"OWNER_USER_IDS" envSeparator:","`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string   `env:"LOG_FILE" envDefault:"logs/modbot.log"`
	CommandPrefix string   `env:"COMMAND_PREFIX" envDefault:"!"`
}

// VCBanConfig toggles the two invocation shapes of the voice restriction command.
type VCBanConfig struct {
	ExplicitChannel bool `mapstructure:"explicit_channel"`
	Colocated       bool `mapstructure:"colocated"`
}

// GifFilterConfig lists the channels where GIFs are removed and how long the poster is timed out.
type GifFilterConfig struct {
	ChannelIDs []string      `mapstructure:"channel_ids"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// EmojiNickConfig controls who may decorate their nickname and how often.
type EmojiNickConfig struct {
	AllowedRoleIDs []string      `mapstructure:"allowed_role_ids"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
}

// UnboopConfig holds the ban-reason keywords that qualify a user for an automatic unban.
type UnboopConfig struct {
	Keywords     []string `mapstructure:"keywords"`
	LogChannelID string   `mapstructure:"log_channel_id"`
}

// TrollConfig holds the defaults of the reaction toy.
type TrollConfig struct {
	Emoji        string `mapstructure:"emoji"`
	MaxReactions int    `mapstructure:"max_reactions"`
}

// GuildConfig holds the moderation settings of one server.
type GuildConfig struct {
	Name                 string            `mapstructure:"name"`
	GuildID              string            `mapstructure:"guild_id"`
	Enable               bool              `mapstructure:"enable"`
	HostRoleIDs          []string          `mapstructure:"host_role_ids"`
	ModRoleIDs           []string          `mapstructure:"mod_role_ids"`
	DocketManagerRoleIDs []string          `mapstructure:"docket_manager_role_ids"`
	SupportFeedChannelID string            `mapstructure:"support_feed_channel_id"`
	DocketRoles          map[string]string `mapstructure:"docket_roles"`
	VCBan                VCBanConfig       `mapstructure:"vcban"`
	GifFilter            GifFilterConfig   `mapstructure:"gif_filter"`
	EmojiNick            EmojiNickConfig   `mapstructure:"emoji_nick"`
	Unboop               UnboopConfig      `mapstructure:"unboop"`
	Troll                TrollConfig       `mapstructure:"troll"`
}

// StaffRoleIDs returns the host and moderator roles together.
func (g GuildConfig) StaffRoleIDs() []string {
	ids := make([]string, 0, len(g.HostRoleIDs)+len(g.ModRoleIDs))
	ids = append(ids, g.HostRoleIDs...)
	return append(ids, g.ModRoleIDs...)
}

// Config stores the application settings.
type Config struct {
	Env
	ServerConfigs map[string]GuildConfig `mapstructure:"guilds"`
}

// Guild returns the configuration of an enabled guild.
func (c *Config) Guild(guildID string) (GuildConfig, bool) {
	g, ok := c.ServerConfigs[guildID]
	if !ok || !g.Enable {
		return GuildConfig{}, false
	}
	return g, true
}

// IsOwner reports whether the user id is listed as a bot owner.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerUserIDs {
		if id != "" && id == userID {
			return true
		}
	}
	return false
}
