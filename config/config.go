package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"modbot/model"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults applied to every configured guild before the file is decoded.
var guildDefaults = map[string]any{
	"enable":                 true,
	"vcban.explicit_channel": true,
	"vcban.colocated":        true,
	"gif_filter.timeout":     10 * time.Second,
	"emoji_nick.cooldown":    5 * time.Minute,
	"unboop.keywords":        []string{"becky", "boop"},
	"troll.emoji":            "😷",
	"troll.max_reactions":    10,
}

// Load loads the configuration from the environment and the guild config file.
func Load(envFile, configPath string) (*model.Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		slog.Info("env file not found, relying on environment variables", "path", envFile)
	}

	cfg := &model.Config{}
	if err := env.Parse(&cfg.Env); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.LogChannelID == "" {
		slog.Warn("LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	guilds, err := LoadGuilds(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ServerConfigs = guilds
	return cfg, nil
}

// LoadGuilds reads the per-guild moderation settings. A missing file yields no guilds.
func LoadGuilds(path string) (map[string]model.GuildConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("guild config file not found, no guild features enabled", "path", path)
			return map[string]model.GuildConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read guild config %s: %w", path, err)
	}

	for guildID := range v.GetStringMap("guilds") {
		for k, def := range guildDefaults {
			v.SetDefault("guilds."+guildID+"."+k, def)
		}
	}

	var file struct {
		Guilds map[string]model.GuildConfig `mapstructure:"guilds"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode guild config %s: %w", path, err)
	}

	guilds := make(map[string]model.GuildConfig, len(file.Guilds))
	for guildID, g := range file.Guilds {
		if g.GuildID == "" {
			g.GuildID = guildID
		}
		guilds[g.GuildID] = g
	}
	return guilds, nil
}
