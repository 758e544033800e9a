package bot

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"modbot/commands"
	"modbot/config"
	"modbot/model"
	"modbot/restriction"
	"modbot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Options carries the command line settings the bot needs after start.
type Options struct {
	EnvFile       string
	ConfigPath    string
	SweepInterval time.Duration
}

type Bot struct {
	Session         *discordgo.Session
	config          atomic.Value // *model.Config
	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	TextCommands    map[string]func(s *discordgo.Session, m *discordgo.MessageCreate, args []string)
	DB              *sqlx.DB
	Restrictions    *restriction.Store
	StartedAt       time.Time

	opts       Options
	scheduler  *Scheduler
	cmdMu      sync.Mutex
	registered map[string][]*discordgo.ApplicationCommand // by guild
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

// Recorder returns the moderation ledger.
func (b *Bot) Recorder() model.Recorder {
	return database.Ledger{DB: b.DB}
}

func New(cfg *model.Config, db *sqlx.DB, opts Options) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers |
		discordgo.IntentGuildModeration
	// Voice states and members are read from the state cache.
	dg.StateEnabled = true

	b := &Bot{
		Session:      dg,
		DB:           db,
		Restrictions: restriction.NewStore(),
		opts:         opts,
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b.Restrictions, db, opts.SweepInterval)
	return b, nil
}

func (b *Bot) Close() {
	slog.Info("gracefully shutting down")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		slog.Warn("failed to close session", "error", err)
	}
}

func (b *Bot) RefreshCommands(guildID string) {
	guildCfg, ok := b.GetConfig().Guild(guildID)
	if !ok {
		slog.Warn("could not find enabled guild config", "guild", guildID)
		return
	}

	cmds := commands.GenerateCommands(&guildCfg)
	slog.Info("registering commands", "guild", guildID, "count", len(cmds))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		slog.Error("cannot update commands", "guild", guildID, "error", err)
		return
	}

	b.setRegistered(guildID, registered)
}

// setRegistered replaces the commands recorded for the guild.
func (b *Bot) setRegistered(guildID string, cmds []*discordgo.ApplicationCommand) {
	b.cmdMu.Lock()
	defer b.cmdMu.Unlock()
	if b.registered == nil {
		b.registered = make(map[string][]*discordgo.ApplicationCommand)
	}
	b.registered[guildID] = cmds
}

// RegisteredCommands returns how many commands are registered across all guilds.
func (b *Bot) RegisteredCommands() int {
	b.cmdMu.Lock()
	defer b.cmdMu.Unlock()
	n := 0
	for _, cmds := range b.registered {
		n += len(cmds)
	}
	return n
}

func (b *Bot) ReloadConfig() error {
	slog.Info("reloading configuration")
	newCfg, err := config.Load(b.opts.EnvFile, b.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	b.config.Store(newCfg)
	slog.Info("configuration reloaded", "guilds", len(newCfg.ServerConfigs))

	for id, guildCfg := range newCfg.ServerConfigs {
		if guildCfg.Enable {
			go b.RefreshCommands(id)
		}
	}
	return nil
}
