package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"modbot/utils"
)

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.StartedAt = time.Now()
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	for id, guildCfg := range b.GetConfig().ServerConfigs {
		if guildCfg.Enable {
			b.RefreshCommands(id)
		}
	}

	b.scheduler.Start()

	slog.Info("bot is now running", "user", b.Session.State.User.Username)
	if err := utils.LogInfo(b.Session, b.GetConfig().LogChannelID, "System", "Startup", "Bot has started successfully."); err != nil {
		slog.Warn("failed to send startup log", "error", err)
	}
	<-ctx.Done()
	return nil
}
