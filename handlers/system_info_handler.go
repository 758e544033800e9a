package handlers

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"modbot/bot"
	"modbot/utils"
	"modbot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

type botStats struct {
	Platform       string
	Kernel         string
	CPUCount       int
	CPUPercent     float64
	MemUsedPercent float64
	MemUsedMB      uint64
	MemTotalMB     uint64
	Latency        time.Duration
	Goroutines     int
	Guilds         int
	Commands       int
	Restrictions   int
	LedgerEntries  int
	Uptime         time.Duration
}

func collectStats(s *discordgo.Session, b *bot.Bot, guildID string) botStats {
	stats := botStats{
		Latency:      s.HeartbeatLatency(),
		Goroutines:   runtime.NumGoroutine(),
		Commands:     b.RegisteredCommands(),
		Restrictions: len(b.Restrictions.Active(time.Now())),
	}
	if !b.StartedAt.IsZero() {
		stats.Uptime = time.Since(b.StartedAt)
	}
	if s.State != nil {
		stats.Guilds = len(s.State.Guilds)
	}
	if n, err := cpu.Counts(true); err == nil {
		stats.CPUCount = n
	}
	if p, err := cpu.Percent(0, false); err == nil && len(p) > 0 {
		stats.CPUPercent = p[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemUsedPercent = vm.UsedPercent
		stats.MemUsedMB = vm.Used / 1024 / 1024
		stats.MemTotalMB = vm.Total / 1024 / 1024
	}
	if info, err := host.Info(); err == nil {
		stats.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		stats.Kernel = info.KernelVersion
	}
	if b.DB != nil {
		n, err := database.CountModActions(b.DB, guildID, time.Unix(0, 0))
		if err != nil {
			slog.Warn("failed to count ledger entries", "guild", guildID, "error", err)
		}
		stats.LedgerEntries = n
	}
	return stats
}

func statusEmbed(st botStats, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Bot status",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: orUnknown(st.Platform), Inline: true},
			{Name: "🔧 Kernel", Value: orUnknown(st.Kernel), Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", st.CPUCount), Inline: true},
			{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", st.CPUPercent), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", st.MemUsedPercent, st.MemUsedMB, st.MemTotalMB), Inline: true},
			{Name: "⏱️ Gateway latency", Value: st.Latency.Round(time.Millisecond).String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", st.Goroutines), Inline: true},
			{Name: "🌍 Guilds", Value: fmt.Sprintf("%d", st.Guilds), Inline: true},
			{Name: "🧩 Commands", Value: fmt.Sprintf("%d", st.Commands), Inline: true},
			{Name: "🔇 Active voice restrictions", Value: fmt.Sprintf("%d", st.Restrictions), Inline: true},
			{Name: "📒 Ledger entries", Value: fmt.Sprintf("%d", st.LedgerEntries), Inline: true},
			{Name: "⌛ Uptime", Value: st.Uptime.Truncate(time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "System monitor · " + now.Format("15:04"),
		},
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// SystemInfoHandler serves /bot-status.
func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	utils.SendEmbedResponse(s, i, false, statusEmbed(collectStats(s, b, i.GuildID), time.Now()))
}
