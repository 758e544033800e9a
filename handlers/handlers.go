package handlers

import (
	"log/slog"
	"time"

	"modbot/bot"
	"modbot/handlers/admin"
	"modbot/handlers/docket"
	"modbot/handlers/emojinick"
	"modbot/handlers/giffilter"
	"modbot/handlers/nickhistory"
	"modbot/handlers/troll"
	"modbot/handlers/unboop"
	"modbot/handlers/vcban"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// unbanRate is the minimum gap between two unbans.
const unbanRate = time.Second

type features struct {
	listener  *vcban.Listener
	commander *vcban.Commander
	dockets   *docket.Service
	nicks     *emojinick.Service
	gifs      *giffilter.Filter
	unbooper  *unboop.Unbooper
	trolls    *troll.Troll
}

func Register(b *bot.Bot) {
	s := b.Session
	rec := b.Recorder()
	f := features{
		listener: vcban.NewListener(b.Restrictions, s, rec, func(userID string) bool {
			return b.GetConfig().IsOwner(userID)
		}),
		commander: vcban.NewCommander(b.Restrictions, s, rec, b.GetConfig),
		dockets:   docket.NewService(s, rec, b.GetConfig, docket.RoleNameFromState(s)),
		nicks:     emojinick.NewService(s, rec, b.GetConfig),
		gifs:      giffilter.New(s, rec, b.GetConfig),
		unbooper:  unboop.New(s, rec, b.GetConfig, rate.NewLimiter(rate.Every(unbanRate), 1)),
		trolls:    troll.New(s, b.GetConfig),
	}
	b.CommandHandlers = commandHandlers(b, f)
	b.TextCommands = textCommands(f)
	addHandlers(b, f)
}

func commandHandlers(b *bot.Bot, f features) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"vcban":         f.commander.HandleSlash,
		"vcunban":       f.commander.HandleReleaseSlash,
		"assign_docket": f.dockets.HandleAssign,
		"remove_docket": f.dockets.HandleRemove,
		"audit":         f.dockets.HandleAudit,
		"setemoji":      f.nicks.HandleSet,
		"rmemoji":       f.nicks.HandleRemove,
		"mod_nick":      nickhistory.HandleHistory,
		"unboop":        f.unbooper.HandleSlash,
		"modlog": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleModLog(s, i, b)
		},
		"bot-status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
		"bot-reload": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleReloadConfig(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot, f features) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("logged in", "user", s.State.User.Username, "guilds", len(r.Guilds))
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		f.gifs.OnMessageCreate(s, m)
		f.trolls.OnMessageCreate(s, m)
		dispatchText(s, m, b)
	})
	b.Session.AddHandler(f.listener.OnVoiceStateUpdate)
	b.Session.AddHandler(f.nicks.OnMemberUpdate)
}
