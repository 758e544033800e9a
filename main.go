package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"modbot/bot"
	"modbot/config"
	"modbot/handlers"
	"modbot/httpapi"
	"modbot/logger"
	"modbot/utils/database"

	"github.com/gin-gonic/gin"
	cli "github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "modbot",
		Usage: "Discord moderation bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				EnvVars: []string{"MODBOT_ENV_FILE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "per-guild moderation settings (yaml, json or toml)",
				Value:   "data/guilds.yaml",
				EnvVars: []string{"MODBOT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "sqlite file of the moderation ledger",
				Value:   "data/modbot.db",
				EnvVars: []string{"MODBOT_DB"},
			},
			&cli.StringFlag{
				Name:    "http-addr",
				Usage:   "listen address of the metrics endpoint, empty to disable",
				EnvVars: []string{"MODBOT_HTTP_ADDR"},
			},
			&cli.DurationFlag{
				Name:    "sweep-interval",
				Usage:   "how often expired voice restrictions are dropped",
				Value:   10 * time.Minute,
				EnvVars: []string{"MODBOT_SWEEP_INTERVAL"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("env-file"), cctx.String("config"))
	if err != nil {
		return err
	}

	log, closer := logger.New(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()
	slog.SetDefault(log)

	dbPath := cctx.String("db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := database.InitModActionDB(dbPath)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	b, err := bot.New(cfg, db, bot.Options{
		EnvFile:       cctx.String("env-file"),
		ConfigPath:    cctx.String("config"),
		SweepInterval: cctx.Duration("sweep-interval"),
	})
	if err != nil {
		return err
	}
	handlers.Register(b)

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := cctx.String("http-addr"); addr != "" {
		gin.SetMode(gin.ReleaseMode)
		srv := httpapi.NewServer(addr, httpapi.NewRouter(b.Restrictions).Handler())
		go func() {
			if err := srv.Serve(ctx); err != nil {
				slog.Error("http server stopped", "error", err)
			}
		}()
	}

	defer b.Close()
	return b.Run(ctx)
}
