package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"madmetro/internal/config"
	"madmetro/internal/webwatch"
)

// app carries what every command needs. It is filled in by the Before hook.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	ww     *webwatch.Client
}

func main() {
	a := &app{}

	cliApp := &cli.App{
		Name:  "madmetro",
		Usage: "Madison Metro routes, buses and arrival predictions from WebWatch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file to load before reading MADMETRO_* variables",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "WebWatch base URL (overrides MADMETRO_WEBWATCH_URL)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides MADMETRO_LOG_LEVEL)",
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.routesCommand(),
			a.pathCommand(),
			a.currentCommand(),
			a.historyCommand(),
			a.watchCommand(),
			a.serveCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "madmetro:", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(c *cli.Context) error {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return err
	}

	cfg := config.Load()
	if c.IsSet("base-url") {
		cfg.WebWatchURL = c.String("base-url")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	a.ww = webwatch.NewClient(cfg.WebWatchURL, a.logger,
		webwatch.WithFetcher(webwatch.NewHTTPFetcher(cfg.HTTPTimeout, a.logger)),
	)
	return nil
}
