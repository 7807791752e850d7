package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"grantbot/internal/annotation"
	"grantbot/internal/cli"
	"grantbot/internal/config"
	"grantbot/internal/research"
	"grantbot/internal/session"
	"grantbot/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel)

	cli.SetVersionInfo(version, commit)

	deps := cli.Deps{
		OpenStore: func() (*annotation.Store, func(), error) {
			if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return nil, nil, err
				}
			}
			st, err := storage.NewSQLite(cfg.DatabasePath)
			if err != nil {
				return nil, nil, err
			}
			return annotation.NewStore(st, log), func() { _ = st.Close() }, nil
		},
		NewResearcher: func(ctx context.Context) (session.Researcher, error) {
			m, err := research.NewModel(ctx, cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL)
			if err != nil {
				return nil, err
			}
			return research.NewClient(m, research.Options{
				NewsLimit: cfg.NewsLimit,
				Timeout:   cfg.Timeout,
			}, nil, log), nil
		},
		Log: log,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, deps, os.Stdout, os.Stderr, os.Args[1:])
	cancel()
	os.Exit(code)
}

// newLogger logs to stderr so command output stays clean. Only warnings
// and errors are shown unless LOG_LEVEL asks for more.
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
