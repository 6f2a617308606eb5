package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hard-gainer/pollwatch/internal/config"
	"github.com/hard-gainer/pollwatch/internal/db"
	"github.com/hard-gainer/pollwatch/internal/logger"
	"github.com/hard-gainer/pollwatch/internal/mattermost"
	"github.com/hard-gainer/pollwatch/internal/notification"
	"github.com/hard-gainer/pollwatch/internal/piazza"
	"github.com/hard-gainer/pollwatch/internal/service"
	"github.com/tarantool/go-tarantool"
)

func main() {
	os.Exit(run())
}

// run wires the bot and blocks until it stops, returning the exit code
func run() int {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.InitLogger("info")
		slog.Error("Failed to load config", "error", err)
		return 1
	}

	logger.InitLogger(cfg.LogLevel)
	slog.Info("Starting Piazza poll bot...")
	slog.Info("Config loaded",
		"class_id", cfg.ClassID,
		"email", cfg.Email,
		"base_url", cfg.BaseURL,
		"answer_index", cfg.PollAnswerIndex,
		"check_interval", cfg.CheckInterval(),
		"tarantool", cfg.TarantoolEnabled(),
		"mattermost", cfg.MattermostEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	answered, err := openAnsweredStore(cfg)
	if err != nil {
		slog.Error("All connection attempts to Tarantool failed", "error", err)
		return 1
	}
	defer func() {
		if err := answered.Close(); err != nil {
			slog.Error("Error closing answered store", "error", err)
		}
	}()

	if count, err := answered.Len(ctx); err != nil {
		slog.Warn("Could not count answered polls", "error", err)
	} else {
		slog.Info("Answered polls restored", "count", count)
	}

	client, err := piazza.NewClient(piazza.Options{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		slog.Error("Failed to create Piazza client", "error", err)
		return 1
	}

	if err := client.Login(ctx, cfg.Email, cfg.Password); err != nil {
		slog.Error("Login failed", "error", err)
		return 1
	}

	botService := service.NewService(client.Network(cfg.ClassID), answered, service.Options{
		ClassID:         cfg.ClassID,
		PollAnswerIndex: cfg.PollAnswerIndex,
		CheckInterval:   cfg.CheckInterval(),
		FeedPageSize:    cfg.FeedPageSize,
		MaxVoteAttempts: cfg.MaxVoteAttempts,
	})

	if cfg.MattermostEnabled() {
		slog.Info("Connecting to Mattermost...")
		mmClient, err := mattermost.NewClient(cfg.MattermostConfig)
		if err != nil {
			slog.Warn("Mattermost notifications disabled", "error", err)
		} else {
			botService.SetNotifier(notification.NewChannelNotifier(mmClient, cfg.MattermostChannelID))
		}
	}

	slog.Info("Bot is now running. Press CTRL+C to exit.")

	if err := botService.Run(ctx); err != nil {
		slog.Error("Bot stopped", "error", err)
		return 1
	}

	slog.Info("Shutting down bot...")
	return 0
}

// openAnsweredStore returns the Tarantool store when configured, retrying
// the connection, and an in-memory store otherwise
func openAnsweredStore(cfg *config.Config) (db.AnsweredStore, error) {
	if !cfg.TarantoolEnabled() {
		return db.NewMemoryStore(), nil
	}

	slog.Info("Connecting to Tarantool...")
	tarantoolConfig := tarantool.Opts{
		User:          cfg.TarantoolUser,
		Pass:          cfg.TarantoolPass,
		Timeout:       5 * time.Second,
		Reconnect:     1 * time.Second,
		MaxReconnects: 5,
	}

	var store *db.TarantoolStore
	var err error

	for attempts := 1; attempts <= 3; attempts++ {
		slog.Info("Connection attempt", "attempt", attempts)

		store, err = db.NewTarantoolStore(cfg.TarantoolAddr, cfg.ClassID, tarantoolConfig)
		if err == nil {
			break
		}

		slog.Error("Failed to connect to Tarantool", "error", err, "attempt", attempts)

		if attempts < 3 {
			slog.Info("Retrying in 2 seconds...")
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		return nil, err
	}

	slog.Info("Connected to Tarantool successfully")
	return store, nil
}
