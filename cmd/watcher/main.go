package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/okazdal/mailtm/internal/archive"
	"github.com/okazdal/mailtm/internal/config"
	"github.com/okazdal/mailtm/internal/mailtm"
	"github.com/okazdal/mailtm/internal/notify"
	"github.com/okazdal/mailtm/internal/parser"
	"github.com/okazdal/mailtm/internal/server"
	"github.com/okazdal/mailtm/pkg/models"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting mail.tm watcher")

	ctx := context.Background()

	// Create API client; derive a token when only address+password was given
	client := mailtm.NewClient(mailtm.Config{BaseURL: cfg.BaseURL})
	auth := server.Auth{
		AccountID: cfg.AccountID,
		Token:     cfg.AccountToken,
		Address:   cfg.Address,
		Password:  cfg.Password,
	}
	if cfg.HasToken() {
		client.SetToken(models.Token{ID: cfg.AccountID, Token: cfg.AccountToken})
	} else {
		token, err := client.GetToken(ctx, cfg.Address, cfg.Password)
		if err != nil {
			logger.Error("failed to derive account token", "error", err)
			os.Exit(1)
		}
		client.SetToken(*token)
		auth.AccountID = token.ID
		auth.Token = token.Token
		logger.Info("derived account token", "account_id", token.ID)
	}

	// Optional message archive
	var store *archive.Store
	if cfg.ArchiveEnabled() {
		store, err = archive.New(cfg.DatabasePath)
		if err != nil {
			logger.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			logger.Error("failed to run archive migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("message archive enabled", "path", cfg.DatabasePath)
	}

	// Optional Telegram forwarding
	var tg *notify.Telegram
	if cfg.TelegramEnabled() {
		tg, err = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Error("failed to create telegram notifier", "error", err)
			os.Exit(1)
		}
		logger.Info("telegram forwarding enabled", "chat_id", cfg.TelegramChatID)
	}

	htmlParser := parser.NewHTMLParser()
	codeDetector := parser.NewCodeDetector()

	srv := server.New(client, server.Options{
		Auth:           auth,
		PollInterval:   cfg.PollInterval,
		Banner:         cfg.Banner,
		Logger:         logger,
		SuppressErrors: cfg.SuppressErrors,
	})

	srv.OnNewMessage(func(ctx context.Context, ev *server.NewMessage) error {
		msg := ev.Message

		// List items carry no body; fetch the full message for text
		if msg.Text == "" && len(msg.HTML) == 0 {
			if full, err := ev.Client().GetMessage(ctx, msg.ID); err == nil {
				msg = *full
			}
		}

		body := msg.Text
		if body == "" && len(msg.HTML) > 0 {
			if text, err := htmlParser.Parse(strings.Join(msg.HTML, "\n")); err == nil {
				body = text
			}
		}

		codes := codeDetector.DetectCodes(body)
		logger.Info("new message",
			"from", msg.FromAddress(),
			"subject", msg.Subject,
			"codes", len(codes),
			"preview", parser.Preview(body, 120),
		)

		if store != nil {
			if err := store.Save(ctx, msg, codes); err != nil && !errors.Is(err, archive.ErrAlreadyArchived) {
				logger.Error("failed to archive message", "message_id", msg.ID, "error", err)
			}
		}
		if tg != nil {
			if err := tg.NewMessage(ctx, msg, body, codes); err != nil {
				logger.Error("failed to forward message", "message_id", msg.ID, "error", err)
			}
		}
		return nil
	})

	srv.OnDomainChange(func(ctx context.Context, ev *server.DomainChange) error {
		logger.Warn("domain changed", "domain", ev.NewDomain.Domain, "active", ev.NewDomain.IsActive)
		return nil
	})

	// Setup graceful shutdown
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		srv.Stop()
		cancel()
	}()

	logger.Info("watcher is running, press Ctrl+C to stop")
	if err := srv.Run(runCtx); err != nil {
		logger.Error("watcher exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("watcher stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
			NoColor:    false,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
