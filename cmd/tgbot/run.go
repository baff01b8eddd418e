package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/bot"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/chat"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/config"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/logger"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/providers"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Short:   "Start the Telegram bot (long polling)",
		Example: "  tgbot run\n  tgbot run --config /etc/tgbot/config.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
}

func runBot() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Telegram.Validate(); err != nil {
		return fmt.Errorf("telegram config: %w", err)
	}

	log := logger.New(appName)

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	chatSvc := buildChatService(cfg, store, log)

	b, err := bot.New(cfg, store, chatSvc, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting bot")
	return b.Run(ctx)
}

// buildChatService returns nil when the OpenRouter credential is absent:
// the bot then runs with /ai reported as unavailable instead of refusing
// to start.
func buildChatService(cfg *config.Config, store *storage.Store, log *logger.Logger) *chat.Service {
	client, err := providers.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.APIBase)
	if err != nil {
		if errors.Is(err, providers.ErrMissingAPIKey) {
			log.Warn("OPENROUTER_API_KEY is not set, /ai is disabled")
		} else {
			log.Warnf("completion client unavailable: %v", err)
		}
		return nil
	}

	return chat.NewService(store, client, chat.Options{
		Temperature:      cfg.Chat.Temperature,
		MaxTokens:        cfg.Chat.MaxTokens,
		DefaultPersonaID: cfg.Chat.DefaultPersonaID,
	})
}
