package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/chat"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/providers"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

func newChatCommand() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the persona pipeline from the terminal",
		Long:  "Run an interactive local session against the same storage and completion client the bot uses, without Telegram credentials.",
		Example: strings.Join([]string{
			"  tgbot chat",
			"  tgbot chat --user 42",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(userID)
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "User id for persona resolution")

	return cmd
}

func runChat(userID int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	client, err := providers.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.APIBase)
	if err != nil {
		return fmt.Errorf("completion client: %w", err)
	}

	svc := chat.NewService(store, client, chat.Options{
		Temperature:      cfg.Chat.Temperature,
		MaxTokens:        cfg.Chat.MaxTokens,
		DefaultPersonaID: cfg.Chat.DefaultPersonaID,
	})

	persona, err := store.GetUserPersona(context.Background(), userID, cfg.Chat.DefaultPersonaID)
	if err != nil {
		return fmt.Errorf("resolve persona: %w", err)
	}
	fmt.Printf("%s: интерактивный режим, образ «%s» (Ctrl+C для выхода)\n\n", appName, persona.Name)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Вы: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".tgbot_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nПока!")
				return nil
			}
			fmt.Printf("Ошибка ввода: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Пока!")
			return nil
		}

		reply, err := svc.Ask(context.Background(), userID, input)
		if err != nil {
			fmt.Printf("Ошибка: %v\n", err)
			continue
		}
		fmt.Printf("\n%s · %s · %d мс:\n%s\n\n", reply.Persona, reply.ModelLabel, reply.LatencyMS, reply.Text)
	}
}
