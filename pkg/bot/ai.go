package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/providers"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

func (b *Bot) handleAI(ctx context.Context, msg *tgbotapi.Message) {
	if b.chat == nil {
		b.reply(msg, "ИИ недоступен: не задан OPENROUTER_API_KEY.")
		return
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.reply(msg, "Ошибка: Укажите вопрос после /ai.")
		return
	}

	log := b.log.WithUserID(msg.From.ID)

	reply, err := b.chat.Ask(ctx, msg.From.ID, text)
	if err != nil {
		var apiErr *providers.APIError
		switch {
		case errors.As(err, &apiErr):
			log.Warnf("completion failed: %v", apiErr)
			b.reply(msg, apiErr.Message)
		case errors.Is(err, storage.ErrNoModels):
			b.reply(msg, "Ошибка: В реестре нет ни одной модели.")
		case errors.Is(err, storage.ErrNoPersonas):
			b.reply(msg, "Ошибка: Каталог образов пуст.")
		default:
			log.Errorf("ask: %v", err)
			b.reply(msg, "Ошибка: Не удалось получить ответ. Попробуйте позже.")
		}
		return
	}

	log.WithField("latency_ms", reply.LatencyMS).Info("completion ok")
	b.reply(msg, fmt.Sprintf("%s\n\n— %s · %s · %d мс",
		reply.Text, reply.Persona, reply.ModelLabel, reply.LatencyMS))
}
