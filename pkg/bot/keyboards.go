package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

const (
	callbackModelPrefix   = "model:"
	callbackPersonaPrefix = "persona:"
)

func (b *Bot) handleModels(ctx context.Context, msg *tgbotapi.Message) {
	models, err := b.store.ListModels(ctx)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if len(models) == 0 {
		b.reply(msg, "Ошибка: В реестре нет ни одной модели.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models))
	for _, m := range models {
		label := m.Label
		if m.Active {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackModelPrefix+strconv.FormatInt(m.ID, 10)),
		))
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, "Выберите модель:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(out); err != nil {
		b.log.Errorf("send models keyboard: %v", err)
	}
}

func (b *Bot) handleActiveModel(ctx context.Context, msg *tgbotapi.Message) {
	model, err := b.store.GetActiveModel(ctx)
	if errors.Is(err, storage.ErrNoModels) {
		b.reply(msg, "Ошибка: В реестре нет ни одной модели.")
		return
	}
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("Активная модель: %s (%s)", model.Label, model.Key))
}

// handleModelAdd is an administrative upsert: /model_add <key> <label>.
func (b *Bot) handleModelAdd(ctx context.Context, msg *tgbotapi.Message) {
	if !b.telegram.IsAdmin(msg.From.ID) {
		b.reply(msg, "Ошибка: Команда доступна только администратору.")
		return
	}

	parts := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.reply(msg, "Ошибка: Используйте /model_add <key> <название>")
		return
	}

	id, err := b.store.AddOrUpdateModel(ctx, parts[0], strings.TrimSpace(parts[1]), false)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("Модель #%d сохранена: %s", id, parts[0]))
}

func (b *Bot) handlePersonas(ctx context.Context, msg *tgbotapi.Message) {
	personas, err := b.store.ListPersonas(ctx)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if len(personas) == 0 {
		b.reply(msg, "Ошибка: Каталог образов пуст.")
		return
	}

	current, err := b.store.GetUserPersona(ctx, msg.From.ID, b.defaultPersona)
	if err != nil && !errors.Is(err, storage.ErrNoPersonas) {
		b.replyStorageError(msg, err)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(personas))
	for _, p := range personas {
		label := p.Name
		if p.ID == current.ID {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackPersonaPrefix+strconv.FormatInt(p.ID, 10)),
		))
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, "Выберите образ собеседника:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(out); err != nil {
		b.log.Errorf("send personas keyboard: %v", err)
	}
}

func (b *Bot) handlePersona(ctx context.Context, msg *tgbotapi.Message) {
	persona, err := b.store.GetUserPersona(ctx, msg.From.ID, b.defaultPersona)
	if errors.Is(err, storage.ErrNoPersonas) {
		b.reply(msg, "Ошибка: Каталог образов пуст.")
		return
	}
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("Текущий образ: %s", persona.Name))
}

// handlePersonaRename is administrative: /persona_rename <id> <новое имя>.
func (b *Bot) handlePersonaRename(ctx context.Context, msg *tgbotapi.Message) {
	if !b.telegram.IsAdmin(msg.From.ID) {
		b.reply(msg, "Ошибка: Команда доступна только администратору.")
		return
	}

	parts := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.reply(msg, "Ошибка: Используйте /persona_rename <id> <новое имя>")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.reply(msg, "Ошибка: ID должен быть числом.")
		return
	}

	ok, err := b.store.RenamePersona(ctx, id, strings.TrimSpace(parts[1]))
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if !ok {
		b.reply(msg, fmt.Sprintf("Ошибка: Образ #%d не найден.", id))
		return
	}
	b.reply(msg, fmt.Sprintf("Образ #%d переименован в: %s", id, strings.TrimSpace(parts[1])))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}

	var notice string
	switch {
	case strings.HasPrefix(cq.Data, callbackModelPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, callbackModelPrefix), 10, 64)
		if err != nil {
			return
		}
		model, err := b.store.SetActiveModel(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			notice = "Модель не найдена."
		} else if err != nil {
			b.log.Errorf("set active model: %v", err)
			notice = "Не удалось выбрать модель."
		} else {
			notice = fmt.Sprintf("Активная модель: %s", model.Label)
		}

	case strings.HasPrefix(cq.Data, callbackPersonaPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, callbackPersonaPrefix), 10, 64)
		if err != nil {
			return
		}
		persona, err := b.store.SetUserPersona(ctx, cq.From.ID, id)
		if errors.Is(err, storage.ErrNotFound) {
			notice = "Образ не найден."
		} else if err != nil {
			b.log.Errorf("set user persona: %v", err)
			notice = "Не удалось выбрать образ."
		} else {
			notice = fmt.Sprintf("Текущий образ: %s", persona.Name)
		}

	default:
		return
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, notice)); err != nil {
		b.log.Errorf("answer callback: %v", err)
	}
	b.send(cq.Message.Chat.ID, notice)
}
