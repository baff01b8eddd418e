package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/chat"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/config"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/logger"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

const pollTimeoutSeconds = 30

const helpText = `Доступные команды:
/note_add <текст> - Добавить заметку
/note_list - Показать все заметки
/note_find <запрос> - Найти заметку
/note_edit <id> <новый текст> - Изменить заметку
/note_del <id> - Удалить заметку
/note_count - Показать количество заметок
/note_export - Экспортировать заметки в файл
/note_stats - Статистика активности за неделю
/ai <вопрос> - Спросить ИИ в выбранном образе
/models - Выбрать модель
/model - Показать активную модель
/personas - Выбрать образ
/persona - Показать текущий образ`

// Bot is the command dispatcher: it maps Telegram slash-commands onto
// the note store and the chat pipeline and renders the results.
type Bot struct {
	api      *tgbotapi.BotAPI
	store    *storage.Store
	chat     *chat.Service // nil when no OpenRouter credential is configured
	telegram config.TelegramConfig
	maxNotes int
	// defaultPersona is the fallback persona id used when a user has no
	// assignment yet.
	defaultPersona int64
	log            *logger.Logger
}

// New connects to the Telegram Bot API. chatSvc may be nil; the /ai
// command then reports the feature as unavailable instead of failing.
func New(cfg *config.Config, store *storage.Store, chatSvc *chat.Service, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Bot{
		api:            api,
		store:          store,
		chat:           chatSvc,
		telegram:       cfg.Telegram,
		maxNotes:       cfg.Notes.MaxPerUser,
		defaultPersona: cfg.Chat.DefaultPersonaID,
		log:            log,
	}, nil
}

// Run drives the long-polling loop until ctx is cancelled. Every update
// is handled in its own goroutine so a slow completion call cannot stall
// polling for other users.
func (b *Bot) Run(ctx context.Context) error {
	b.log.WithField("username", b.api.Self.UserName).Info("telegram bot connected")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	log := b.log.WithUpdateID()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic in update handler: %v", r)
		}
	}()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil || !msg.IsCommand() {
		return
	}

	log = log.WithField("user_id", msg.From.ID).WithField("command", msg.Command())
	log.Debug("dispatching command")

	switch msg.Command() {
	case "start":
		b.reply(msg, "Привет! Я бот для заметок с ИИ-собеседником. Используй /help для списка команд.")
	case "help":
		b.reply(msg, helpText)
	case "about":
		b.reply(msg, "Бот для заметок и общения с языковыми моделями через OpenRouter.\nАвтор: Базлов Владимир Андреевич")
	case "note_add":
		b.handleNoteAdd(ctx, msg)
	case "note_list":
		b.handleNoteList(ctx, msg)
	case "note_find":
		b.handleNoteFind(ctx, msg)
	case "note_edit":
		b.handleNoteEdit(ctx, msg)
	case "note_del":
		b.handleNoteDel(ctx, msg)
	case "note_count":
		b.handleNoteCount(ctx, msg)
	case "note_export":
		b.handleNoteExport(ctx, msg)
	case "note_stats":
		b.handleNoteStats(ctx, msg)
	case "ai":
		b.handleAI(ctx, msg)
	case "models":
		b.handleModels(ctx, msg)
	case "model":
		b.handleActiveModel(ctx, msg)
	case "model_add":
		b.handleModelAdd(ctx, msg)
	case "personas":
		b.handlePersonas(ctx, msg)
	case "persona":
		b.handlePersona(ctx, msg)
	case "persona_rename":
		b.handlePersonaRename(ctx, msg)
	default:
		b.reply(msg, "Неизвестная команда. Используй /help.")
	}
}

// reply answers in the same chat, splitting texts that exceed Telegram's
// message size limit.
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	for _, chunk := range splitMessage(text, messageLimit) {
		out := tgbotapi.NewMessage(msg.Chat.ID, chunk)
		out.ReplyToMessageID = msg.MessageID
		if _, err := b.api.Send(out); err != nil {
			b.log.WithUserID(msg.From.ID).Errorf("send reply: %v", err)
			return
		}
	}
}

func (b *Bot) send(chatID int64, text string) {
	for _, chunk := range splitMessage(text, messageLimit) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			b.log.Errorf("send message: %v", err)
			return
		}
	}
}
