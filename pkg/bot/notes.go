package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

func (b *Bot) handleNoteAdd(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	count, err := b.store.CountNotes(ctx, userID)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if count >= b.maxNotes {
		b.reply(msg, fmt.Sprintf("Ошибка: Превышен лимит в %d заметок. Удалите некоторые заметки перед добавлением новых.", b.maxNotes))
		return
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.reply(msg, "Ошибка: Укажите текст заметки.")
		return
	}

	id, err := b.store.AddNote(ctx, userID, text)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("Заметка #%d добавлена: %s", id, text))
}

func (b *Bot) handleNoteList(ctx context.Context, msg *tgbotapi.Message) {
	notes, err := b.store.ListNotes(ctx, msg.From.ID)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if len(notes) == 0 {
		b.reply(msg, "Заметок пока нет.")
		return
	}
	b.reply(msg, "Ваши заметки:\n"+formatNotes(notes))
}

func (b *Bot) handleNoteFind(ctx context.Context, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		b.reply(msg, "Ошибка: Укажите поисковый запрос.")
		return
	}

	notes, err := b.store.FindNotes(ctx, msg.From.ID, query)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if len(notes) == 0 {
		b.reply(msg, "Заметки не найдены.")
		return
	}
	b.reply(msg, "Найденные заметки:\n"+formatNotes(notes))
}

func (b *Bot) handleNoteEdit(ctx context.Context, msg *tgbotapi.Message) {
	parts := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.reply(msg, "Ошибка: Используйте /note_edit <id> <новый текст>")
		return
	}

	noteID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.reply(msg, "Ошибка: ID должен быть числом.")
		return
	}
	newText := parts[1]

	ok, err := b.store.UpdateNote(ctx, msg.From.ID, noteID, newText)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if !ok {
		b.reply(msg, fmt.Sprintf("Ошибка: Заметка #%d не найдена или у вас нет прав для её изменения.", noteID))
		return
	}
	b.reply(msg, fmt.Sprintf("Заметка #%d изменена на: %s", noteID, newText))
}

func (b *Bot) handleNoteDel(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		b.reply(msg, "Ошибка: Укажите ID заметки для удаления.")
		return
	}

	noteID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.reply(msg, "Ошибка: ID должен быть числом.")
		return
	}

	ok, err := b.store.DeleteNote(ctx, msg.From.ID, noteID)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if !ok {
		b.reply(msg, fmt.Sprintf("Ошибка: Заметка #%d не найдена или у вас нет прав для её удаления.", noteID))
		return
	}
	b.reply(msg, fmt.Sprintf("Заметка #%d удалена.", noteID))
}

func (b *Bot) handleNoteCount(ctx context.Context, msg *tgbotapi.Message) {
	count, err := b.store.CountNotes(ctx, msg.From.ID)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("У вас %d заметок. Осталось места для %d заметок.", count, b.maxNotes-count))
}

func (b *Bot) handleNoteExport(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	notes, err := b.store.ListNotes(ctx, userID)
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	if len(notes) == 0 {
		b.reply(msg, "Нет заметок для экспорта.")
		return
	}

	now := time.Now()
	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("notes_%d_%s.txt", userID, now.Format("20060102_150405")),
		Bytes: renderExport(userID, notes, now),
	})
	doc.Caption = "Ваши экспортированные заметки"
	if _, err := b.api.Send(doc); err != nil {
		b.log.WithUserID(userID).Errorf("send export: %v", err)
	}
}

func (b *Bot) handleNoteStats(ctx context.Context, msg *tgbotapi.Message) {
	stats, err := b.store.WeeklyStats(ctx, msg.From.ID, time.Now())
	if err != nil {
		b.replyStorageError(msg, err)
		return
	}
	b.reply(msg, "Статистика активности за неделю:\n\n"+renderChart(stats))
}

func (b *Bot) replyStorageError(msg *tgbotapi.Message, err error) {
	b.log.WithUserID(msg.From.ID).Errorf("storage: %v", err)
	b.reply(msg, "Ошибка: Не удалось обратиться к базе заметок. Попробуйте позже.")
}

func formatNotes(notes []storage.Note) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("%d: %s", n.ID, n.Text))
	}
	return strings.Join(lines, "\n")
}

// renderExport builds the plain-text export document for one user.
func renderExport(userID int64, notes []storage.Note, now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Экспорт заметок пользователя %d\n", userID)
	fmt.Fprintf(&buf, "Дата экспорта: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "Всего заметок: %d\n", len(notes))
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, n := range notes {
		fmt.Fprintf(&buf, "Заметка #%d:\n", n.ID)
		buf.WriteString(n.Text + "\n")
		buf.WriteString(strings.Repeat("-", 30) + "\n")
	}
	return buf.Bytes()
}
