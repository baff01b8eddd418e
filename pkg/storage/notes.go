package storage

import (
	"context"
	"fmt"
	"time"
)

const sqliteTimestampLayout = "2006-01-02 15:04:05"

// AddNote inserts a note and returns its id.
func (s *Store) AddNote(ctx context.Context, userID int64, text string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes(user_id, text) VALUES(?, ?)`, userID, text)
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("note id: %w", err)
	}
	return id, nil
}

// ListNotes returns all notes of one user ordered by id.
func (s *Store) ListNotes(ctx context.Context, userID int64) ([]Note, error) {
	return s.queryNotes(ctx,
		`SELECT id, user_id, text, created_at FROM notes WHERE user_id = ? ORDER BY id`, userID)
}

// FindNotes returns the user's notes whose text contains query.
func (s *Store) FindNotes(ctx context.Context, userID int64, query string) ([]Note, error) {
	return s.queryNotes(ctx,
		`SELECT id, user_id, text, created_at FROM notes WHERE user_id = ? AND text LIKE ? ORDER BY id`,
		userID, "%"+query+"%")
}

// UpdateNote replaces the text of the user's note. The boolean reports
// whether a matching note existed.
func (s *Store) UpdateNote(ctx context.Context, userID, noteID int64, text string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET text = ? WHERE id = ? AND user_id = ?`, text, noteID, userID)
	if err != nil {
		return false, fmt.Errorf("update note: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteNote removes the user's note. The boolean reports whether a
// matching note existed.
func (s *Store) DeleteNote(ctx context.Context, userID, noteID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CountNotes returns how many notes the user has.
func (s *Store) CountNotes(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

// WeeklyStats returns per-day note counts for the 7 days ending at now,
// oldest first. Days without notes are present with a zero count.
func (s *Store) WeeklyStats(ctx context.Context, userID int64, now time.Time) ([]DayCount, error) {
	now = now.UTC()
	weekAgo := now.AddDate(0, 0, -6).Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, `
SELECT DATE(created_at) AS day, COUNT(*)
FROM notes
WHERE user_id = ? AND created_at >= ?
GROUP BY DATE(created_at)`, userID, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("weekly stats: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		counts[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats rows: %w", err)
	}

	stats := make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		parsed, _ := time.ParseInLocation("2006-01-02", key, time.UTC)
		stats = append(stats, DayCount{Day: parsed, Count: counts[key]})
	}
	return stats, nil
}

func (s *Store) queryNotes(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		// CURRENT_TIMESTAMP is stored as UTC text.
		if ts, err := time.ParseInLocation(sqliteTimestampLayout, createdAt, time.UTC); err == nil {
			n.CreatedAt = ts
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notes rows: %w", err)
	}
	return notes, nil
}
