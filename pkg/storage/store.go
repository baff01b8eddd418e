package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the single SQLite-backed state of the bot: notes, the model
// registry, the persona catalog and per-user persona assignments.
type Store struct {
	db *sql.DB
}

// Note is one user-owned note.
type Note struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// Model is one row of the model registry. At most one row is active
// across the whole table.
type Model struct {
	ID     int64
	Key    string
	Label  string
	Active bool
}

// Persona is one entry of the character catalog.
type Persona struct {
	ID     int64
	Name   string
	Prompt string
}

// PersonaSummary is a listing row; the prompt text is withheld.
type PersonaSummary struct {
	ID   int64
	Name string
}

// DayCount is one bucket of the weekly activity stats.
type DayCount struct {
	Day   time.Time
	Count int
}

// Open creates/opens the bot database at path and applies the schema and
// seed data.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single-process bot. One shared connection avoids writer lock
	// contention with SQLite under concurrent update handlers, and makes
	// every BeginTx an immediate serialization point.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`PRAGMA foreign_keys=ON;`,
		`CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS notes_user_idx ON notes(user_id, id);`,
		`CREATE TABLE IF NOT EXISTS models (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 0
		);`,
		// The constraint of record for the single-active invariant: only
		// one row may carry active=1 at any point.
		`CREATE UNIQUE INDEX IF NOT EXISTS models_single_active ON models(active) WHERE active = 1;`,
		`CREATE TABLE IF NOT EXISTS personas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			prompt TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS user_personas (
			user_id INTEGER PRIMARY KEY,
			persona_id INTEGER NOT NULL REFERENCES personas(id)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return s.seed()
}

var seedModels = []struct {
	key, label string
}{
	{"deepseek/deepseek-chat-v3-0324:free", "DeepSeek V3"},
	{"meta-llama/llama-3.3-70b-instruct:free", "Llama 3.3 70B"},
	{"qwen/qwen-2.5-72b-instruct:free", "Qwen 2.5 72B"},
}

var seedPersonas = []struct {
	name, prompt string
}{
	{"Магистр Йода", "Ты говоришь, как магистр Йода из «Звёздных войн»: переставляешь слова в предложении, мудр и немногословен, любишь притчи о терпении и Силе."},
	{"Пират", "Ты — старый морской пират. Говоришь грубовато, вставляешь морские словечки, «Йо-хо-хо» и обращение «юнга», любую тему объясняешь через море и абордаж."},
	{"Шерлок Холмс", "Ты — Шерлок Холмс. Говоришь точно и наблюдательно, строишь цепочки дедукции вслух, слегка высокомерен и обращаешься к собеседнику «мой дорогой друг»."},
}

// seed populates empty catalogs on first open. The first seeded model
// becomes active.
func (s *Store) seed() error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var modelCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM models`).Scan(&modelCount); err != nil {
		return fmt.Errorf("count models: %w", err)
	}
	if modelCount == 0 {
		for i, m := range seedModels {
			active := 0
			if i == 0 {
				active = 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO models(key, label, active) VALUES(?, ?, ?)`,
				m.key, m.label, active); err != nil {
				return fmt.Errorf("seed model %s: %w", m.key, err)
			}
		}
	}

	var personaCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM personas`).Scan(&personaCount); err != nil {
		return fmt.Errorf("count personas: %w", err)
	}
	if personaCount == 0 {
		for _, p := range seedPersonas {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO personas(name, prompt) VALUES(?, ?)`,
				p.name, p.prompt); err != nil {
				return fmt.Errorf("seed persona %s: %w", p.name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
