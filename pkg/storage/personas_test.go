package storage

import (
	"context"
	"errors"
	"testing"
)

func clearPersonas(t *testing.T, s *Store) {
	t.Helper()
	if _, err := s.db.Exec(`DELETE FROM user_personas`); err != nil {
		t.Fatalf("clear assignments: %v", err)
	}
	if _, err := s.db.Exec(`DELETE FROM personas`); err != nil {
		t.Fatalf("clear personas: %v", err)
	}
}

func addPersona(t *testing.T, s *Store, name, prompt string) int64 {
	t.Helper()
	res, err := s.db.Exec(`INSERT INTO personas(name, prompt) VALUES(?, ?)`, name, prompt)
	if err != nil {
		t.Fatalf("insert persona: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func TestGetUserPersona_FallbackChain(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clearPersonas(t, store)

	defaultID := addPersona(t, store, "Рассказчик", "Говоришь размеренно.")
	otherID := addPersona(t, store, "Ворчун", "Вечно всем недоволен.")

	// no assignment: the default persona wins
	p, err := store.GetUserPersona(ctx, 42, defaultID)
	if err != nil {
		t.Fatalf("get user persona: %v", err)
	}
	if p.ID != defaultID {
		t.Fatalf("expected default persona %d, got %d", defaultID, p.ID)
	}

	// missing default: lowest id wins
	p, err = store.GetUserPersona(ctx, 42, 99999)
	if err != nil {
		t.Fatalf("get user persona: %v", err)
	}
	if p.ID != defaultID {
		t.Fatalf("expected lowest-id persona %d, got %d", defaultID, p.ID)
	}

	// explicit assignment beats everything
	if _, err := store.SetUserPersona(ctx, 42, otherID); err != nil {
		t.Fatalf("set user persona: %v", err)
	}
	p, err = store.GetUserPersona(ctx, 42, defaultID)
	if err != nil {
		t.Fatalf("get user persona: %v", err)
	}
	if p.ID != otherID {
		t.Fatalf("expected assigned persona %d, got %d", otherID, p.ID)
	}
	if p.Prompt == "" {
		t.Fatalf("resolved persona must carry its prompt")
	}
}

func TestGetUserPersona_EmptyCatalog(t *testing.T) {
	store := newTestStore(t)
	clearPersonas(t, store)

	if _, err := store.GetUserPersona(context.Background(), 42, 1); !errors.Is(err, ErrNoPersonas) {
		t.Fatalf("expected ErrNoPersonas, got %v", err)
	}
}

func TestSetUserPersona_UpsertIdempotence(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clearPersonas(t, store)

	a := addPersona(t, store, "А", "a")
	b := addPersona(t, store, "Б", "b")

	for i := 0; i < 2; i++ {
		if _, err := store.SetUserPersona(ctx, 7, b); err != nil {
			t.Fatalf("set persona (attempt %d): %v", i+1, err)
		}
	}
	if _, err := store.SetUserPersona(ctx, 7, a); err != nil {
		t.Fatalf("overwrite persona: %v", err)
	}

	var rows int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM user_personas WHERE user_id = 7`).Scan(&rows); err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected one assignment row, got %d", rows)
	}

	p, err := store.GetUserPersona(ctx, 7, b)
	if err != nil {
		t.Fatalf("get user persona: %v", err)
	}
	if p.ID != a {
		t.Fatalf("expected latest assignment %d, got %d", a, p.ID)
	}
}

func TestSetUserPersona_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.SetUserPersona(ctx, 7, 99999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var rows int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM user_personas WHERE user_id = 7`).Scan(&rows); err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if rows != 0 {
		t.Fatalf("rejected assignment must not be written, got %d rows", rows)
	}
}

func TestListPersonas_WithholdsPrompt(t *testing.T) {
	store := newTestStore(t)

	personas, err := store.ListPersonas(context.Background())
	if err != nil {
		t.Fatalf("list personas: %v", err)
	}
	if len(personas) == 0 {
		t.Fatalf("expected seeded personas")
	}
	for i := 1; i < len(personas); i++ {
		if personas[i-1].ID >= personas[i].ID {
			t.Fatalf("expected ascending ids: %+v", personas)
		}
	}
}

func TestRenamePersona(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clearPersonas(t, store)

	id := addPersona(t, store, "Старик", "x")

	ok, err := store.RenamePersona(ctx, id, "Мудрец")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !ok {
		t.Fatalf("expected rename to affect a row")
	}

	p, err := store.GetPersona(ctx, id)
	if err != nil {
		t.Fatalf("get persona: %v", err)
	}
	if p.Name != "Мудрец" {
		t.Fatalf("expected renamed persona, got %q", p.Name)
	}

	ok, err = store.RenamePersona(ctx, 99999, "Никто")
	if err != nil {
		t.Fatalf("rename missing: %v", err)
	}
	if ok {
		t.Fatalf("rename of a missing id must report false")
	}
}
