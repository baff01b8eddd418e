package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListPersonas returns the catalog ordered by id, names only.
func (s *Store) ListPersonas(ctx context.Context) ([]PersonaSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM personas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	var personas []PersonaSummary
	for rows.Next() {
		var p PersonaSummary
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persona rows: %w", err)
	}
	return personas, nil
}

// GetPersona returns one persona with its prompt, or ErrNotFound.
func (s *Store) GetPersona(ctx context.Context, id int64) (Persona, error) {
	var p Persona
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, prompt FROM personas WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return Persona{}, ErrNotFound
	}
	if err != nil {
		return Persona{}, fmt.Errorf("select persona %d: %w", id, err)
	}
	return p, nil
}

// GetUserPersona resolves the persona the user's requests are framed
// with: the assigned one, else the persona at defaultID, else the
// lowest-id persona. Returns ErrNoPersonas when the catalog is empty.
func (s *Store) GetUserPersona(ctx context.Context, userID, defaultID int64) (Persona, error) {
	var p Persona
	err := s.db.QueryRowContext(ctx, `
SELECT p.id, p.name, p.prompt
FROM user_personas up
JOIN personas p ON p.id = up.persona_id
WHERE up.user_id = ?`, userID).Scan(&p.ID, &p.Name, &p.Prompt)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Persona{}, fmt.Errorf("select user persona: %w", err)
	}

	p, err = s.GetPersona(ctx, defaultID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Persona{}, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, prompt FROM personas ORDER BY id LIMIT 1`).
		Scan(&p.ID, &p.Name, &p.Prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return Persona{}, ErrNoPersonas
	}
	if err != nil {
		return Persona{}, fmt.Errorf("select fallback persona: %w", err)
	}
	return p, nil
}

// SetUserPersona assigns personaID to the user, overwriting any previous
// assignment, and returns the resolved persona. Returns ErrNotFound if
// personaID is absent from the catalog; no assignment is written then.
func (s *Store) SetUserPersona(ctx context.Context, userID, personaID int64) (Persona, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Persona{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var p Persona
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, prompt FROM personas WHERE id = ?`, personaID).
		Scan(&p.ID, &p.Name, &p.Prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return Persona{}, ErrNotFound
	}
	if err != nil {
		return Persona{}, fmt.Errorf("select persona %d: %w", personaID, err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO user_personas(user_id, persona_id) VALUES(?, ?)
ON CONFLICT(user_id) DO UPDATE SET persona_id = excluded.persona_id`,
		userID, personaID); err != nil {
		return Persona{}, fmt.Errorf("assign persona: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Persona{}, fmt.Errorf("commit tx: %w", err)
	}
	return p, nil
}

// RenamePersona renames a catalog entry in place. The boolean reports
// whether a row was affected; a missing id is not an error here, callers
// just get false.
func (s *Store) RenamePersona(ctx context.Context, id int64, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE personas SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return false, fmt.Errorf("rename persona: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
