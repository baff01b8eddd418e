package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListModels returns all registry rows ordered by id.
func (s *Store) ListModels(ctx context.Context) ([]Model, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, label, active FROM models ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []Model
	for rows.Next() {
		var m Model
		if err := rows.Scan(&m.ID, &m.Key, &m.Label, &m.Active); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("model rows: %w", err)
	}
	return models, nil
}

// GetActiveModel returns the active model. When no row is flagged, the
// lowest-id row is promoted and persisted in the same transaction, so a
// repeat call returns the same row without re-selecting. Returns
// ErrNoModels for an empty registry.
func (s *Store) GetActiveModel(ctx context.Context) (Model, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Model{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var m Model
	err = tx.QueryRowContext(ctx,
		`SELECT id, key, label, active FROM models WHERE active = 1`).
		Scan(&m.ID, &m.Key, &m.Label, &m.Active)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx,
			`SELECT id, key, label, active FROM models ORDER BY id LIMIT 1`).
			Scan(&m.ID, &m.Key, &m.Label, &m.Active)
		if errors.Is(err, sql.ErrNoRows) {
			return Model{}, ErrNoModels
		}
		if err != nil {
			return Model{}, fmt.Errorf("select fallback model: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE models SET active = 1 WHERE id = ?`, m.ID); err != nil {
			return Model{}, fmt.Errorf("promote model %d: %w", m.ID, err)
		}
		m.Active = true
	} else if err != nil {
		return Model{}, fmt.Errorf("select active model: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Model{}, fmt.Errorf("commit tx: %w", err)
	}
	return m, nil
}

// SetActiveModel makes id the only active model. Returns ErrNotFound if
// the id is absent. The deactivate and activate steps run in one
// transaction; the partial unique index on active=1 rules out ever
// committing two active rows.
func (s *Store) SetActiveModel(ctx context.Context, id int64) (Model, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Model{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var m Model
	err = tx.QueryRowContext(ctx,
		`SELECT id, key, label FROM models WHERE id = ?`, id).
		Scan(&m.ID, &m.Key, &m.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return Model{}, ErrNotFound
	}
	if err != nil {
		return Model{}, fmt.Errorf("select model %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE models SET active = 0 WHERE active = 1 AND id != ?`, id); err != nil {
		return Model{}, fmt.Errorf("deactivate models: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE models SET active = 1 WHERE id = ?`, id); err != nil {
		return Model{}, fmt.Errorf("activate model %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return Model{}, fmt.Errorf("commit tx: %w", err)
	}
	m.Active = true
	return m, nil
}

// AddOrUpdateModel upserts a registry row keyed on key and returns its
// id. With active=true every other row is deactivated in the same
// transaction, preserving the single-active invariant.
func (s *Store) AddOrUpdateModel(ctx context.Context, key, label string, active bool) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if active {
		if _, err := tx.ExecContext(ctx,
			`UPDATE models SET active = 0 WHERE active = 1 AND key != ?`, key); err != nil {
			return 0, fmt.Errorf("deactivate models: %w", err)
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
INSERT INTO models(key, label, active) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET label = excluded.label, active = excluded.active
RETURNING id`, key, label, active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert model %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return id, nil
}
