package storage

import "errors"

var (
	// ErrNotFound is returned when a referenced note, model or persona id
	// does not exist. The operation makes no partial change.
	ErrNotFound = errors.New("not found")

	// ErrNoModels means the model registry has zero rows, so no active
	// model can be resolved or promoted.
	ErrNoModels = errors.New("model registry is empty")

	// ErrNoPersonas means the persona catalog has zero rows, so the
	// fallback chain has nothing to land on.
	ErrNoPersonas = errors.New("persona catalog is empty")
)
