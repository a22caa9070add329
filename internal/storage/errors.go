package storage

import "errors"

var (
	// ErrNotFound is returned when a requested pool does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a pool whose id is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrVersionConflict is returned when an update races another writer.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// CheckVersion reports whether an account at version next may replace the
// stored account at version stored.
func CheckVersion(stored, next uint64) error {
	if next == 0 || stored != next-1 {
		return ErrVersionConflict
	}
	return nil
}
