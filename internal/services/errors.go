package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrWrongPassword  = errors.New("wrong confirmation password")
	ErrStaleDraft     = errors.New("running order was saved by another session")
	ErrStatusConflict = errors.New("status was changed by another request")
)

// notFound translates gorm's missing-row error into ErrNotFound and passes
// anything else through.
func notFound(err error, what string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
