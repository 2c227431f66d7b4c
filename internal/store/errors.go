package store

import (
	"errors"
	"fmt"

	"port-ops-api-server/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("record conflicts with existing data")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrInvalidLocation = models.ErrInvalidLocation
)

// translate maps gorm errors onto the package's sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
