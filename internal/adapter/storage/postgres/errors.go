package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
)

// translateError maps storage-level failures onto the application's error
// codes so callers never inspect gorm errors directly.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.E(domain.CodeConflict, "record already exists")
	}
	return err
}
