package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "academics/internal/errors"
)

// DefaultTimeout bounds every store call when none is configured.
const DefaultTimeout = 3 * time.Second

// store is embedded by every repository. It bounds each call with a timeout
// and translates driver errors into domain errors.
type store struct {
	db      *gorm.DB
	timeout time.Duration
}

func newStore(db *gorm.DB, timeout time.Duration) store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return store{db: db, timeout: timeout}
}

func (s store) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// translate maps gorm and driver errors onto the domain taxonomy.
// Anything not recognised is treated as an infrastructure failure.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, errDuplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", op, errForeignKey)
	case isDomainError(err):
		return err
	default:
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}
}

var (
	errDuplicate  = errors.New("duplicate key")
	errForeignKey = errors.New("foreign key violated")
)

// IsDuplicate reports a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, errDuplicate)
}

// IsForeignKey reports a foreign key violation.
func IsForeignKey(err error) bool {
	return errors.Is(err, errForeignKey)
}

// isDomainError lets errors returned from inside transactions pass through untouched.
func isDomainError(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrInvalidReference,
		apperrors.ErrStudentNotEnrolled,
		apperrors.ErrStoreUnavailable,
		errDuplicate,
		errForeignKey,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
