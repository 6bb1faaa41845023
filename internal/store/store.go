// Package store persists users and employees with GORM. Lookups that find
// nothing return common.ErrNotFound and unique-index conflicts on email
// return common.ErrDuplicateEmail.
package store

import (
	"errors"
	"fmt"
	"strings"

	"employee-management-system/internal/common"

	"gorm.io/gorm"
)

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	case isDuplicateKey(err):
		return common.ErrDuplicateEmail
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// drivers that do not implement gorm's error translation
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// escapeLike escapes LIKE wildcards so s matches literally with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
