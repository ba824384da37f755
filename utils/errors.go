package utils

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateErr reports whether a create/update failed on a unique index.
// Checks the translated gorm error first, then the raw driver message so the
// pre-check race window still surfaces as a conflict.
func IsDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
