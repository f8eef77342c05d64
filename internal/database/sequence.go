package database

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NextNumber returns the next human-readable document number such as
// PO-MAG-00001. It continues after the highest existing number with the same
// prefix, so numbers freed by deletes are not reused.
func NextNumber(tx *gorm.DB, table, column, prefix string, width int) (string, error) {
	var existing []string
	err := tx.Table(table).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &existing).Error
	if err != nil {
		return "", fmt.Errorf("read last %s: %w", column, err)
	}

	next := 1
	if len(existing) > 0 {
		n, err := strconv.Atoi(strings.TrimPrefix(existing[0], prefix))
		if err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, next), nil
}

// Wrap adapts an already-open gorm handle, such as a test database.
func Wrap(db *gorm.DB) *DB {
	return &DB{DB: db, log: zap.NewNop()}
}
