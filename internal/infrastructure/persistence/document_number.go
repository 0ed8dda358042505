package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nextDocumentNumber returns the next sequential number for the current year.
// Format: KIND-YYYY-NNNNN (e.g., PO-2026-00001)
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model any, column, kind string) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", kind, time.Now().Year())

	var last []string
	if err := db.WithContext(ctx).
		Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &last).Error; err != nil {
		return "", err
	}

	var nextNum int64 = 1
	if len(last) == 1 {
		parts := strings.Split(last[0], "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}
