package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleOutcome is the resulting state of a pair after a toggle.
type ToggleOutcome string

const (
	ToggleCreated ToggleOutcome = "created"
	ToggleRemoved ToggleOutcome = "removed"
)

// ErrToggleConflict means a concurrent request created the same pair first.
var ErrToggleConflict = errors.New("concurrent toggle on the same pair")

// pairKey names the two columns forming a relationship's natural key.
type pairKey struct {
	actorColumn  string
	targetColumn string
	actorID      uint
	targetID     uint
}

func (k pairKey) where(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("%s = ? AND %s = ?", k.actorColumn, k.targetColumn), k.actorID, k.targetID)
}

// togglePair deletes the row for key if present, otherwise inserts newRow.
// It must run inside a transaction: the existing row is locked FOR UPDATE and
// the insert relies on the pair's unique index, so a racing request either
// waits for the lock or loses the insert and gets ErrToggleConflict.
func togglePair[T any](ctx context.Context, db *gorm.DB, key pairKey, newRow func() *T) (ToggleOutcome, error) {
	var existing []T
	res := key.where(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})).
		Limit(1).
		Find(&existing)
	if res.Error != nil {
		return "", res.Error
	}

	if len(existing) > 0 {
		// Zero rows here means another request removed it first; the end state is the same.
		if err := key.where(db.WithContext(ctx)).Delete(new(T)).Error; err != nil {
			return "", err
		}
		return ToggleRemoved, nil
	}

	res = db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(newRow())
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return "", ErrToggleConflict
		}
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrToggleConflict
	}
	return ToggleCreated, nil
}
