package database

import (
	"fmt"

	"articles-service/models"

	"gorm.io/gorm"
)

// SyncArticleSequence moves the postgres articles id sequence past every stored id. It never
// lowers the sequence, so ids of deleted articles are not handed out again. An empty, unused
// sequence is left to start at 1.
const SyncArticleSequence = `SELECT setval(seq::regclass, GREATEST(v, 1), v > 0) FROM (` +
	`SELECT seq, GREATEST(COALESCE((SELECT MAX(id) FROM articles), 0), ` +
	`COALESCE(pg_sequence_last_value(seq::regclass), 0)) AS v ` +
	`FROM (SELECT pg_get_serial_sequence('articles', 'id') AS seq) s) t`

// Migrate applies idempotent schema migrations:
// - AutoMigrate (articles, idempotency_keys)
// - postgres only: realign the articles id sequence after upserts that carried explicit ids
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.Article{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}
		stmt := SyncArticleSequence
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("sequence realignment failed on: %s - %w", stmt, err)
		}
		return nil
	})
}
