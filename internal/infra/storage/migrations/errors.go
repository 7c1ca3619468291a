package migrations

import "errors"

var (
	// ErrReadMigrations не удалось прочитать встроенные миграции
	ErrReadMigrations = errors.New("migrations: failed to read embedded files")

	// ErrApplyMigration не удалось применить миграцию
	ErrApplyMigration = errors.New("migrations: failed to apply migration")
)
