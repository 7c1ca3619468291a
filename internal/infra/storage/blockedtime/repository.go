package blockedtime

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const tableName = "blocked_times"

// Repository репозиторий блокировок времени провайдера
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListOverlapping возвращает блокировки провайдера, пересекающиеся с rng.
// Блокировка может начинаться до rng и заканчиваться после него.
func (r *Repository) ListOverlapping(ctx context.Context, providerID int64, rng domain.Interval) ([]*domain.BlockedTime, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "provider_id", "start_time", "end_time", "reason", "created_at").
		From(tableName).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Lt{"start_time": rng.End.UTC()}).
		Where(squirrel.Gt{"end_time": rng.Start.UTC()}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BlockedTime, 0)
	for rows.Next() {
		var b domain.BlockedTime
		if err := rows.Scan(&b.ID, &b.ProviderID, &b.Start, &b.End, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListOverlapping - scan row: %v", ErrScanRow, err)
		}
		b.Start, b.End = b.Start.UTC(), b.End.UTC()
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// Create создает блокировку
func (r *Repository) Create(ctx context.Context, blocked *domain.BlockedTime) (*domain.BlockedTime, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("provider_id", "start_time", "end_time", "reason").
		Values(blocked.ProviderID, blocked.Start.UTC(), blocked.End.UTC(), blocked.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	saved := *blocked
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&saved.ID, &saved.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return &saved, nil
}

// Delete удаляет блокировку провайдера
func (r *Repository) Delete(ctx context.Context, providerID, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id, "provider_id": providerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockedTimeNotFound
	}

	return nil
}
