package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const (
	businessHoursTable     = "business_hours"
	providerSchedulesTable = "provider_schedules"
)

var providerScheduleColumns = []string{
	"id",
	"provider_id",
	"weekday",
	"is_active",
	"start_time",
	"end_time",
	"break_start",
	"break_end",
	"created_at",
	"updated_at",
}

// Repository репозиторий правил расписания: общие рабочие часы и расписания провайдеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusinessHours получает общие рабочие часы на день недели.
// Отсутствие строки означает выходной (ErrBusinessHoursNotFound).
func (r *Repository) GetBusinessHours(ctx context.Context, weekday domain.Weekday) (*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "weekday", "start_time", "end_time").
		From(businessHoursTable).
		Where(squirrel.Eq{"weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	var (
		hours domain.BusinessHours
		day   int
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&hours.ID, &day, &hours.Start, &hours.End)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBusinessHoursNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - scan: %w", ErrScanRow, err)
	}
	hours.Weekday = domain.Weekday(day)

	return &hours, nil
}

// ListBusinessHours получает рабочие часы на всю неделю
func (r *Repository) ListBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "weekday", "start_time", "end_time").
		From(businessHoursTable).
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBusinessHours - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BusinessHours, 0, 7)
	for rows.Next() {
		var (
			hours domain.BusinessHours
			day   int
		)
		if err := rows.Scan(&hours.ID, &day, &hours.Start, &hours.End); err != nil {
			return nil, fmt.Errorf("%w: ListBusinessHours - scan row: %v", ErrScanRow, err)
		}
		hours.Weekday = domain.Weekday(day)
		result = append(result, &hours)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBusinessHours - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpsertBusinessHours создает или заменяет рабочие часы дня недели
func (r *Repository) UpsertBusinessHours(ctx context.Context, hours *domain.BusinessHours) (*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(businessHoursTable).
		Columns("weekday", "start_time", "end_time").
		Values(int(hours.Weekday), hours.Start, hours.End).
		Suffix("ON CONFLICT (weekday) DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - build insert query: %v", ErrBuildQuery, err)
	}

	saved := *hours
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&saved.ID); err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - execute insert: %w", ErrExecQuery, err)
	}

	return &saved, nil
}

// GetProviderSchedule получает расписание провайдера на день недели (активное или нет)
func (r *Repository) GetProviderSchedule(ctx context.Context, providerID int64, weekday domain.Weekday) (*domain.ProviderSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(providerScheduleColumns...).
		From(providerSchedulesTable).
		Where(squirrel.Eq{"provider_id": providerID, "weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProviderSchedule - build select query: %v", ErrBuildQuery, err)
	}

	schedule, err := scanProviderSchedule(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProviderSchedule - scan: %w", ErrScanRow, err)
	}

	return schedule, nil
}

// ListProviderSchedules получает недельное расписание провайдера
func (r *Repository) ListProviderSchedules(ctx context.Context, providerID int64) ([]*domain.ProviderSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(providerScheduleColumns...).
		From(providerSchedulesTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListProviderSchedules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListProviderSchedules - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.ProviderSchedule, 0, 7)
	for rows.Next() {
		schedule, err := scanProviderSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListProviderSchedules - scan row: %v", ErrScanRow, err)
		}
		result = append(result, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListProviderSchedules - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpsertProviderSchedule создает или заменяет расписание провайдера на день недели
func (r *Repository) UpsertProviderSchedule(ctx context.Context, schedule *domain.ProviderSchedule) (*domain.ProviderSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(providerSchedulesTable).
		Columns("provider_id", "weekday", "is_active", "start_time", "end_time", "break_start", "break_end").
		Values(
			schedule.ProviderID,
			int(schedule.Weekday),
			schedule.IsActive,
			schedule.Start,
			schedule.End,
			schedule.BreakStart,
			schedule.BreakEnd,
		).
		Suffix(`ON CONFLICT (provider_id, weekday) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertProviderSchedule - build insert query: %v", ErrBuildQuery, err)
	}

	saved := *schedule
	err = executor.QueryRowContext(ctx, query, args...).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertProviderSchedule - execute insert: %w", ErrExecQuery, err)
	}

	return &saved, nil
}

// DeleteProviderSchedule удаляет расписание провайдера на день недели
// (день начинает работать по общим рабочим часам)
func (r *Repository) DeleteProviderSchedule(ctx context.Context, providerID int64, weekday domain.Weekday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(providerSchedulesTable).
		Where(squirrel.Eq{"provider_id": providerID, "weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteProviderSchedule - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteProviderSchedule - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteProviderSchedule - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProviderSchedule(row rowScanner) (*domain.ProviderSchedule, error) {
	var (
		s   domain.ProviderSchedule
		day int
	)

	err := row.Scan(
		&s.ID,
		&s.ProviderID,
		&day,
		&s.IsActive,
		&s.Start,
		&s.End,
		&s.BreakStart,
		&s.BreakEnd,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Weekday = domain.Weekday(day)

	return &s, nil
}
