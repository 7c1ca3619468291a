package appointment

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

const tableName = "appointments"

var columns = []string{
	"id",
	"customer_id",
	"provider_id",
	"service_id",
	"start_time",
	"end_time",
	"status",
	"idempotency_key",
	"rescheduled_to_id",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// blockingPredicate строки, занимающие время провайдера.
// Совпадает с предикатом ограничения appointments_no_overlap.
var blockingPredicate = squirrel.Or{
	squirrel.Eq{"status": string(domain.StatusBooked)},
	squirrel.And{
		squirrel.Eq{"status": string(domain.StatusRescheduled)},
		squirrel.Eq{"rescheduled_to_id": nil},
	},
}

// Repository репозиторий для работы с записями на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись со статусом из appointment.
// Если в контексте есть транзакция, использует её.
// Пересечение с другой блокирующей записью провайдера возвращает ErrOverlap,
// повтор ключа идемпотентности - ErrDuplicateIdempotencyKey.
func (r *Repository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"customer_id",
			"provider_id",
			"service_id",
			"start_time",
			"end_time",
			"status",
			"idempotency_key",
		).
		Values(
			appointment.CustomerID,
			appointment.ProviderID,
			appointment.ServiceID,
			appointment.StartTime.UTC(),
			appointment.EndTime.UTC(),
			string(appointment.Status),
			appointment.IdempotencyKey,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created := *appointment
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&created.ID,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	switch {
	case err == nil:
	case IsOverlapViolation(err):
		return nil, fmt.Errorf("%w: provider=%d %s-%s", ErrOverlap, appointment.ProviderID,
			appointment.StartTime.UTC().Format("2006-01-02T15:04"), appointment.EndTime.UTC().Format("15:04"))
	case isIdempotencyKeyViolation(err):
		return nil, ErrDuplicateIdempotencyKey
	default:
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return &created, nil
}

// GetByID получает запись по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	return r.getOne(ctx, "GetByID", builder)
}

// GetByIdempotencyKey ищет запись по ключу идемпотентности
func (r *Repository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Appointment, error) {
	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"idempotency_key": key})

	return r.getOne(ctx, "GetByIdempotencyKey", builder)
}

// ListBlocking возвращает записи провайдера, занимающие время и пересекающиеся с rng.
// excludeID исключает одну запись (перенос). Результат отсортирован по началу.
func (r *Repository) ListBlocking(ctx context.Context, providerID int64, rng domain.Interval, excludeID *int64) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(blockingPredicate).
		Where(squirrel.Lt{"start_time": rng.End.UTC()}).
		Where(squirrel.Gt{"end_time": rng.Start.UTC()}).
		OrderBy("start_time ASC", "end_time ASC")

	if excludeID != nil {
		builder = builder.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlocking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlocking - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// List получает записи по фильтру, новые первыми
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From(tableName)

	if filter.ProviderID != nil {
		builder = builder.Where(squirrel.Eq{"provider_id": *filter.ProviderID})
	}
	if filter.CustomerID != nil {
		builder = builder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_time": filter.From.UTC()})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_time": filter.To.UTC()})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}

	query, args, err := builder.OrderBy("start_time DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	builder := psqlbuilder.Update(tableName).
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "UpdateStatus", builder)
}

// Cancel отменяет запись с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	builder := psqlbuilder.Update(tableName).
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "Cancel", builder)
}

// MarkRescheduled переводит запись в rescheduled и связывает её с новой записью
func (r *Repository) MarkRescheduled(ctx context.Context, id int64, replacementID int64) error {
	builder := psqlbuilder.Update(tableName).
		Set("status", string(domain.StatusRescheduled)).
		Set("rescheduled_to_id", replacementID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "MarkRescheduled", builder)
}

// LockProvider берет транзакционную advisory-блокировку на провайдера.
// Сериализует коммиты записи одного провайдера до конца транзакции. В SERIALIZABLE
// снимок берется до ожидания блокировки, поэтому чтения после нее могут не видеть
// коммит предыдущего владельца: от пересечений защищает appointments_no_overlap.
func (r *Repository) LockProvider(ctx context.Context, providerID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", providerID); err != nil {
		return fmt.Errorf("%w: LockProvider - provider=%d: %w", ErrExecQuery, providerID, err)
	}
	return nil
}

// DeferOverlapCheck откладывает проверку appointments_no_overlap до COMMIT.
// Нужен при переносе: новая запись вставляется раньше, чем старая перестает блокировать.
func (r *Repository) DeferOverlapCheck(ctx context.Context) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SET CONSTRAINTS "+overlapConstraint+" DEFERRED"); err != nil {
		return fmt.Errorf("%w: DeferOverlapCheck: %w", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, builder squirrel.SelectBuilder) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	appointment, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan appointment: %w", ErrScanRow, op, err)
	}
	return appointment, nil
}

func (r *Repository) execUpdate(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if IsOverlapViolation(err) {
			return ErrOverlap
		}
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a      domain.Appointment
		status string
	)

	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.ProviderID,
		&a.ServiceID,
		&a.StartTime,
		&a.EndTime,
		&status,
		&a.IdempotencyKey,
		&a.RescheduledToID,
		&a.CancellationReason,
		&a.CancelledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = domain.AppointmentStatus(status)
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	return &a, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}
