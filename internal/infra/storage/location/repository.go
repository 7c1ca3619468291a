package location

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий локаций провайдера и дней их работы
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория локаций
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListByProvider возвращает все локации провайдера (включая неактивные) с днями работы.
// Дни хранятся именами ("monday") и переводятся в domain.Weekday.
func (r *Repository) ListByProvider(ctx context.Context, providerID int64) ([]*domain.Location, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"l.id",
		"l.provider_id",
		"l.name",
		"l.address",
		"l.contact_number",
		"l.is_primary",
		"l.is_active",
		"COALESCE(array_agg(ld.weekday) FILTER (WHERE ld.weekday IS NOT NULL), '{}') AS days",
	).
		From("locations l").
		LeftJoin("location_days ld ON ld.location_id = l.id").
		Where(squirrel.Eq{"l.provider_id": providerID}).
		GroupBy("l.id").
		OrderBy("l.is_primary DESC", "l.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByProvider - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByProvider - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		var (
			loc  domain.Location
			days pq.StringArray
		)
		err := rows.Scan(
			&loc.ID,
			&loc.ProviderID,
			&loc.Name,
			&loc.Address,
			&loc.ContactNumber,
			&loc.IsPrimary,
			&loc.IsActive,
			&days,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByProvider - scan row: %v", ErrScanRow, err)
		}

		loc.Days, err = parseDays(days)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByProvider - location=%d: %v", ErrScanRow, loc.ID, err)
		}
		locations = append(locations, &loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByProvider - rows error: %v", ErrScanRow, err)
	}

	return locations, nil
}

// Create сохраняет локацию вместе с днями работы.
// Вызывать внутри транзакции, чтобы локация и дни сохранились атомарно.
func (r *Repository) Create(ctx context.Context, loc *domain.Location) (*domain.Location, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("locations").
		Columns("provider_id", "name", "address", "contact_number", "is_primary", "is_active").
		Values(loc.ProviderID, loc.Name, loc.Address, loc.ContactNumber, loc.IsPrimary, loc.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	saved := *loc
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&saved.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	if len(loc.Days) == 0 {
		return &saved, nil
	}

	insertDays := psqlbuilder.Insert("location_days").Columns("location_id", "weekday")
	for _, d := range loc.Days {
		insertDays = insertDays.Values(saved.ID, d.Name())
	}
	query, args, err = insertDays.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build days insert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - insert days: %w", ErrExecQuery, err)
	}

	return &saved, nil
}

func parseDays(names []string) ([]domain.Weekday, error) {
	days := make([]domain.Weekday, 0, len(names))
	for _, name := range names {
		d, err := domain.ParseWeekdayName(name)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}
