package appointment

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"

	overlapConstraint        = "appointments_no_overlap"
	idempotencyKeyConstraint = "uq_appointments_idempotency_key"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrOverlap возвращается, когда вставка нарушает ограничение непересечения
	ErrOverlap = errors.New("appointment.repository: time range overlaps an existing appointment")

	// ErrDuplicateIdempotencyKey возвращается, когда ключ идемпотентности уже использован
	ErrDuplicateIdempotencyKey = errors.New("appointment.repository: idempotency key already used")

	// ErrNotInTransaction возвращается, когда операция требует транзакции
	ErrNotInTransaction = errors.New("appointment.repository: operation requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)

// IsOverlapViolation проверяет нарушение ограничения appointments_no_overlap.
// Для отложенного ограничения ошибка приходит при COMMIT, поэтому проверяется вся цепочка.
func IsOverlapViolation(err error) bool {
	if errors.Is(err, ErrOverlap) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation
}

func isIdempotencyKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == pqUniqueViolation &&
		pqErr.Constraint == idempotencyKeyConstraint
}
