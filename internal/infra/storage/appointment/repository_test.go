package appointment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestBlockingPredicate(t *testing.T) {
	sql, args, err := blockingPredicate.ToSql()

	assert.NoError(t, err)
	assert.Equal(t, "(status = ? OR (status = ? AND rescheduled_to_id IS NULL))", sql)
	assert.Equal(t, []interface{}{"booked", "rescheduled"}, args)
}

func TestIsOverlapViolation(t *testing.T) {
	exclusion := &pq.Error{Code: "23P01", Constraint: "appointments_no_overlap"}

	assert.True(t, IsOverlapViolation(exclusion))
	assert.True(t, IsOverlapViolation(fmt.Errorf("commit: %w", exclusion)))
	assert.True(t, IsOverlapViolation(ErrOverlap))
	assert.False(t, IsOverlapViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsOverlapViolation(errors.New("boom")))
}

func TestIsIdempotencyKeyViolation(t *testing.T) {
	assert.True(t, isIdempotencyKeyViolation(&pq.Error{Code: "23505", Constraint: "uq_appointments_idempotency_key"}))
	assert.False(t, isIdempotencyKeyViolation(&pq.Error{Code: "23505", Constraint: "appointments_pkey"}))
}
