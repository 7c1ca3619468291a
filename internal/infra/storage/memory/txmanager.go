package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

// TxManager выполняет транзакции по одной и откатывает записи при ошибке
type TxManager struct {
	mu           sync.Mutex
	appointments *Appointments
}

func NewTxManager(appointments *Appointments) *TxManager {
	return &TxManager{appointments: appointments}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, nextID := m.appointments.snapshot()

	err := fn(dbmetrics.WithTx(ctx, tx{}))
	if err == nil {
		err = m.appointments.commitCheck()
	}
	if err != nil {
		m.appointments.restore(rows, nextID)
		return err
	}
	return nil
}

type tx struct {
	dbmetrics.DBExecutor
}

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }
