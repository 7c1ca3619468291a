package scheduling

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ConflictIndex занятое время провайдера по блокирующим записям
type ConflictIndex struct {
	repo AppointmentRepository
}

func NewConflictIndex(repo AppointmentRepository) *ConflictIndex {
	return &ConflictIndex{repo: repo}
}

// BusyIntervals блокирующие записи, пересекающие rng, по возрастанию начала.
// excludeID пропускает переносимую запись.
func (c *ConflictIndex) BusyIntervals(ctx context.Context, providerID int64, rng domain.Interval, excludeID *int64) ([]domain.Interval, error) {
	appointments, err := c.repo.ListBlocking(ctx, providerID, rng, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%w: appointments: %w", ErrSourceFailed, err)
	}

	busy := make([]domain.Interval, 0, len(appointments))
	for _, a := range appointments {
		if !a.IsBlocking() {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		iv := a.Interval()
		if iv.Overlaps(rng) {
			busy = append(busy, iv)
		}
	}
	domain.SortIntervals(busy)
	return busy, nil
}
