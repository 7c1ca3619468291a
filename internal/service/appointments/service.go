package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service чтение записей и переходы статусов (отмена, завершение)
type Service struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
}

func NewService(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		notifier:        notifier,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appointment), nil
}

// GetProviderAppointments записи провайдера за период.
// По умолчанию возвращаются только активные (booked) записи.
func (s *Service) GetProviderAppointments(ctx context.Context, req *models.GetProviderAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetProviderAppointments: provider=%d, from=%v, to=%v, status=%v, includeInactive=%t",
		req.ProviderID, req.From, req.To, req.Status, req.IncludeInactive)

	if req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: providerId must be positive", ErrInvalidInput)
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, ErrInvalidTimeRange
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderAppointments: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderAppointments: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderAppointments: fetched %d appointments for provider=%d", len(list), req.ProviderID)
	return models.FromDomainAppointmentList(list), nil
}

// Cancel отменяет запись и освобождает её время
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, req.UserID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	updated, err := s.transition(ctx, id, domain.StatusCancelled, func(txCtx context.Context) error {
		return s.appointmentRepo.Cancel(txCtx, id, req.CancellationReason)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			s.logger.Warn("Cancel: appointment id=%d cannot be cancelled: %v", id, err)
			return nil, fmt.Errorf("%w: %v", ErrCannotCancel, err)
		}
		return nil, err
	}

	s.notifier.Notify(notifier.NewEvent(domain.EventBookingCancelled, updated, s.timeProvider.Now()))
	s.logger.Info("Cancel: appointment id=%d cancelled", id)
	return models.FromDomainAppointment(updated), nil
}

// Complete отмечает запись выполненной
func (s *Service) Complete(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Complete: completing appointment id=%d by user=%d", id, userID)

	updated, err := s.transition(ctx, id, domain.StatusCompleted, func(txCtx context.Context) error {
		return s.appointmentRepo.UpdateStatus(txCtx, id, domain.StatusCompleted)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			s.logger.Warn("Complete: appointment id=%d cannot be completed: %v", id, err)
			return nil, fmt.Errorf("%w: %v", ErrCannotComplete, err)
		}
		return nil, err
	}

	s.logger.Info("Complete: appointment id=%d completed", id)
	return models.FromDomainAppointment(updated), nil
}

// transition читает запись под блокировкой, проверяет переход и применяет apply
func (s *Service) transition(
	ctx context.Context,
	id int64,
	next domain.AppointmentStatus,
	apply func(txCtx context.Context) error,
) (*domain.Appointment, error) {
	var updated *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := appointment.TransitionTo(next); err != nil {
			return err
		}
		if err := apply(txCtx); err != nil {
			return err
		}

		updated, err = s.appointmentRepo.GetByID(txCtx, id)
		return err
	})

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		s.logger.Warn("transition: appointment id=%d not found", id)
		return nil, ErrAppointmentNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return nil, err
	}

	s.logger.Error("transition: appointment id=%d to %s: %v", id, next, err)
	return nil, fmt.Errorf("%w: transition - repository error: %v", ErrInternal, err)
}
