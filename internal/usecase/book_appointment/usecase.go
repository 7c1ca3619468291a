package book_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	customerClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/customerservice"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// Результаты для метрики booking_commits_total
const (
	resultCreated  = "created"
	resultReplayed = "replayed"
	resultConflict = "conflict"
	resultInvalid  = "invalid"
	resultError    = "error"
)

// UseCase записывает клиента на слот без пересечений.
// Слот перепроверяется внутри сериализуемой транзакции под advisory lock провайдера.
// Снимок транзакции может предшествовать коммиту конкурента, поэтому гарантию
// непересечения дает ограничение исключения в БД, его нарушение - SlotUnavailable.
type UseCase struct {
	appointmentRepo AppointmentRepository
	calculator      *scheduling.Calculator
	catalog         CatalogClient
	customers       CustomerClient
	txManager       TransactionManager
	notifier        Notifier
	metrics         Metrics
	cfg             Config
	timeProvider    TimeProvider
	logger          Logger
}

func NewUseCase(
	appointments AppointmentRepository,
	rules scheduling.RulesRepository,
	locations scheduling.LocationRepository,
	blocked scheduling.BlockedTimeRepository,
	catalog CatalogClient,
	customers CustomerClient,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointments,
		calculator:      scheduling.NewDefaultCalculator(rules, locations, blocked, appointments),
		catalog:         catalog,
		customers:       customers,
		txManager:       txManager,
		notifier:        notifier,
		metrics:         metrics,
		cfg:             cfg,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute создает запись (или переносит существующую при RescheduleFromID)
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.IncBookingCommit(commitResult(resp, err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: customer=%d, provider=%d, service=%d, start=%s, reschedule_from=%v",
		req.CustomerID, req.ProviderID, req.ServiceID, req.Start.UTC().Format(time.RFC3339), req.RescheduleFromID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}
	req.Start = req.Start.UTC()
	req.End = req.End.UTC()

	now := uc.timeProvider.Now()
	if err := validateStart(req.Start, now, uc.cfg); err != nil {
		uc.logger.Warn("BookAppointment: %v", err)
		return nil, err
	}

	// 2. Проверяем клиента (при недоступности справочника запись не блокируется)
	if err := uc.customers.VerifyCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, customerClient.ErrCustomerNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrCustomerNotFound, req.CustomerID)
		}
		uc.logger.Warn("BookAppointment: customer check skipped for customer=%d: %v", req.CustomerID, err)
	}

	// 3. Длительность услуги из каталога
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrServiceNotFound, req.ServiceID)
		}
		if errors.Is(err, catalogClient.ErrInvalidDuration) {
			return nil, fmt.Errorf("%w: service id=%d", ErrInvalidServiceDuration, req.ServiceID)
		}
		uc.logger.Error("BookAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	end, err := resolveEnd(req, service)
	if err != nil {
		return nil, err
	}

	var (
		result   *domain.Appointment
		previous *domain.Appointment
		replayed bool
	)

	// 4. Перепроверка и вставка в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result, previous, replayed = nil, nil, false

		if err := uc.appointmentRepo.LockProvider(txCtx, req.ProviderID); err != nil {
			return fmt.Errorf("%w: lock provider: %w", ErrStorage, err)
		}

		if req.IdempotencyKey != nil {
			existing, err := uc.findByKey(txCtx, *req.IdempotencyKey, req, end)
			if err != nil {
				return err
			}
			if existing != nil {
				result, replayed = existing, true
				return nil
			}
		}

		if req.RescheduleFromID != nil {
			old, err := uc.loadReschedulable(txCtx, *req.RescheduleFromID, req)
			if err != nil {
				return err
			}
			previous = old
		}

		plan, err := uc.calculator.Plan(txCtx, scheduling.PlanRequest{
			ProviderID:           req.ProviderID,
			Date:                 req.Start,
			Duration:             service.Duration(),
			Step:                 uc.cfg.Step,
			NotBefore:            now.Add(-uc.cfg.PastGrace),
			ExcludeAppointmentID: req.RescheduleFromID,
		})
		if err != nil {
			return fmt.Errorf("%w: plan: %w", ErrStorage, err)
		}
		if !scheduling.ContainsSlot(plan.Slots, req.Start, end) {
			if plan.IsClosed() {
				return fmt.Errorf("%w: %s", ErrSlotUnavailable, plan.ClosedReason)
			}
			return ErrSlotUnavailable
		}

		if previous != nil {
			if err := uc.appointmentRepo.DeferOverlapCheck(txCtx); err != nil {
				return fmt.Errorf("%w: defer constraint: %w", ErrStorage, err)
			}
		}

		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			CustomerID:     req.CustomerID,
			ProviderID:     req.ProviderID,
			ServiceID:      req.ServiceID,
			StartTime:      req.Start,
			EndTime:        end,
			Status:         domain.StatusBooked,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			return err
		}

		if previous != nil {
			if err := uc.appointmentRepo.MarkRescheduled(txCtx, previous.ID, created.ID); err != nil {
				return fmt.Errorf("%w: mark rescheduled: %w", ErrStorage, err)
			}
		}

		result = created
		return nil
	})

	if err != nil {
		return uc.handleCommitError(ctx, req, end, err)
	}

	if replayed {
		uc.logger.Info("BookAppointment: idempotent replay, appointment id=%d", result.ID)
		return &Response{Appointment: result, Replayed: true}, nil
	}

	uc.logger.Info("BookAppointment: successfully created appointment id=%d", result.ID)
	uc.publish(result, previous, now)

	return &Response{Appointment: result}, nil
}

// findByKey возвращает запись по ключу, nil если ключ свободен
func (uc *UseCase) findByKey(ctx context.Context, key string, req *Request, end time.Time) (*domain.Appointment, error) {
	existing, err := uc.appointmentRepo.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: idempotency lookup: %w", ErrStorage, err)
	}
	if !existing.SameRequest(req.CustomerID, req.ProviderID, req.ServiceID, req.Start, end) {
		uc.logger.Warn("BookAppointment: idempotency key reused with different parameters, appointment id=%d", existing.ID)
		return nil, ErrIdempotencyKeyMismatch
	}
	return existing, nil
}

func (uc *UseCase) loadReschedulable(ctx context.Context, id int64, req *Request) (*domain.Appointment, error) {
	old, err := uc.appointmentRepo.GetByID(ctx, id)
	if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		return nil, fmt.Errorf("%w: id=%d", ErrAppointmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get appointment: %w", ErrStorage, err)
	}

	if old.ProviderID != req.ProviderID || old.CustomerID != req.CustomerID {
		return nil, fmt.Errorf("%w: appointment %d belongs to another provider or customer", ErrNotReschedulable, id)
	}
	if !domain.CanTransition(old.Status, domain.StatusRescheduled) {
		return nil, fmt.Errorf("%w: status %s", ErrNotReschedulable, old.Status)
	}
	return old, nil
}

// handleCommitError приводит ошибки транзакции к таксономии
func (uc *UseCase) handleCommitError(ctx context.Context, req *Request, end time.Time, err error) (*Response, error) {
	conflict := appointmentRepo.IsOverlapViolation(err) ||
		errors.Is(err, txmanager.ErrSerializationFailure) ||
		errors.Is(err, domain.ErrSlotUnavailable) ||
		errors.Is(err, appointmentRepo.ErrDuplicateIdempotencyKey)

	// Конкурентный запрос с тем же ключом мог успеть первым
	if conflict && req.IdempotencyKey != nil {
		existing, lookupErr := uc.findByKey(ctx, *req.IdempotencyKey, req, end)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			uc.logger.Info("BookAppointment: idempotent replay after race, appointment id=%d", existing.ID)
			return &Response{Appointment: existing, Replayed: true}, nil
		}
	}

	switch {
	case appointmentRepo.IsOverlapViolation(err), errors.Is(err, txmanager.ErrSerializationFailure):
		uc.logger.Warn("BookAppointment: slot %s taken concurrently for provider=%d: %v",
			req.Start.Format(time.RFC3339), req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrSlotUnavailable, err)

	case errors.Is(err, appointmentRepo.ErrDuplicateIdempotencyKey):
		return nil, fmt.Errorf("%w: idempotency key conflict without a row", ErrStorage)

	case errors.Is(err, domain.ErrValidationFailed),
		errors.Is(err, domain.ErrSlotUnavailable),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrStorageUnavailable):
		uc.logger.Warn("BookAppointment: rejected: %v", err)
		return nil, err
	}

	uc.logger.Error("BookAppointment: transaction failed: %v", err)
	return nil, fmt.Errorf("%w: %v", ErrStorage, err)
}

func (uc *UseCase) publish(created, previous *domain.Appointment, now time.Time) {
	if previous == nil {
		uc.notifier.Notify(notifier.NewEvent(domain.EventBookingCreated, created, now))
		return
	}

	event := notifier.NewEvent(domain.EventBookingRescheduled, created, now)
	event.PreviousAppointmentID = &previous.ID
	uc.notifier.Notify(event)
}

func commitResult(resp *Response, err error) string {
	switch {
	case err == nil && resp.Replayed:
		return resultReplayed
	case err == nil:
		return resultCreated
	case errors.Is(err, domain.ErrSlotUnavailable):
		return resultConflict
	case errors.Is(err, domain.ErrValidationFailed), errors.Is(err, domain.ErrNotFound):
		return resultInvalid
	}
	return resultError
}
