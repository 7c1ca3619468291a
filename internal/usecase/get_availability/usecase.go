package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// Исходы для метрики availability_queries_total
const (
	outcomeOpen   = "open"
	outcomeFull   = "full"
	outcomeClosed = "closed"
	outcomeError  = "error"
)

// UseCase свободные слоты провайдера на дату.
// Правила читаются через кэш, записи всегда из БД.
type UseCase struct {
	calculator   *scheduling.Calculator
	catalog      CatalogClient
	metrics      Metrics
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	rules scheduling.RulesRepository,
	locations scheduling.LocationRepository,
	blocked scheduling.BlockedTimeRepository,
	appointments scheduling.AppointmentRepository,
	catalog CatalogClient,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		calculator:   scheduling.NewDefaultCalculator(rules, locations, blocked, appointments),
		catalog:      catalog,
		metrics:      metrics,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.IncAvailabilityQuery(queryOutcome(resp, err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOf(req.Date)
	now := uc.timeProvider.Now()
	if err := validateDate(date, now, uc.cfg); err != nil {
		uc.logger.Warn("GetAvailability: %v", err)
		return nil, err
	}

	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrServiceNotFound, req.ServiceID)
		}
		if errors.Is(err, catalogClient.ErrInvalidDuration) {
			return nil, fmt.Errorf("%w: service id=%d", ErrInvalidServiceDuration, req.ServiceID)
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if service.Duration() <= 0 {
		return nil, fmt.Errorf("%w: service id=%d", ErrInvalidServiceDuration, req.ServiceID)
	}

	plan, err := uc.plan(ctx, req.ProviderID, date, service, now)
	if err != nil {
		uc.logger.Error("GetAvailability: provider=%d, date=%s: %v", req.ProviderID, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	resp := &Response{
		Date:            date,
		ProviderID:      req.ProviderID,
		ServiceID:       req.ServiceID,
		DurationMinutes: service.DurationMinutes,
		Slots:           plan.Slots,
		ClosedReason:    plan.ClosedReason,
	}

	if len(resp.Slots) == 0 {
		next, err := uc.nextOpenDate(ctx, req.ProviderID, date, service, now)
		if err != nil {
			// Подсказка необязательна, день возвращается без неё
			uc.logger.Warn("GetAvailability: next open date scan failed for provider=%d: %v", req.ProviderID, err)
		}
		resp.NextOpenDate = next
	}

	uc.logger.Info("GetAvailability: provider=%d, service=%d, date=%s, slots=%d",
		req.ProviderID, req.ServiceID, date.Format(domain.DateFormat), len(resp.Slots))

	return resp, nil
}

func (uc *UseCase) plan(ctx context.Context, providerID int64, date time.Time, service *domain.Service, now time.Time) (*scheduling.DayPlan, error) {
	return uc.calculator.Plan(ctx, scheduling.PlanRequest{
		ProviderID: providerID,
		Date:       date,
		Duration:   service.Duration(),
		Step:       uc.cfg.Step,
		NotBefore:  now,
	})
}

// nextOpenDate первая дата после date, на которой есть свободные слоты
func (uc *UseCase) nextOpenDate(ctx context.Context, providerID int64, date time.Time, service *domain.Service, now time.Time) (*time.Time, error) {
	for i := 1; i <= uc.cfg.NextOpenScanDays; i++ {
		day := date.AddDate(0, 0, i)
		if uc.cfg.MaxAdvanceDays > 0 && day.After(lastBookableDate(now, uc.cfg)) {
			return nil, nil
		}

		plan, err := uc.plan(ctx, providerID, day, service, now)
		if err != nil {
			return nil, err
		}
		if len(plan.Slots) > 0 {
			return &day, nil
		}
	}
	return nil, nil
}

func queryOutcome(resp *Response, err error) string {
	switch {
	case err != nil:
		return outcomeError
	case len(resp.Slots) > 0:
		return outcomeOpen
	case resp.ClosedReason != "":
		return outcomeClosed
	}
	return outcomeFull
}
