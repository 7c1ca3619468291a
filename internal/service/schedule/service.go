package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	blockedTimeRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/blockedtime"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Service управление правилами расписания: рабочие часы, расписания провайдеров,
// локации и блокировки времени. Любая запись сбрасывает кэш правил.
type Service struct {
	scheduleRepo    ScheduleRepository
	locationRepo    LocationRepository
	blockedTimeRepo BlockedTimeRepository
	cache           CacheInvalidator
	logger          Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	locationRepo LocationRepository,
	blockedTimeRepo BlockedTimeRepository,
	cache CacheInvalidator,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:    scheduleRepo,
		locationRepo:    locationRepo,
		blockedTimeRepo: blockedTimeRepo,
		cache:           cache,
		logger:          logger,
	}
}

// GetWeeklySchedule возвращает все правила, из которых строится расписание провайдера
func (s *Service) GetWeeklySchedule(ctx context.Context, providerID int64) (*models.WeeklyScheduleResponse, error) {
	s.logger.Info("GetWeeklySchedule: fetching rules for provider=%d", providerID)

	if providerID <= 0 {
		return nil, fmt.Errorf("%w: providerId must be positive", ErrInvalidInput)
	}

	hours, err := s.scheduleRepo.ListBusinessHours(ctx)
	if err != nil {
		s.logger.Error("GetWeeklySchedule: failed to list business hours: %v", err)
		return nil, fmt.Errorf("%w: GetWeeklySchedule - business hours: %v", ErrInternal, err)
	}

	overrides, err := s.scheduleRepo.ListProviderSchedules(ctx, providerID)
	if err != nil {
		s.logger.Error("GetWeeklySchedule: failed to list schedules for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetWeeklySchedule - provider schedules: %v", ErrInternal, err)
	}

	locations, err := s.locationRepo.ListByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("GetWeeklySchedule: failed to list locations for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetWeeklySchedule - locations: %v", ErrInternal, err)
	}

	sort.Slice(hours, func(i, j int) bool { return hours[i].Weekday < hours[j].Weekday })
	sort.Slice(overrides, func(i, j int) bool { return overrides[i].Weekday < overrides[j].Weekday })

	resp := &models.WeeklyScheduleResponse{
		ProviderID:    providerID,
		BusinessHours: make([]models.BusinessHoursResponse, 0, len(hours)),
		Overrides:     make([]models.ProviderScheduleResponse, 0, len(overrides)),
		Locations:     make([]models.LocationResponse, 0, len(locations)),
	}
	for _, h := range hours {
		resp.BusinessHours = append(resp.BusinessHours, *models.FromDomainBusinessHours(h))
	}
	for _, o := range overrides {
		resp.Overrides = append(resp.Overrides, *models.FromDomainProviderSchedule(o))
	}
	for _, l := range locations {
		resp.Locations = append(resp.Locations, *models.FromDomainLocation(l))
	}

	return resp, nil
}

// UpsertProviderSchedule создает или заменяет расписание провайдера на день недели
func (s *Service) UpsertProviderSchedule(ctx context.Context, req *models.UpsertProviderScheduleRequest) (*models.ProviderScheduleResponse, error) {
	s.logger.Info("UpsertProviderSchedule: provider=%d, weekday=%s by user=%d", req.ProviderID, req.Weekday, req.UserID)

	if req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: providerId must be positive", ErrInvalidInput)
	}

	schedule := req.ToDomain()
	if err := schedule.Validate(); err != nil {
		s.logger.Warn("UpsertProviderSchedule: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, err := s.scheduleRepo.UpsertProviderSchedule(ctx, schedule)
	if err != nil {
		s.logger.Error("UpsertProviderSchedule: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpsertProviderSchedule - repository error: %v", ErrInternal, err)
	}

	s.invalidateProvider(ctx, "UpsertProviderSchedule", req.ProviderID)
	s.logger.Info("UpsertProviderSchedule: saved schedule id=%d", saved.ID)
	return models.FromDomainProviderSchedule(saved), nil
}

// DeleteProviderSchedule удаляет расписание провайдера, день снова идет по общим часам
func (s *Service) DeleteProviderSchedule(ctx context.Context, providerID int64, weekday domain.Weekday) error {
	s.logger.Info("DeleteProviderSchedule: provider=%d, weekday=%s", providerID, weekday)

	if providerID <= 0 || !weekday.Valid() {
		return fmt.Errorf("%w: providerId must be positive and weekday valid", ErrInvalidInput)
	}

	if err := s.scheduleRepo.DeleteProviderSchedule(ctx, providerID, weekday); err != nil {
		if errors.Is(err, domain.ErrProviderScheduleNotFound) {
			s.logger.Warn("DeleteProviderSchedule: no schedule for provider=%d on %s", providerID, weekday)
			return ErrScheduleNotFound
		}
		s.logger.Error("DeleteProviderSchedule: repository error: %v", err)
		return fmt.Errorf("%w: DeleteProviderSchedule - repository error: %v", ErrInternal, err)
	}

	s.invalidateProvider(ctx, "DeleteProviderSchedule", providerID)
	return nil
}

// UpsertBusinessHours задает общие рабочие часы на день недели
func (s *Service) UpsertBusinessHours(ctx context.Context, req *models.UpsertBusinessHoursRequest) (*models.BusinessHoursResponse, error) {
	s.logger.Info("UpsertBusinessHours: weekday=%s, %s-%s by user=%d", req.Weekday, req.Start, req.End, req.UserID)

	hours := &domain.BusinessHours{
		Weekday: req.Weekday,
		Start:   types.TimeString(req.Start),
		End:     types.TimeString(req.End),
	}
	if err := hours.Validate(); err != nil {
		s.logger.Warn("UpsertBusinessHours: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, err := s.scheduleRepo.UpsertBusinessHours(ctx, hours)
	if err != nil {
		s.logger.Error("UpsertBusinessHours: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpsertBusinessHours - repository error: %v", ErrInternal, err)
	}

	if err := s.cache.InvalidateBusinessHours(ctx); err != nil {
		s.logger.Warn("UpsertBusinessHours: failed to invalidate cache: %v", err)
	}
	return models.FromDomainBusinessHours(saved), nil
}

// CreateBlockedTime блокирует промежуток времени провайдера
func (s *Service) CreateBlockedTime(ctx context.Context, req *models.CreateBlockedTimeRequest) (*models.BlockedTimeResponse, error) {
	s.logger.Info("CreateBlockedTime: provider=%d, %v-%v by user=%d", req.ProviderID, req.Start, req.End, req.UserID)

	if req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: providerId must be positive", ErrInvalidInput)
	}
	if req.Start.IsZero() || req.End.IsZero() || !req.Start.Before(req.End) {
		return nil, fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}
	reason := strings.TrimSpace(req.Reason)
	if len(reason) > domain.MaxBlockedTimeReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxBlockedTimeReasonLength)
	}

	created, err := s.blockedTimeRepo.Create(ctx, &domain.BlockedTime{
		ProviderID: req.ProviderID,
		Start:      req.Start.UTC(),
		End:        req.End.UTC(),
		Reason:     reason,
	})
	if err != nil {
		s.logger.Error("CreateBlockedTime: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateBlockedTime - repository error: %v", ErrInternal, err)
	}

	s.invalidateProvider(ctx, "CreateBlockedTime", req.ProviderID)
	s.logger.Info("CreateBlockedTime: created blocked time id=%d", created.ID)
	return models.FromDomainBlockedTime(created), nil
}

// DeleteBlockedTime снимает блокировку
func (s *Service) DeleteBlockedTime(ctx context.Context, providerID, id int64) error {
	s.logger.Info("DeleteBlockedTime: provider=%d, id=%d", providerID, id)

	if err := s.blockedTimeRepo.Delete(ctx, providerID, id); err != nil {
		if errors.Is(err, blockedTimeRepo.ErrBlockedTimeNotFound) {
			s.logger.Warn("DeleteBlockedTime: blocked time id=%d not found for provider=%d", id, providerID)
			return ErrBlockedTimeNotFound
		}
		s.logger.Error("DeleteBlockedTime: repository error: %v", err)
		return fmt.Errorf("%w: DeleteBlockedTime - repository error: %v", ErrInternal, err)
	}

	s.invalidateProvider(ctx, "DeleteBlockedTime", providerID)
	return nil
}

// CreateLocation добавляет локацию провайдера
func (s *Service) CreateLocation(ctx context.Context, req *models.CreateLocationRequest) (*models.LocationResponse, error) {
	s.logger.Info("CreateLocation: provider=%d, name=%q by user=%d", req.ProviderID, req.Name, req.UserID)

	if req.ProviderID <= 0 || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: providerId and name are required", ErrInvalidInput)
	}

	loc, err := req.ToDomain()
	if err != nil {
		s.logger.Warn("CreateLocation: invalid days: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.locationRepo.Create(ctx, loc)
	if err != nil {
		s.logger.Error("CreateLocation: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateLocation - repository error: %v", ErrInternal, err)
	}

	s.invalidateProvider(ctx, "CreateLocation", req.ProviderID)
	return models.FromDomainLocation(created), nil
}

// invalidateProvider ошибка кэша не откатывает запись, ключи истекут по TTL
func (s *Service) invalidateProvider(ctx context.Context, op string, providerID int64) {
	if err := s.cache.InvalidateProvider(ctx, providerID); err != nil {
		s.logger.Warn("%s: failed to invalidate cache for provider=%d: %v", op, providerID, err)
	}
}
