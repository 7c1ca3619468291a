package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	keyPrefix     = "rules:"
	scanBatchSize = 100

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// entry обёртка значения в Redis. Found=false кэширует отсутствие строки
// (выходной день или отсутствие расписания провайдера).
type entry[T any] struct {
	Found bool `json:"found"`
	Value T    `json:"value,omitempty"`
}

// Cache read-through кэш правил расписания в Redis.
// Используется только на пути чтения доступности, коммит записи читает БД напрямую.
// Ошибки Redis не прерывают запрос: значение берется из репозитория.
type Cache struct {
	client    redis.Cmdable
	ttl       time.Duration
	schedules ScheduleRepository
	locations LocationRepository
	blocked   BlockedTimeRepository
	metrics   Metrics
	log       Logger
}

func NewCache(
	client redis.Cmdable,
	ttl time.Duration,
	schedules ScheduleRepository,
	locations LocationRepository,
	blocked BlockedTimeRepository,
	metrics Metrics,
	log Logger,
) *Cache {
	return &Cache{
		client:    client,
		ttl:       ttl,
		schedules: schedules,
		locations: locations,
		blocked:   blocked,
		metrics:   metrics,
		log:       log,
	}
}

// GetBusinessHours кэшируется глобально по дню недели
func (c *Cache) GetBusinessHours(ctx context.Context, weekday domain.Weekday) (*domain.BusinessHours, error) {
	key := businessHoursKey(weekday)

	var cached entry[*domain.BusinessHours]
	if c.read(ctx, key, &cached) {
		if !cached.Found {
			return nil, domain.ErrBusinessHoursNotFound
		}
		return cached.Value, nil
	}

	hours, err := c.schedules.GetBusinessHours(ctx, weekday)
	switch {
	case errors.Is(err, domain.ErrBusinessHoursNotFound):
		c.write(ctx, key, entry[*domain.BusinessHours]{})
		return nil, err
	case err != nil:
		return nil, err
	}

	c.write(ctx, key, entry[*domain.BusinessHours]{Found: true, Value: hours})
	return hours, nil
}

func (c *Cache) GetProviderSchedule(ctx context.Context, providerID int64, weekday domain.Weekday) (*domain.ProviderSchedule, error) {
	key := providerKey(providerID, fmt.Sprintf("schedule:%d", weekday))

	var cached entry[*domain.ProviderSchedule]
	if c.read(ctx, key, &cached) {
		if !cached.Found {
			return nil, domain.ErrProviderScheduleNotFound
		}
		return cached.Value, nil
	}

	schedule, err := c.schedules.GetProviderSchedule(ctx, providerID, weekday)
	switch {
	case errors.Is(err, domain.ErrProviderScheduleNotFound):
		c.write(ctx, key, entry[*domain.ProviderSchedule]{})
		return nil, err
	case err != nil:
		return nil, err
	}

	c.write(ctx, key, entry[*domain.ProviderSchedule]{Found: true, Value: schedule})
	return schedule, nil
}

func (c *Cache) ListByProvider(ctx context.Context, providerID int64) ([]*domain.Location, error) {
	key := providerKey(providerID, "locations")

	var cached entry[[]*domain.Location]
	if c.read(ctx, key, &cached) {
		return cached.Value, nil
	}

	locations, err := c.locations.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	c.write(ctx, key, entry[[]*domain.Location]{Found: true, Value: locations})
	return locations, nil
}

// ListOverlapping кэшируется по провайдеру и точному диапазону (обычно календарный день)
func (c *Cache) ListOverlapping(ctx context.Context, providerID int64, rng domain.Interval) ([]*domain.BlockedTime, error) {
	key := providerKey(providerID, fmt.Sprintf("blocked:%d:%d", rng.Start.Unix(), rng.End.Unix()))

	var cached entry[[]*domain.BlockedTime]
	if c.read(ctx, key, &cached) {
		return cached.Value, nil
	}

	blocked, err := c.blocked.ListOverlapping(ctx, providerID, rng)
	if err != nil {
		return nil, err
	}

	c.write(ctx, key, entry[[]*domain.BlockedTime]{Found: true, Value: blocked})
	return blocked, nil
}

// InvalidateProvider удаляет все кэшированные правила провайдера
func (c *Cache) InvalidateProvider(ctx context.Context, providerID int64) error {
	return c.deleteByPattern(ctx, providerKey(providerID, "*"))
}

// InvalidateBusinessHours удаляет кэш общих рабочих часов
func (c *Cache) InvalidateBusinessHours(ctx context.Context) error {
	return c.deleteByPattern(ctx, keyPrefix+"business_hours:*")
}

func (c *Cache) deleteByPattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("%w: scan %s: %v", ErrInvalidate, pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: del %d keys: %v", ErrInvalidate, len(keys), err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *Cache) read(ctx context.Context, key string, out any) bool {
	if c.client == nil || c.ttl <= 0 {
		return false
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.IncRulesCache(resultMiss)
		return false
	}
	if err != nil {
		c.metrics.IncRulesCache(resultError)
		c.log.Warn("RulesCache: get %s failed: %v", key, err)
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		c.metrics.IncRulesCache(resultError)
		c.log.Warn("RulesCache: corrupted value for %s: %v", key, err)
		return false
	}

	c.metrics.IncRulesCache(resultHit)
	return true
}

func (c *Cache) write(ctx context.Context, key string, val any) {
	if c.client == nil || c.ttl <= 0 {
		return
	}

	data, err := json.Marshal(val)
	if err != nil {
		c.log.Error("RulesCache: marshal %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("RulesCache: set %s failed: %v", key, err)
	}
}

func businessHoursKey(weekday domain.Weekday) string {
	return fmt.Sprintf("%sbusiness_hours:%d", keyPrefix, weekday)
}

func providerKey(providerID int64, suffix string) string {
	return fmt.Sprintf("%sprovider:%d:%s", keyPrefix, providerID, suffix)
}
