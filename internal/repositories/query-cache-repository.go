package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rep-admin/internal/entities"
	apperrors "rep-admin/pkg/errors"
)

const (
	queryPrefix      = "query:"
	generationPrefix = "querygen:"
	// noData - кешированный ответ "записи нет".
	noData = "null"
)

// Ключи запросов. Инвалидируется только тот ключ, чьи данные изменились.
func ResourceQueryKey(kind entities.Kind, repID string) string {
	return fmt.Sprintf("%sresource:%s:%s", queryPrefix, kind, repID)
}

func CronJobsQueryKey() string {
	return queryPrefix + "cron-jobs"
}

func DistributionsQueryKey(dtype entities.DistributionType) string {
	return fmt.Sprintf("%sdistributions:%s", queryPrefix, dtype)
}

type QueryCacheInterface interface {
	// Fetch отдаёт закешированный ответ или вызывает fetch. Одновременные
	// запросы одного ключа схлопываются в один вызов.
	Fetch(ctx context.Context, key string, fetch func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error)
	Invalidate(ctx context.Context, keys ...string) error
}

type QueryCache struct {
	cache  CacheRepositoryInterface
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

func NewQueryCache(cache CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) QueryCacheInterface {
	return &QueryCache{cache: cache, ttl: ttl, logger: logger}
}

func (q *QueryCache) Fetch(ctx context.Context, key string, fetch func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	cached, err := q.cache.Get(ctx, key)
	switch {
	case err == nil:
		if cached == noData {
			return nil, nil
		}
		return json.RawMessage(cached), nil
	case !errors.Is(err, apperrors.ErrNotFound):
		q.logger.Warn("Кеш запросов недоступен, идём в бэкенд", zap.String("key", key), zap.Error(err))
	}

	// Запрос, начатый до Invalidate, не схлопывается с новым и не пишет в кеш.
	gen := q.generation(ctx, key)
	v, err, _ := q.group.Do(key+"#"+gen, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		raw, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if q.generation(fetchCtx, key) != gen {
			q.logger.Debug("Ответ устарел до сохранения в кеш", zap.String("key", key))
			return raw, nil
		}
		stored := noData
		if len(raw) > 0 {
			stored = string(raw)
		}
		if err := q.cache.Set(fetchCtx, key, stored, q.ttl); err != nil {
			q.logger.Warn("Не удалось сохранить ответ в кеш", zap.String("key", key), zap.Error(err))
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	raw, _ := v.(json.RawMessage)
	return raw, nil
}

func generationKey(key string) string {
	return generationPrefix + key
}

// generation - номер инвалидации ключа. Пока ключ не сбрасывали, это "0".
func (q *QueryCache) generation(ctx context.Context, key string) string {
	gen, err := q.cache.Get(ctx, generationKey(key))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			q.logger.Warn("Не удалось прочитать поколение ключа", zap.String("key", key), zap.Error(err))
		}
		return "0"
	}
	return gen
}

// Invalidate сначала сдвигает поколение, потом удаляет ответ: запрос, уже
// идущий в бэкенд, свой результат в кеш не положит.
func (q *QueryCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if !strings.HasPrefix(k, queryPrefix) {
			return fmt.Errorf("ключ %s не является ключом запроса", k)
		}
	}
	for _, k := range keys {
		gen, err := q.cache.Incr(ctx, generationKey(k))
		if err != nil {
			return fmt.Errorf("не удалось сдвинуть поколение %s: %w", k, err)
		}
		q.group.Forget(k + "#" + strconv.FormatInt(gen-1, 10))
	}
	return q.cache.Del(ctx, keys...)
}
