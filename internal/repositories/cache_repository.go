package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface - key/value хранилище с TTL. Отсутствующий ключ
// возвращается как apperrors.ErrNotFound.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	// SetNX записывает значение, только если ключа ещё нет.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	// GetDel читает и удаляет ключ одной операцией.
	GetDel(ctx context.Context, key string) (string, error)
	// DelIfEqual удаляет ключ, только если в нём лежит value.
	DelIfEqual(ctx context.Context, key string, value string) (bool, error)
	// Keys возвращает ключи с данным префиксом.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
