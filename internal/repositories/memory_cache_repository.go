package repositories

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "rep-admin/pkg/errors"
)

type memoryItem struct {
	value     string
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// MemoryCacheRepository - кеш в памяти процесса. Используется в тестах и
// при запуске без Redis (один экземпляр сервиса).
type MemoryCacheRepository struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{items: make(map[string]memoryItem), now: time.Now}
}

func (r *MemoryCacheRepository) getLocked(key string) (memoryItem, bool) {
	item, ok := r.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if item.expired(r.now()) {
		delete(r.items, key)
		return memoryItem{}, false
	}
	return item, true
}

func (r *MemoryCacheRepository) setLocked(key string, value interface{}, expiration time.Duration) {
	item := memoryItem{value: toString(value)}
	if expiration > 0 {
		item.expiresAt = r.now().Add(expiration)
	}
	r.items[key] = item
}

func (r *MemoryCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(key, value, expiration)
	return nil
}

func (r *MemoryCacheRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.getLocked(key)
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return item.value, nil
}

func (r *MemoryCacheRepository) Del(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.items, k)
	}
	return nil
}

func (r *MemoryCacheRepository) Incr(ctx context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, _ := r.getLocked(key)
	var n int64
	if item.value != "" {
		parsed, err := strconv.ParseInt(item.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("значение ключа %s не число: %w", key, err)
		}
		n = parsed
	}
	n++
	item.value = strconv.FormatInt(n, 10)
	r.items[key] = item
	return n, nil
}

func (r *MemoryCacheRepository) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.getLocked(key); ok {
		return false, nil
	}
	r.setLocked(key, value, expiration)
	return true, nil
}

func (r *MemoryCacheRepository) GetDel(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.getLocked(key)
	if !ok {
		return "", apperrors.ErrNotFound
	}
	delete(r.items, key)
	return item.value, nil
}

func (r *MemoryCacheRepository) DelIfEqual(ctx context.Context, key string, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.getLocked(key)
	if !ok || item.value != value {
		return false, nil
	}
	delete(r.items, key)
	return true, nil
}

func (r *MemoryCacheRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for k := range r.items {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if _, ok := r.getLocked(k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(value)
}
