package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "rep-admin/pkg/errors"
)

const lockPrefix = "inflight:"

// ActionGuardInterface не даёт запустить второе действие над той же записью,
// пока первое не завершилось.
type ActionGuardInterface interface {
	Acquire(ctx context.Context, scope string) (release func(), err error)
}

type ActionGuard struct {
	cache  CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewActionGuard(cache CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) ActionGuardInterface {
	return &ActionGuard{cache: cache, ttl: ttl, logger: logger}
}

func (g *ActionGuard) Acquire(ctx context.Context, scope string) (func(), error) {
	key := lockPrefix + scope
	// токен владельца: истёкшая блокировка могла уже достаться другому
	token := uuid.NewString()
	ok, err := g.cache.SetNX(ctx, key, token, g.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrActionInProgress
	}

	release := func() {
		released, err := g.cache.DelIfEqual(context.WithoutCancel(ctx), key, token)
		if err != nil {
			g.logger.Error("Не удалось снять блокировку действия", zap.String("scope", scope), zap.Error(err))
			return
		}
		if !released {
			g.logger.Warn("Блокировка действия истекла до завершения", zap.String("scope", scope))
		}
	}
	return release, nil
}
