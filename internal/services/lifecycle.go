package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/integrations"
	"rep-admin/internal/repositories"
	"rep-admin/pkg/utils"
)

// lifecycle - общий порядок действий над строками списков (задачи, рассылки):
// блокировка записи, один вызов бэкенда, сброс кеша коллекции, журнал.
type lifecycle struct {
	*BaseService
	queries       repositories.QueryCacheInterface
	guard         repositories.ActionGuardInterface
	confirmations repositories.ConfirmationRepositoryInterface
	logger        *zap.Logger
}

type actionSpec struct {
	scope         string
	collectionKey string
	entry         entities.AuditEntry
	fallback      string
	success       string
}

func (l *lifecycle) run(ctx context.Context, a actionSpec, call func(ctx context.Context) (string, error)) (*dto.ActionResultDTO, error) {
	release, err := l.guard.Acquire(ctx, a.scope)
	if err != nil {
		l.Audit(ctx, a.entry, err)
		return nil, err
	}
	defer release()

	msg, err := call(ctx)
	if err != nil {
		actionErr := integrations.ToActionError(err, a.fallback)
		l.logger.Warn("Действие отклонено бэкендом",
			zap.String("action", a.entry.Action),
			zap.String("target", a.entry.TargetID),
			zap.Error(err),
		)
		l.Audit(ctx, a.entry, actionErr)
		return nil, actionErr
	}

	l.invalidate(ctx, a.collectionKey)
	if msg == "" {
		msg = a.success
	}
	a.entry.Message = msg
	l.Audit(ctx, a.entry, nil)
	return &dto.ActionResultDTO{Message: msg}, nil
}

func (l *lifecycle) invalidate(ctx context.Context, key string) {
	if err := l.queries.Invalidate(ctx, key); err != nil {
		l.logger.Error("Не удалось сбросить кеш коллекции", zap.String("key", key), zap.Error(err))
	}
}

func (l *lifecycle) requestConfirmation(ctx context.Context, target string) (*dto.ConfirmationDTO, error) {
	session, err := utils.GetSessionFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := l.confirmations.Issue(ctx, session.ID, target)
	if err != nil {
		return nil, err
	}
	return &dto.ConfirmationDTO{Token: token, ExpiresIn: int64(time.Until(expiresAt).Seconds())}, nil
}

func (l *lifecycle) confirm(ctx context.Context, token, target string) error {
	session, err := utils.GetSessionFromCtx(ctx)
	if err != nil {
		return err
	}
	return l.confirmations.Consume(ctx, session.ID, token, target)
}

// cachedList читает коллекцию через кеш запросов.
func cachedList[T any](ctx context.Context, queries repositories.QueryCacheInterface, key string, fetch func(ctx context.Context) ([]T, error)) ([]T, error) {
	raw, err := queries.Fetch(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
	if err != nil {
		return nil, err
	}
	items := make([]T, 0)
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
