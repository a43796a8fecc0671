package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "rep-admin/pkg/errors"
)

const confirmPrefix = "confirm:"

// ConfirmationRepositoryInterface - одноразовые токены подтверждения
// разрушительных действий. Токен привязан к сессии и к цели действия.
type ConfirmationRepositoryInterface interface {
	Issue(ctx context.Context, sessionID, target string) (string, time.Time, error)
	Consume(ctx context.Context, sessionID, token, target string) error
}

type ConfirmationRepository struct {
	cache CacheRepositoryInterface
	ttl   time.Duration
}

func NewConfirmationRepository(cache CacheRepositoryInterface, ttl time.Duration) ConfirmationRepositoryInterface {
	return &ConfirmationRepository{cache: cache, ttl: ttl}
}

func (r *ConfirmationRepository) Issue(ctx context.Context, sessionID, target string) (string, time.Time, error) {
	token := uuid.NewString()
	if err := r.cache.Set(ctx, confirmPrefix+token, sessionID+"|"+target, r.ttl); err != nil {
		return "", time.Time{}, err
	}
	return token, time.Now().Add(r.ttl), nil
}

// Consume погашает токен. Токен сгорает даже при несовпадении цели.
func (r *ConfirmationRepository) Consume(ctx context.Context, sessionID, token, target string) error {
	if token == "" {
		return apperrors.ErrConfirmationRequired
	}
	stored, err := r.cache.GetDel(ctx, confirmPrefix+token)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrConfirmationRequired
	}
	if err != nil {
		return err
	}
	if stored != sessionID+"|"+target {
		return apperrors.ErrConfirmationRequired
	}
	return nil
}
