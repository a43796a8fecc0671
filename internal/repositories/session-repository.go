package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/types"
)

const sessionPrefix = "session:"

type SessionRepositoryInterface interface {
	Save(ctx context.Context, session *types.Session, ttl time.Duration) error
	Find(ctx context.Context, id string) (*types.Session, error)
	Delete(ctx context.Context, id string) error
}

type SessionRepository struct {
	cache CacheRepositoryInterface
}

func NewSessionRepository(cache CacheRepositoryInterface) SessionRepositoryInterface {
	return &SessionRepository{cache: cache}
}

func (r *SessionRepository) Save(ctx context.Context, session *types.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, sessionPrefix+session.ID, data, ttl)
}

func (r *SessionRepository) Find(ctx context.Context, id string) (*types.Session, error) {
	raw, err := r.cache.Get(ctx, sessionPrefix+id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session types.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, apperrors.ErrSessionNotFound
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Del(ctx, sessionPrefix+id)
}
