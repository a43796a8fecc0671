package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rep-admin/internal/forms"
	apperrors "rep-admin/pkg/errors"
)

const workspacePrefix = "workspace:"

type WorkspaceRepositoryInterface interface {
	// Load возвращает сохранённое состояние или новое пустое.
	Load(ctx context.Context, sessionID, repID string) (*forms.Workspace, error)
	Save(ctx context.Context, ws *forms.Workspace) error
	Delete(ctx context.Context, sessionID, repID string) error
	ListBySession(ctx context.Context, sessionID string) ([]*forms.Workspace, error)
}

type WorkspaceRepository struct {
	cache  CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewWorkspaceRepository(cache CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) WorkspaceRepositoryInterface {
	return &WorkspaceRepository{cache: cache, ttl: ttl, logger: logger}
}

func workspaceKey(sessionID, repID string) string {
	return fmt.Sprintf("%s%s:%s", workspacePrefix, sessionID, repID)
}

func (r *WorkspaceRepository) Load(ctx context.Context, sessionID, repID string) (*forms.Workspace, error) {
	raw, err := r.cache.Get(ctx, workspaceKey(sessionID, repID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return forms.NewWorkspace(sessionID, repID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения workspace: %w", err)
	}

	ws := forms.NewWorkspace(sessionID, repID)
	if err := json.Unmarshal([]byte(raw), ws); err != nil {
		r.logger.Warn("Повреждённый workspace, начинаем с чистого", zap.String("repID", repID), zap.Error(err))
		return forms.NewWorkspace(sessionID, repID), nil
	}
	return ws, nil
}

func (r *WorkspaceRepository) Save(ctx context.Context, ws *forms.Workspace) error {
	ws.UpdatedAt = time.Now()
	data, err := json.Marshal(ws)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, workspaceKey(ws.SessionID, ws.RepID), data, r.ttl)
}

func (r *WorkspaceRepository) Delete(ctx context.Context, sessionID, repID string) error {
	return r.cache.Del(ctx, workspaceKey(sessionID, repID))
}

func (r *WorkspaceRepository) ListBySession(ctx context.Context, sessionID string) ([]*forms.Workspace, error) {
	keys, err := r.cache.Keys(ctx, workspacePrefix+sessionID+":")
	if err != nil {
		return nil, err
	}
	out := make([]*forms.Workspace, 0, len(keys))
	for _, key := range keys {
		raw, err := r.cache.Get(ctx, key)
		if err != nil {
			continue
		}
		ws := &forms.Workspace{}
		if err := json.Unmarshal([]byte(raw), ws); err != nil {
			continue
		}
		out = append(out, ws)
	}
	return out, nil
}
