package utils

import (
	"context"

	"rep-admin/pkg/contextkeys"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/types"
)

func WithSession(ctx context.Context, session *types.Session) context.Context {
	return context.WithValue(ctx, contextkeys.SessionKey, session)
}

func GetSessionFromCtx(ctx context.Context) (*types.Session, error) {
	session, ok := ctx.Value(contextkeys.SessionKey).(*types.Session)
	if !ok || session == nil {
		return nil, apperrors.ErrSessionNotFoundInContext
	}
	return session, nil
}

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}
