package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/types"
	"rep-admin/pkg/utils"
)

// SessionAuthenticator превращает access token в сессию оператора.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*types.Session, error)
}

type AuthMiddleware struct {
	authenticator SessionAuthenticator
	logger        *zap.Logger
}

func NewAuthMiddleware(authenticator SessionAuthenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// Auth пропускает запрос дальше только с действующей сессией.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		// Формат "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		ctx := c.Request().Context()
		session, err := m.authenticator.Authenticate(ctx, parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Сессия не подтверждена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		c.SetRequest(c.Request().WithContext(utils.WithSession(ctx, session)))
		m.logger.Debug("AuthMiddleware: Оператор аутентифицирован", zap.Uint64("operatorID", session.OperatorID))

		return next(c)
	}
}

// RequireStaff закрывает операции, доступные только сотрудникам.
func (m *AuthMiddleware) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := utils.GetSessionFromCtx(c.Request().Context())
		if err != nil {
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}
		if !session.IsStaff {
			m.logger.Warn("AuthMiddleware: Недостаточно прав", zap.Uint64("operatorID", session.OperatorID))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
		return next(c)
	}
}
