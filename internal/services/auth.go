package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/integrations"
	"rep-admin/internal/repositories"
	"rep-admin/pkg/config"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/service"
	"rep-admin/pkg/types"
	"rep-admin/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*dto.OperatorDTO, error)
	// Authenticate превращает access token в сессию оператора.
	Authenticate(ctx context.Context, accessToken string) (*types.Session, error)
}

type AuthService struct {
	*BaseService
	backend    integrations.Backend
	sessions   repositories.SessionRepositoryInterface
	workspaces repositories.WorkspaceRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	cfg        config.AuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	base *BaseService,
	backend integrations.Backend,
	sessions repositories.SessionRepositoryInterface,
	workspaces repositories.WorkspaceRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	cfg config.AuthConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		BaseService: base,
		backend:     backend,
		sessions:    sessions,
		workspaces:  workspaces,
		cacheRepo:   cacheRepo,
		jwtService:  jwtService,
		cfg:         cfg,
		logger:      logger.Named("auth_service"),
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	login := strings.ToLower(strings.TrimSpace(payload.Email))
	logger := s.logger.With(zap.String("login", login))

	if err := s.checkLockout(ctx, login); err != nil {
		logger.Warn("Вход заблокирован после серии неудачных попыток")
		return nil, err
	}

	result, err := s.backend.Login(ctx, login, payload.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.handleFailedLoginAttempt(ctx, login)
			logger.Warn("Неверный логин или пароль")
			return nil, err
		}
		logger.Error("Бэкенд не смог выполнить вход", zap.Error(err))
		return nil, integrations.ToAppError(err, "Login failed.")
	}
	s.resetLoginAttempts(ctx, login)

	session := &types.Session{
		ID:            uuid.NewString(),
		OperatorID:    result.User.ID,
		Email:         result.User.Email,
		FullName:      result.User.FullName(),
		RepID:         result.User.RepID,
		IsStaff:       result.User.IsStaff,
		UpstreamToken: result.Token,
		CreatedAt:     time.Now(),
	}
	if err := s.sessions.Save(ctx, session, s.jwtService.GetAccessTokenTTL()); err != nil {
		return nil, fmt.Errorf("не удалось сохранить сессию: %w", err)
	}

	accessToken, err := s.jwtService.GenerateToken(session.ID, session.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("не удалось выпустить токен: %w", err)
	}

	logger.Info("Оператор вошёл", zap.Uint64("operatorID", session.OperatorID))
	return &dto.AuthResponseDTO{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.GetAccessTokenTTL().Seconds()),
		Operator:    operatorDTO(session),
	}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*types.Session, error) {
	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Find(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.OperatorID != claims.OperatorID {
		s.logger.Warn("Токен не соответствует сессии", zap.String("sessionID", claims.SessionID))
		return nil, apperrors.ErrInvalidToken
	}
	return session, nil
}

// Logout закрывает все открытые редакторы сессии и удаляет её.
func (s *AuthService) Logout(ctx context.Context) error {
	session, err := utils.GetSessionFromCtx(ctx)
	if err != nil {
		return err
	}

	workspaces, err := s.workspaces.ListBySession(ctx, session.ID)
	if err != nil {
		s.logger.Warn("Не удалось получить workspace сессии", zap.String("sessionID", session.ID), zap.Error(err))
	}
	for _, ws := range workspaces {
		s.ReleaseFiles(ws.CancelAll())
		if err := s.workspaces.Delete(ctx, session.ID, ws.RepID); err != nil {
			s.logger.Warn("Не удалось удалить workspace", zap.String("repID", ws.RepID), zap.Error(err))
		}
	}

	return s.sessions.Delete(ctx, session.ID)
}

func (s *AuthService) Me(ctx context.Context) (*dto.OperatorDTO, error) {
	session, err := utils.GetSessionFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	out := operatorDTO(session)
	return &out, nil
}

func operatorDTO(session *types.Session) dto.OperatorDTO {
	return dto.OperatorDTO{
		ID:       session.OperatorID,
		Email:    session.Email,
		FullName: session.FullName,
		RepID:    session.RepID,
		IsStaff:  session.IsStaff,
	}
}

func (s *AuthService) checkLockout(ctx context.Context, login string) error {
	lockoutKey := fmt.Sprintf("lockout:%s", login)

	// Если ключ существует - вход заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, login string) {
	attemptsKey := fmt.Sprintf("login_attempts:%s", login)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Error("Не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%s", login)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, login string) {
	attemptsKey := fmt.Sprintf("login_attempts:%s", login)
	lockoutKey := fmt.Sprintf("lockout:%s", login)
	_ = s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
