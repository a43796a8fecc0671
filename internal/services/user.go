package services

import (
	"context"

	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/internal/integrations"
)

type UserServiceInterface interface {
	Create(ctx context.Context, form entities.NewUser) (*dto.CreatedUserDTO, error)
}

type UserService struct {
	*BaseService
	backend integrations.Backend
	logger  *zap.Logger
}

func NewUserService(base *BaseService, backend integrations.Backend, logger *zap.Logger) *UserService {
	return &UserService{BaseService: base, backend: backend, logger: logger.Named("user_service")}
}

// Create регистрирует представителя. Форма уже проверена; телефоны уходят без форматирования.
// Ошибки бэкенда по полям возвращаются картой полей.
func (s *UserService) Create(ctx context.Context, form entities.NewUser) (*dto.CreatedUserDTO, error) {
	form.Strip()
	entry := entities.AuditEntry{Action: "user.create", TargetType: "user", TargetID: form.RepID, RepID: form.RepID}

	user, err := s.backend.CreateUser(ctx, form)
	if err != nil {
		appErr := integrations.ToAppError(err, "Failed to create user.")
		s.Audit(ctx, entry, appErr)
		return nil, appErr
	}

	s.logger.Info("Создан представитель", zap.String("repID", user.RepID))
	s.Audit(ctx, entry, nil)
	out := dto.NewCreatedUserDTO(user)
	return &out, nil
}
