package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/events"
	"rep-admin/internal/forms"
	"rep-admin/pkg/eventbus"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/filestorage"
	"rep-admin/pkg/utils"
)

// BaseService - общее для сервисов, которые меняют данные на бэкенде:
// журнал изменений и освобождение превью файлов.
type BaseService struct {
	bus     *eventbus.Bus
	storage filestorage.FileStorageInterface
	logger  *zap.Logger
}

func NewBaseService(bus *eventbus.Bus, storage filestorage.FileStorageInterface, logger *zap.Logger) *BaseService {
	return &BaseService{bus: bus, storage: storage, logger: logger}
}

// Audit публикует запись журнала. err == nil означает успех.
func (s *BaseService) Audit(ctx context.Context, entry entities.AuditEntry, err error) {
	if s.bus == nil {
		return
	}
	if session, sErr := utils.GetSessionFromCtx(ctx); sErr == nil {
		entry.OperatorID = session.OperatorID
		entry.OperatorEmail = session.Email
	}
	entry.RequestID = utils.GetRequestIDFromCtx(ctx)
	entry.Outcome = outcomeOf(err)
	if err != nil {
		entry.Message = err.Error()
	}
	s.bus.Publish(ctx, events.MutationPerformedEvent{Entry: entry})
}

func outcomeOf(err error) string {
	if err == nil {
		return entities.AuditOutcomeSuccess
	}
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrConfirmationRequired),
		errors.Is(err, apperrors.ErrActionInProgress):
		return entities.AuditOutcomeRejected
	}
	return entities.AuditOutcomeFailure
}

// ReleaseFiles удаляет превью, которые больше никому не нужны.
func (s *BaseService) ReleaseFiles(refs []forms.FileRef) {
	for _, ref := range refs {
		if ref.Path == "" {
			continue
		}
		if err := s.storage.Delete(ref.Path); err != nil {
			s.logger.Warn("Не удалось удалить превью файла", zap.String("path", ref.Path), zap.Error(err))
		}
	}
}
