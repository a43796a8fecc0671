package services

import (
	"context"

	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/repositories"
)

type AuditServiceInterface interface {
	List(ctx context.Context, filter entities.AuditFilter) ([]entities.AuditEntry, uint64, error)
}

type AuditService struct {
	auditRepo repositories.AuditRepositoryInterface
	logger    *zap.Logger
}

func NewAuditService(auditRepo repositories.AuditRepositoryInterface, logger *zap.Logger) *AuditService {
	return &AuditService{auditRepo: auditRepo, logger: logger}
}

func (s *AuditService) List(ctx context.Context, filter entities.AuditFilter) ([]entities.AuditEntry, uint64, error) {
	entries, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Не удалось получить журнал изменений", zap.Error(err))
		return nil, 0, err
	}
	return entries, total, nil
}
