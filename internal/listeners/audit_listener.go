package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rep-admin/internal/events"
	"rep-admin/internal/repositories"
	"rep-admin/pkg/eventbus"
)

// AuditListener пишет каждое изменение в журнал.
type AuditListener struct {
	auditRepo repositories.AuditRepositoryInterface
	logger    *zap.Logger
}

func NewAuditListener(auditRepo repositories.AuditRepositoryInterface, logger *zap.Logger) *AuditListener {
	return &AuditListener{auditRepo: auditRepo, logger: logger.Named("audit_listener")}
}

func (l *AuditListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.MutationPerformedName, l.handle)
}

func (l *AuditListener) handle(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.MutationPerformedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	id, err := l.auditRepo.Create(ctx, e.Entry)
	if err != nil {
		return fmt.Errorf("не удалось записать событие в журнал: %w", err)
	}
	l.logger.Debug("Запись журнала создана",
		zap.Uint64("id", id),
		zap.String("action", e.Entry.Action),
		zap.String("target", e.Entry.TargetType+":"+e.Entry.TargetID),
		zap.String("outcome", e.Entry.Outcome),
	)
	return nil
}
