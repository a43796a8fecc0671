package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/events"
	"rep-admin/internal/integrations/mock"
	"rep-admin/internal/repositories"
	"rep-admin/pkg/config"
	"rep-admin/pkg/customvalidator"
	"rep-admin/pkg/eventbus"
	"rep-admin/pkg/filestorage"
	"rep-admin/pkg/service"
	"rep-admin/pkg/types"
	"rep-admin/pkg/utils"
)

const testRepID = "R1"

// harness собирает сервисы на бэкенде в памяти и кеше в памяти.
type harness struct {
	backend    *mock.MockProvider
	cache      *repositories.MemoryCacheRepository
	storage    filestorage.FileStorageInterface
	bus        *eventbus.Bus
	workspaces repositories.WorkspaceRepositoryInterface
	sessions   repositories.SessionRepositoryInterface

	profile       *ProfileService
	cronJobs      *CronJobService
	distributions *DistributionService
	auth          *AuthService
	users         *UserService

	mu      sync.Mutex
	audited []entities.AuditEntry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()

	storage, err := filestorage.NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)
	cv, err := customvalidator.New()
	require.NoError(t, err)

	h := &harness{
		backend: mock.NewMockProvider(),
		cache:   repositories.NewMemoryCacheRepository(),
		storage: storage,
		bus:     eventbus.New(logger),
	}
	h.bus.Subscribe(events.MutationPerformedName, func(ctx context.Context, event eventbus.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.audited = append(h.audited, event.(events.MutationPerformedEvent).Entry)
		return nil
	})

	queries := repositories.NewQueryCache(h.cache, time.Minute, logger)
	guard := repositories.NewActionGuard(h.cache, time.Minute, logger)
	confirmations := repositories.NewConfirmationRepository(h.cache, time.Minute)
	h.workspaces = repositories.NewWorkspaceRepository(h.cache, time.Hour, logger)
	h.sessions = repositories.NewSessionRepository(h.cache)

	base := NewBaseService(h.bus, storage, logger)
	h.profile = NewProfileService(base, h.backend, queries, h.workspaces, guard, storage, cv, logger)
	h.cronJobs = NewCronJobService(base, h.backend, queries, guard, confirmations, logger)
	h.distributions = NewDistributionService(base, h.backend, queries, guard, confirmations, logger)
	h.auth = NewAuthService(base, h.backend, h.sessions, h.workspaces, h.cache,
		service.NewJWTService("secret", time.Hour, logger),
		config.AuthConfig{MaxLoginAttempts: 3, LockoutDuration: time.Minute},
		logger,
	)
	h.users = NewUserService(base, h.backend, logger)
	return h
}

// ctx - запрос оператора с уже открытой сессией.
func (h *harness) ctx() context.Context {
	return utils.WithSession(context.Background(), &types.Session{
		ID:            "session-1",
		OperatorID:    1,
		Email:         "operator@example.com",
		UpstreamToken: "upstream",
	})
}

func (h *harness) auditLog() []entities.AuditEntry {
	h.bus.Wait()
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]entities.AuditEntry(nil), h.audited...)
}

func (h *harness) countCalls(method string, kind entities.Kind) int {
	n := 0
	for _, c := range h.backend.Calls(method) {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
