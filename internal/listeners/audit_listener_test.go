package listeners

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rep-admin/internal/entities"
	"rep-admin/internal/events"
	"rep-admin/pkg/eventbus"
)

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []entities.AuditEntry
	err     error
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry entities.AuditEntry) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.entries = append(f.entries, entry)
	return uint64(len(f.entries)), nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter entities.AuditFilter) ([]entities.AuditEntry, uint64, error) {
	return f.entries, uint64(len(f.entries)), nil
}

func TestAuditListener_WritesEntry(t *testing.T) {
	repo := &fakeAuditRepo{}
	bus := eventbus.New(zap.NewNop())
	NewAuditListener(repo, zap.NewNop()).Register(bus)

	bus.Publish(context.Background(), events.MutationPerformedEvent{Entry: entities.AuditEntry{
		Action: "submit", TargetType: "socials", Outcome: entities.AuditOutcomeSuccess,
	}})
	bus.Wait()

	require.Len(t, repo.entries, 1)
	assert.Equal(t, "socials", repo.entries[0].TargetType)
}

func TestAuditListener_RepoErrorIsReturned(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("db down")}
	l := NewAuditListener(repo, zap.NewNop())

	err := l.handle(context.Background(), events.MutationPerformedEvent{})
	assert.Error(t, err)
}
