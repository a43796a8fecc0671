package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rep-admin/internal/entities"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/types"
)

func TestWorkspaceRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkspaceRepository(NewMemoryCacheRepository(), time.Hour, zap.NewNop())

	ws, err := repo.Load(ctx, "s1", "rep-1")
	require.NoError(t, err)
	assert.Empty(t, ws.Cards)

	card := ws.Card(entities.KindSocials)
	card.Editing = true
	card.Loaded = true
	require.NoError(t, repo.Save(ctx, ws))

	loaded, err := repo.Load(ctx, "s1", "rep-1")
	require.NoError(t, err)
	assert.True(t, loaded.Card(entities.KindSocials).Editing)

	other, err := repo.Load(ctx, "s2", "rep-1")
	require.NoError(t, err)
	assert.False(t, other.Card(entities.KindSocials).Editing)

	list, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rep-1", list[0].RepID)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewMemoryCacheRepository())

	_, err := repo.Find(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, &types.Session{ID: "s1", OperatorID: 3, UpstreamToken: "t"}, time.Hour))
	session, err := repo.Find(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "t", session.UpstreamToken)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Find(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestConfirmationRepository_OneShot(t *testing.T) {
	ctx := context.Background()
	repo := NewConfirmationRepository(NewMemoryCacheRepository(), time.Minute)

	token, expires, err := repo.Issue(ctx, "s1", "cron-job:5")
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	require.NoError(t, repo.Consume(ctx, "s1", token, "cron-job:5"))
	assert.ErrorIs(t, repo.Consume(ctx, "s1", token, "cron-job:5"), apperrors.ErrConfirmationRequired)
}

func TestConfirmationRepository_WrongTargetBurnsToken(t *testing.T) {
	ctx := context.Background()
	repo := NewConfirmationRepository(NewMemoryCacheRepository(), time.Minute)

	token, _, err := repo.Issue(ctx, "s1", "cron-job:5")
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Consume(ctx, "s1", token, "cron-job:6"), apperrors.ErrConfirmationRequired)
	assert.ErrorIs(t, repo.Consume(ctx, "s1", token, "cron-job:5"), apperrors.ErrConfirmationRequired)
	assert.ErrorIs(t, repo.Consume(ctx, "s1", "", "cron-job:5"), apperrors.ErrConfirmationRequired)
}

func TestActionGuard(t *testing.T) {
	ctx := context.Background()
	guard := NewActionGuard(NewMemoryCacheRepository(), time.Minute, zap.NewNop())

	release, err := guard.Acquire(ctx, "cron-job:1")
	require.NoError(t, err)

	_, err = guard.Acquire(ctx, "cron-job:1")
	assert.ErrorIs(t, err, apperrors.ErrActionInProgress)

	other, err := guard.Acquire(ctx, "cron-job:2")
	require.NoError(t, err)
	other()

	release()
	again, err := guard.Acquire(ctx, "cron-job:1")
	require.NoError(t, err)
	again()
}

func TestActionGuard_ExpiredReleaseKeepsNewOwner(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCacheRepository()
	clock := time.Now()
	cache.now = func() time.Time { return clock }
	guard := NewActionGuard(cache, time.Minute, zap.NewNop())

	stale, err := guard.Acquire(ctx, "distribution:7")
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	current, err := guard.Acquire(ctx, "distribution:7")
	require.NoError(t, err)

	stale()
	_, err = guard.Acquire(ctx, "distribution:7")
	assert.ErrorIs(t, err, apperrors.ErrActionInProgress)

	current()
	again, err := guard.Acquire(ctx, "distribution:7")
	require.NoError(t, err)
	again()
}

func TestQueryCache_CachesAndInvalidatesOneKey(t *testing.T) {
	ctx := context.Background()
	qc := NewQueryCache(NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	var calls int32

	fetch := func(body string) func(context.Context) (json.RawMessage, error) {
		return func(context.Context) (json.RawMessage, error) {
			atomic.AddInt32(&calls, 1)
			if body == "" {
				return nil, nil
			}
			return json.RawMessage(body), nil
		}
	}

	socials := ResourceQueryKey(entities.KindSocials, "r1")
	branding := ResourceQueryKey(entities.KindBranding, "r1")

	raw, err := qc.Fetch(ctx, socials, fetch(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
	_, _ = qc.Fetch(ctx, socials, fetch(`{"a":2}`))

	raw, err = qc.Fetch(ctx, branding, fetch(""))
	require.NoError(t, err)
	assert.Nil(t, raw)
	raw, _ = qc.Fetch(ctx, branding, fetch(`{"b":1}`))
	assert.Nil(t, raw, "no-data answer is cached too")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	require.NoError(t, qc.Invalidate(ctx, socials))
	raw, _ = qc.Fetch(ctx, socials, fetch(`{"a":3}`))
	assert.JSONEq(t, `{"a":3}`, string(raw))
	raw, _ = qc.Fetch(ctx, branding, fetch(`{"b":2}`))
	assert.Nil(t, raw)
}

func TestQueryCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	qc := NewQueryCache(NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	key := CronJobsQueryKey()

	_, err := qc.Fetch(ctx, key, func(context.Context) (json.RawMessage, error) {
		return nil, errors.New("down")
	})
	assert.Error(t, err)

	raw, err := qc.Fetch(ctx, key, func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(`[]`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestQueryCache_CollapsesConcurrentFetches(t *testing.T) {
	ctx := context.Background()
	qc := NewQueryCache(NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	var calls int32
	gate := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = qc.Fetch(ctx, DistributionsQueryKey(entities.DistributionEcard), func(context.Context) (json.RawMessage, error) {
				atomic.AddInt32(&calls, 1)
				<-gate
				return json.RawMessage(`[]`), nil
			})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueryCache_InvalidateDuringFetchDropsStaleAnswer(t *testing.T) {
	ctx := context.Background()
	qc := NewQueryCache(NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	key := ResourceQueryKey(entities.KindBranding, "r1")

	started := make(chan struct{})
	gate := make(chan struct{})
	oldDone := make(chan json.RawMessage, 1)
	go func() {
		raw, _ := qc.Fetch(ctx, key, func(context.Context) (json.RawMessage, error) {
			close(started)
			<-gate
			return json.RawMessage(`"old"`), nil
		})
		oldDone <- raw
	}()
	<-started

	require.NoError(t, qc.Invalidate(ctx, key))
	raw, err := qc.Fetch(ctx, key, func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(`"new"`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `"new"`, string(raw))

	close(gate)
	assert.Equal(t, `"old"`, string(<-oldDone))

	raw, err = qc.Fetch(ctx, key, func(context.Context) (json.RawMessage, error) {
		return nil, errors.New("backend must not be called")
	})
	require.NoError(t, err)
	assert.Equal(t, `"new"`, string(raw))
}

func TestQueryCache_SharedFetchIgnoresCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	qc := NewQueryCache(NewMemoryCacheRepository(), time.Minute, zap.NewNop())

	raw, err := qc.Fetch(ctx, CronJobsQueryKey(), func(fetchCtx context.Context) (json.RawMessage, error) {
		if err := fetchCtx.Err(); err != nil {
			return nil, err
		}
		return json.RawMessage(`[]`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestQueryCache_RejectsForeignKeys(t *testing.T) {
	qc := NewQueryCache(NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	assert.Error(t, qc.Invalidate(context.Background(), "session:s1"))
}
