package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pingEvent struct{}

func (pingEvent) Name() string { return "ping" }

func TestBus_PublishCallsEveryListener(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32

	bus.Subscribe("ping", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	bus.Subscribe("ping", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("listener failed")
	})
	bus.Subscribe("pong", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 100)
		return nil
	})

	bus.Publish(context.Background(), pingEvent{})
	bus.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBus_ListenerSurvivesCancelledRequest(t *testing.T) {
	bus := New(zap.NewNop())
	var ctxErr atomic.Value

	bus.Subscribe("ping", func(ctx context.Context, event Event) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	})

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(reqCtx, pingEvent{})
	bus.Wait()

	assert.Equal(t, true, ctxErr.Load())
}
