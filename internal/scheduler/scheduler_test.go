package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func TestTaskWithRecover(t *testing.T) {
	notifier := &fakeNotifier{}
	s, err := New(notifier)
	require.NoError(t, err)

	t.Run("success is silent and carries a request id", func(t *testing.T) {
		var rqID string
		s.taskWithRecover(func(ctx context.Context) error {
			rqID = utils.GetRequestIDFromCtx(ctx)
			return nil
		}, "ok")(context.Background())

		assert.NotEmpty(t, rqID)
		assert.Equal(t, 0, notifier.count())
	})

	t.Run("failure is notified", func(t *testing.T) {
		s.taskWithRecover(func(context.Context) error {
			return errors.New("quote api down")
		}, "refresh prices")(context.Background())

		require.Equal(t, 1, notifier.count())
		assert.Equal(t, `Job "refresh prices" failed: quote api down`, notifier.messages[0])
	})

	t.Run("panic is recovered and notified", func(t *testing.T) {
		assert.NotPanics(t, func() {
			s.taskWithRecover(func(context.Context) error {
				panic("boom")
			}, "sync assets")(context.Background())
		})
		require.Equal(t, 2, notifier.count())
		assert.Contains(t, notifier.messages[1], "panicked: boom")
	})
}

func TestIntervalJobRuns(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	runs := make(chan struct{}, 1)
	require.NoError(t, s.NewIntervalJob("tick", func(context.Context) error {
		select {
		case runs <- struct{}{}:
		default:
		}
		return nil
	}, time.Hour, true))

	s.Start()
	defer s.Stop()

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not start immediately")
	}
}

func TestInvalidCrontab(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	assert.Error(t, s.NewCrontabJob("bad", func(context.Context) error { return nil }, "not a crontab", false))
}
