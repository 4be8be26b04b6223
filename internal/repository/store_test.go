package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	operations []string
	durations  []time.Duration
}

func (o *recordingObserver) ObserveStoreQuery(operation string, duration time.Duration) {
	o.operations = append(o.operations, operation)
	o.durations = append(o.durations, duration)
}

func TestStoreObserve(t *testing.T) {
	t.Run("reports the named operation with elapsed time", func(t *testing.T) {
		obs := &recordingObserver{}
		s := store{observer: obs}

		func() {
			defer s.observe("users.findByEmail", time.Now())
			time.Sleep(time.Millisecond)
		}()

		require.Len(t, obs.operations, 1)
		assert.Equal(t, "users.findByEmail", obs.operations[0])
		assert.GreaterOrEqual(t, obs.durations[0], time.Millisecond)
	})

	t.Run("nil observer drops timings", func(t *testing.T) {
		s := store{}
		assert.NotPanics(t, func() {
			s.observe("courses.findByID", time.Now())
		})
	})
}

func TestStoreOpContext(t *testing.T) {
	t.Run("applies the configured query timeout", func(t *testing.T) {
		s := store{timeout: time.Minute}
		ctx, cancel := s.opContext(context.Background())
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
	})

	t.Run("zero timeout leaves the context untouched", func(t *testing.T) {
		s := store{}
		parent := context.Background()
		ctx, cancel := s.opContext(parent)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok)
		assert.Equal(t, parent, ctx)
	})

	t.Run("keeps an earlier parent deadline", func(t *testing.T) {
		s := store{timeout: time.Minute}
		parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
		defer parentCancel()

		ctx, cancel := s.opContext(parent)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
	})
}
