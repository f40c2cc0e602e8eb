package baseworker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run(`job repeats and a panic does not stop the worker`, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var calls atomic.Int32
		done := make(chan struct{})
		go func() {
			NewInstance("test", time.Millisecond, time.Millisecond).Run(ctx, func(context.Context) {
				if calls.Add(1) == 1 {
					panic("boom")
				}
			})
			close(done)
		}()
		require.Eventually(t, func() bool { return calls.Load() >= 3 }, 5*time.Second, time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not stop")
		}
	})
}
