package batch

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run(`second start while running is rejected`, func(t *testing.T) {
		reg := NewRegistry()
		release := make(chan struct{})
		run, err := reg.Start(ctx, func(ctx context.Context, run *Run) (Summary, error) {
			run.Logf("working")
			<-release
			return Summary{Total: 1, Processed: 1}, nil
		})
		require.Nil(t, err)
		require.Equal(t, StateRunning, run.State())
		require.True(t, reg.Running())

		again, err := reg.Start(ctx, func(ctx context.Context, run *Run) (Summary, error) {
			return Summary{}, nil
		})
		require.ErrorIs(t, err, ErrAlreadyRunning)
		require.Equal(t, run.ID, again.ID)

		close(release)
		reg.Wait()
		require.Equal(t, StateCompleted, run.State())
		require.False(t, reg.Running())
		texts := run.Log.Texts()
		require.Equal(t, "working", texts[0])
		require.Contains(t, texts[len(texts)-1], "Batch completed")

		next, err := reg.Start(ctx, func(ctx context.Context, run *Run) (Summary, error) {
			return Summary{}, nil
		})
		require.Nil(t, err)
		require.NotEqual(t, run.ID, next.ID)
		reg.Wait()
		require.Equal(t, next, reg.Latest())
		require.Nil(t, reg.Get(run.ID))
		require.Equal(t, next, reg.Get(""))
	})

	t.Run(`job error fails the run with one terminal line`, func(t *testing.T) {
		reg := NewRegistry()
		run, err := reg.Start(ctx, func(ctx context.Context, run *Run) (Summary, error) {
			return Summary{}, errors.New("dataset unreadable")
		})
		require.Nil(t, err)
		reg.Wait()
		st := run.Status()
		require.Equal(t, StateFailed, st.State)
		require.Equal(t, "dataset unreadable", st.Reason)
		require.NotNil(t, st.FinishedAt)
		require.Equal(t, []string{"Batch failed: dataset unreadable"}, run.Log.Texts())
	})

	t.Run(`panic is recovered`, func(t *testing.T) {
		reg := NewRegistry()
		run, err := reg.Start(ctx, func(ctx context.Context, run *Run) (Summary, error) {
			panic("boom")
		})
		require.Nil(t, err)
		reg.Wait()
		require.Equal(t, StateFailed, run.State())
		texts := run.Log.Texts()
		require.Len(t, texts, 1)
		require.Contains(t, texts[0], "boom")
		_, closed := run.Log.ReadFrom(0)
		require.True(t, closed)
	})
}
