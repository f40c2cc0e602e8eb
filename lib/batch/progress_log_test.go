package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProgressLog(t *testing.T) {
	t.Run(`readers see lines from their offset`, func(t *testing.T) {
		l := NewProgressLog()
		l.Append("one")
		l.Appendf("two %d", 2)
		lines, closed := l.ReadFrom(1)
		require.False(t, closed)
		require.Len(t, lines, 1)
		require.Equal(t, "two 2", lines[0].Text)
		lines, _ = l.ReadFrom(5)
		require.Empty(t, lines)
		require.Equal(t, 2, l.Len())
	})

	t.Run(`wait wakes up on append`, func(t *testing.T) {
		l := NewProgressLog()
		go func() {
			time.Sleep(20 * time.Millisecond)
			l.Append("late")
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		lines, closed, err := l.Wait(ctx, 0)
		require.Nil(t, err)
		require.False(t, closed)
		require.Equal(t, "late", lines[0].Text)
	})

	t.Run(`closed log ends the reader once exhausted`, func(t *testing.T) {
		l := NewProgressLog()
		l.Append("last")
		l.Close()
		l.Append("dropped")

		lines, closed, err := l.Wait(context.Background(), 0)
		require.Nil(t, err)
		require.True(t, closed)
		require.Len(t, lines, 1)

		lines, closed, err = l.Wait(context.Background(), 1)
		require.Nil(t, err)
		require.True(t, closed)
		require.Empty(t, lines)
	})

	t.Run(`wait honours the context`, func(t *testing.T) {
		l := NewProgressLog()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, _, err := l.Wait(ctx, 0)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
