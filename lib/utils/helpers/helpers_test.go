package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateHelpers(t *testing.T) {
	t.Run(`ParseDate/FormatDate check`, func(t *testing.T) {
		d, err := ParseDate(" 07-03-1999 ")
		require.Nil(t, err)
		require.Equal(t, time.Date(1999, 3, 7, 0, 0, 0, 0, time.UTC), d)
		require.Equal(t, "07-03-1999", FormatDate(d))

		_, err = ParseDate("1999-03-07")
		require.NotNil(t, err)
	})

	t.Run(`AddDate clamps to month end`, func(t *testing.T) {
		jan31 := time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
		require.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), AddDate(jan31, 0, 1, 0))
		require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), AddDate(jan31, 1, 1, 0))
		require.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), AddDate(jan31, 2, 1, 3))
		require.Equal(t, time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), AddDate(jan31, 0, -1, 0))
		require.Equal(t, time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC), AddDate(jan31, -2, 0, 0))
	})

	t.Run(`DaysBetween check`, func(t *testing.T) {
		a := time.Date(2023, 12, 17, 0, 0, 0, 0, time.UTC)
		b := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.Equal(t, 15, DaysBetween(a, b))
		require.Equal(t, -15, DaysBetween(b, a))
	})
}
