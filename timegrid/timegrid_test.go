package timegrid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vassdrag/lpbuild/timegrid"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewPoints(t *testing.T) {
	t.Run("empty fails", func(t *testing.T) {
		_, err := timegrid.NewPoints(nil)
		require.ErrorIs(t, err, timegrid.ErrEmpty)
	})

	t.Run("single element succeeds", func(t *testing.T) {
		points, err := timegrid.NewPoints([]time.Time{ts("2030-01-01T00:00:00Z")})
		require.NoError(t, err)
		assert.Equal(t, 1, points.Len())
		assert.Equal(t, points.First(), points.Last())
	})

	t.Run("non-increasing fails", func(t *testing.T) {
		_, err := timegrid.NewPoints([]time.Time{
			ts("2030-01-01T00:00:00Z"),
			ts("2030-01-02T00:00:00Z"),
			ts("2030-01-02T00:00:00Z"),
		})
		require.ErrorIs(t, err, timegrid.ErrNotIncreasing)

		_, err = timegrid.NewPoints([]time.Time{
			ts("2030-01-02T00:00:00Z"),
			ts("2030-01-01T00:00:00Z"),
		})
		require.ErrorIs(t, err, timegrid.ErrNotIncreasing)
	})

	t.Run("input slice is copied", func(t *testing.T) {
		input := []time.Time{ts("2030-01-01T00:00:00Z"), ts("2030-01-02T00:00:00Z")}
		points, err := timegrid.NewPoints(input)
		require.NoError(t, err)
		input[0] = ts("2031-06-01T00:00:00Z")
		assert.Equal(t, ts("2030-01-01T00:00:00Z"), points.First())
	})
}

func TestNewRegular(t *testing.T) {
	start := ts("2030-01-01T00:00:00Z")

	t.Run("zero count fails", func(t *testing.T) {
		_, err := timegrid.NewRegular(start, time.Hour, 0)
		require.ErrorIs(t, err, timegrid.ErrBadCount)
	})

	t.Run("non-positive step fails", func(t *testing.T) {
		_, err := timegrid.NewRegular(start, 0, 10)
		require.ErrorIs(t, err, timegrid.ErrBadStep)
		_, err = timegrid.NewRegular(start, -time.Hour, 10)
		require.ErrorIs(t, err, timegrid.ErrBadStep)
	})

	t.Run("ten hourly points", func(t *testing.T) {
		regular, err := timegrid.NewRegular(start, time.Hour, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, regular.Len())
		assert.Equal(t, start, regular.At(0))
		times := regular.Times()
		require.Len(t, times, 10)
		for i := 1; i < len(times); i++ {
			assert.Equal(t, time.Hour, times[i].Sub(times[i-1]))
		}
		assert.Equal(t, start.Add(10*time.Hour), regular.End())
	})
}

func TestNewWindow(t *testing.T) {
	t.Run("whole years succeed", func(t *testing.T) {
		window, err := timegrid.NewWindow("wet", ts("1995-01-01T00:00:00Z"), ts("1998-01-01T00:00:00Z"))
		require.NoError(t, err)
		assert.Equal(t, "wet", window.Name())
		assert.Equal(t, 3, window.Years())
		assert.True(t, window.Contains(ts("1996-07-15T12:00:00Z")))
		assert.False(t, window.Contains(ts("1998-01-01T00:00:00Z")))
	})

	t.Run("misaligned endpoint fails", func(t *testing.T) {
		_, err := timegrid.NewWindow("w", ts("1995-02-01T00:00:00Z"), ts("1998-01-01T00:00:00Z"))
		require.ErrorIs(t, err, timegrid.ErrWindowAligned)
		_, err = timegrid.NewWindow("w", ts("1995-01-01T00:00:00Z"), ts("1998-01-01T06:00:00Z"))
		require.ErrorIs(t, err, timegrid.ErrWindowAligned)
	})

	t.Run("stop must follow start", func(t *testing.T) {
		_, err := timegrid.NewWindow("w", ts("1998-01-01T00:00:00Z"), ts("1998-01-01T00:00:00Z"))
		require.ErrorIs(t, err, timegrid.ErrWindowOrder)
		_, err = timegrid.NewWindow("w", ts("1998-01-01T00:00:00Z"), ts("1995-01-01T00:00:00Z"))
		require.ErrorIs(t, err, timegrid.ErrWindowOrder)
	})
}
