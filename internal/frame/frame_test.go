package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(n int) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := make([]time.Time, n)
	for i := range idx {
		idx[i] = base.Add(time.Duration(i) * 24 * time.Hour)
	}
	return idx
}

func TestNew(t *testing.T) {
	t.Run("ordered index", func(t *testing.T) {
		tbl, err := New(testIndex(3))
		require.NoError(t, err)
		assert.Equal(t, 3, tbl.Len())
		assert.Empty(t, tbl.Columns())
	})

	t.Run("duplicate timestamp", func(t *testing.T) {
		idx := testIndex(3)
		idx[2] = idx[1]
		_, err := New(idx)
		assert.ErrorIs(t, err, ErrUnorderedIndex)
	})

	t.Run("out of order", func(t *testing.T) {
		idx := testIndex(3)
		idx[0], idx[2] = idx[2], idx[0]
		_, err := New(idx)
		assert.ErrorIs(t, err, ErrUnorderedIndex)
	})

	t.Run("empty index", func(t *testing.T) {
		tbl, err := New(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, tbl.Len())
	})
}

func TestSet(t *testing.T) {
	tbl := MustNew(testIndex(3))

	require.NoError(t, tbl.Set("close", []float64{1, 2, 3}))
	require.NoError(t, tbl.Set("volume", []float64{10, 20, 30}))
	require.NoError(t, tbl.Set("SMA_2", []float64{math.NaN(), 1.5, 2.5}))
	assert.Equal(t, []string{"close", "volume", "SMA_2"}, tbl.Columns())

	// Overwrite keeps position.
	require.NoError(t, tbl.Set("volume", []float64{1, 1, 1}))
	assert.Equal(t, []string{"close", "volume", "SMA_2"}, tbl.Columns())
	v, ok := tbl.Column("volume")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1, 1}, v)

	// Names are case-sensitive.
	require.NoError(t, tbl.Set("Close", []float64{4, 5, 6}))
	assert.Equal(t, []string{"close", "volume", "SMA_2", "Close"}, tbl.Columns())

	err := tbl.Set("bad", []float64{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.False(t, tbl.Has("bad"))

	assert.Error(t, tbl.Set("", []float64{1, 2, 3}))
}

func TestRequire(t *testing.T) {
	tbl := MustNew(testIndex(2))
	require.NoError(t, tbl.Set("close", []float64{1, 2}))

	assert.NoError(t, tbl.Require("close"))
	err := tbl.Require("close", "volume")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), "volume")
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := MustNew(testIndex(2))
	require.NoError(t, tbl.Set("close", []float64{1, 2}))

	c := tbl.Clone()
	require.NoError(t, c.Set("close", []float64{9, 9}))
	require.NoError(t, c.Set("extra", []float64{0, 0}))

	orig, _ := tbl.Column("close")
	assert.Equal(t, []float64{1, 2}, orig)
	assert.Equal(t, []string{"close"}, tbl.Columns())
	assert.Equal(t, []string{"close", "extra"}, c.Columns())
}

func TestTail(t *testing.T) {
	tbl := MustNew(testIndex(5))
	require.NoError(t, tbl.Set("close", []float64{1, 2, 3, 4, 5}))

	tail := tbl.Tail(2)
	assert.Equal(t, 2, tail.Len())
	v, _ := tail.Column("close")
	assert.Equal(t, []float64{4, 5}, v)
	assert.Equal(t, tbl.Index()[3:], tail.Index())

	assert.Equal(t, 5, tbl.Tail(10).Len())
	assert.Equal(t, 0, tbl.Tail(-1).Len())
}

func TestRow(t *testing.T) {
	tbl := MustNew(testIndex(2))
	require.NoError(t, tbl.Set("a", []float64{1, 2}))
	require.NoError(t, tbl.Set("b", []float64{3, 4}))

	assert.Equal(t, []float64{2, 4}, tbl.Row(1))
	for _, v := range tbl.Row(7) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestDescribe(t *testing.T) {
	tbl := MustNew(testIndex(5))
	require.NoError(t, tbl.Set("close", []float64{1, 2, 3, 4, 5}))
	require.NoError(t, tbl.Set("SMA_2", []float64{math.NaN(), 1.5, 2.5, 3.5, 4.5}))
	require.NoError(t, tbl.Set("empty", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()}))

	got := tbl.Describe()
	require.Len(t, got, 3)

	assert.Equal(t, "close", got[0].Column)
	assert.Equal(t, 5, got[0].Count)
	assert.InDelta(t, 3.0, got[0].Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(2.5), got[0].Std, 1e-9)
	assert.Equal(t, 1.0, got[0].Min)
	assert.Equal(t, 5.0, got[0].Max)

	assert.Equal(t, 4, got[1].Count)
	assert.InDelta(t, 3.0, got[1].Mean, 1e-9)

	assert.Equal(t, 0, got[2].Count)
	assert.True(t, math.IsNaN(got[2].Mean))

	only := tbl.Describe("SMA_2", "missing")
	require.Len(t, only, 1)
	assert.Equal(t, "SMA_2", only[0].Column)
}
