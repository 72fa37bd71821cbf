package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_ShortSeries(t *testing.T) {
	for _, s := range [][]float64{nil, {}, {1}, {1, 2}} {
		assert.Equal(t, State{}, Classify(s, 3), "series %v", s)
	}
}

func TestClassify_RisingSeries(t *testing.T) {
	st := Classify([]float64{10, 20, 30, 40, 50}, 3)
	assert.True(t, st.Rising)
	assert.False(t, st.Falling)
	assert.False(t, st.LocalMin)
	assert.False(t, st.LocalMax)
}

func TestClassify_LocalMinimumAtTrough(t *testing.T) {
	series := []float64{100, 95, 90, 85, 88, 92, 95}

	st := Classify(series[:5], 3)
	assert.True(t, st.LocalMin, "85 < 90 and 88 > 85")
	assert.False(t, st.LocalMax)
	assert.True(t, st.Falling, "88 is still below 90")

	st = Classify(series[:6], 3)
	assert.False(t, st.LocalMin)
	assert.True(t, st.Rising, "92 > 85")
}

func TestClassify_LocalMaximum(t *testing.T) {
	st := Classify([]float64{1, 5, 3}, 3)
	assert.True(t, st.LocalMax)
	assert.False(t, st.LocalMin)
	assert.True(t, st.Rising, "3 > 1")
}

func TestClassify_MinAndMaxExclusive(t *testing.T) {
	series := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9, 3, 2, 3, 8, 4, 6}
	for i := 3; i <= len(series); i++ {
		st := Classify(series[:i], 3)
		assert.False(t, st.LocalMin && st.LocalMax, "bar %d", i-1)
	}
}

func TestClassify_Lookback(t *testing.T) {
	series := []float64{50, 10, 20, 30, 40}
	assert.True(t, Classify(series, 3).Rising)
	assert.False(t, Classify(series, 5).Rising)
	assert.True(t, Classify(series, 5).Falling)
	// lookback larger than the series leaves direction undefined
	st := Classify(series, 10)
	assert.False(t, st.Rising)
	assert.False(t, st.Falling)
	// invalid lookback falls back to the default
	assert.Equal(t, Classify(series, 3), Classify(series, 0))
}

func TestClassify_NonFinite(t *testing.T) {
	tests := [][]float64{
		{1, 2, math.NaN()},
		{1, math.Inf(1), 2},
		{math.Inf(-1), 0, 2},
	}
	for _, s := range tests {
		assert.Equal(t, State{}, Classify(s, 3))
	}
	// a NaN at the lookback reference also undefines the shape
	assert.Equal(t, State{}, Classify([]float64{math.NaN(), 1, 2, 1, 3}, 5))
}

func TestCrosses(t *testing.T) {
	assert.True(t, CrossedAbove([]float64{1, 3}, []float64{2, 2}))
	assert.False(t, CrossedAbove([]float64{3, 4}, []float64{2, 2}))
	assert.True(t, CrossedBelow([]float64{3, 1}, []float64{2, 2}))
	assert.False(t, CrossedBelow([]float64{1}, []float64{2}))
	assert.False(t, CrossedAbove([]float64{math.NaN(), 3}, []float64{2, 2}))
}
