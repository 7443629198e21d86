package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanVarianceMedian(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 5.0, Mean(data), 1e-12)
	assert.InDelta(t, 4.0, Variance(data), 1e-12)
	assert.InDelta(t, 4.5, Median(data), 1e-12)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Variance(nil))
	assert.Equal(t, 0.0, Median(nil))
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {1000, 1024}, {1024, 1024}, {4000, 4096},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextPowerOfTwo(tt.in), "n=%d", tt.in)
	}
}

func TestLogSpace(t *testing.T) {
	got := LogSpace(2, 32, 5)
	require.Len(t, got, 5)
	assert.InDelta(t, 2.0, got[0], 1e-12)
	assert.InDelta(t, 32.0, got[4], 1e-9)

	// Constant ratio between neighbors
	for i := 1; i < len(got); i++ {
		assert.InDelta(t, 2.0, got[i]/got[i-1], 1e-9)
	}
}

func TestDemean(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	out := Demean(data)

	assert.InDelta(t, 0.0, Mean(out), 1e-12)
	assert.Equal(t, []float64{1, 2, 3, 4}, data)
}

func TestInterp1(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{0, 10, 20, 30}

	got := Interp1(xs, ys, []float64{0.5, 1.5, 2.25})
	assert.InDelta(t, 5.0, got[0], 1e-12)
	assert.InDelta(t, 15.0, got[1], 1e-12)
	assert.InDelta(t, 22.5, got[2], 1e-12)
}

func TestInterp1SkipsNonFinite(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, math.NaN(), math.NaN(), 30, 40}

	got := Interp1(xs, ys, []float64{1, 2})
	assert.InDelta(t, 10.0, got[0], 1e-12)
	assert.InDelta(t, 20.0, got[1], 1e-12)
}

func TestInterp1ClampsOutOfRange(t *testing.T) {
	xs := []float64{1, 2}
	ys := []float64{10, 20}

	got := Interp1(xs, ys, []float64{0, 3})
	assert.Equal(t, 10.0, got[0])
	assert.Equal(t, 20.0, got[1])
}

func TestMovingAverage(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	got := MovingAverage(data, 3)
	require.Len(t, got, 5)
	assert.InDelta(t, 1.5, got[0], 1e-12) // truncated edge window
	assert.InDelta(t, 2.0, got[1], 1e-12)
	assert.InDelta(t, 3.0, got[2], 1e-12)
	assert.InDelta(t, 4.5, got[4], 1e-12)

	assert.Equal(t, data, MovingAverage(data, 1))
}
