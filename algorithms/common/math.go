package common

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic numeric helpers shared across the analysis stages, using gonum for
// the statistics

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the population variance of a slice
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	mean := stat.Mean(data, nil)
	sum := 0.0
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(data))
}

// Median calculates the median of a slice
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	m, err := stats.Median(data)
	if err != nil {
		return 0.0
	}
	return m
}

// LogSpace returns n logarithmically spaced values between lo and hi inclusive
func LogSpace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	dst := make([]float64, n)
	return floats.LogSpan(dst, lo, hi)
}

// NextPowerOfTwo returns the smallest power of two >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Demean returns a copy of data with its arithmetic mean removed
func Demean(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	if len(out) > 0 {
		floats.AddConst(-stat.Mean(out, nil), out)
	}
	return out
}
