package timeseries

import (
	"math"

	"github.com/spacekit/heliowave/algorithms/common"
	"github.com/spacekit/heliowave/logging"
)

// Default relative spread of successive time deltas below which a series is
// considered uniformly sampled.
const defaultSpacingTolerance = 1e-3

// Resampler normalizes a possibly irregular or gappy time series onto a
// uniform time grid by linear interpolation. An already-uniform, finite
// series passes through unchanged.
type Resampler struct {
	// SamplingPeriod overrides the detected spacing when > 0. The median
	// of the successive time deltas is used otherwise.
	SamplingPeriod float64

	// Tolerance is the relative delta spread accepted as uniform.
	// Zero means the default.
	Tolerance float64

	logger logging.Logger
}

// NewResampler creates a Resampler with spacing auto-detection
func NewResampler() *Resampler {
	return &Resampler{
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{
			"component": "resampler",
		}),
	}
}

// Resample normalizes ts onto a uniform grid. The returned series owns its
// buffers; ts is never mutated.
func (r *Resampler) Resample(ts *TimeSeries) (*UniformTimeSeries, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	if r.logger == nil {
		r.logger = logging.GetGlobalLogger()
	}

	n := ts.Len()
	deltas := make([]float64, n-1)
	for i := 1; i < n; i++ {
		deltas[i-1] = ts.Times[i] - ts.Times[i-1]
	}
	median := common.Median(deltas)
	if median <= 0 {
		return nil, &InvalidInputError{Reason: "non-positive median sample spacing"}
	}

	tol := r.Tolerance
	if tol <= 0 {
		tol = defaultSpacingTolerance
	}
	dt := r.SamplingPeriod
	if dt <= 0 {
		dt = median
	}

	if r.isUniform(deltas, median, tol) && !r.hasGaps(ts) && math.Abs(dt-median) <= tol*median {
		// Already uniform and finite: pass through (idempotence)
		out := &UniformTimeSeries{Dt: median}
		out.Times = append([]float64(nil), ts.Times...)
		out.Channels = make([][]float64, ts.NumChannels())
		for k, ch := range ts.Channels {
			out.Channels[k] = append([]float64(nil), ch...)
		}
		return out, nil
	}

	// Rebuild a regular grid spanning the original time range and
	// interpolate every channel onto it
	start := ts.Times[0]
	span := ts.Times[n-1] - start
	// Tolerant floor keeps the grid inside the original time range
	count := int(math.Floor(span/dt+1e-9)) + 1
	if count < 2 {
		return nil, &InvalidInputError{Reason: "sampling period too large for series time range"}
	}

	grid := make([]float64, count)
	for i := range grid {
		grid[i] = start + float64(i)*dt
	}

	out := &UniformTimeSeries{Dt: dt}
	out.Times = grid
	out.Channels = make([][]float64, ts.NumChannels())
	for k, ch := range ts.Channels {
		out.Channels[k] = common.Interp1(ts.Times, ch, grid)
	}

	r.logger.Debug("resampled irregular series", logging.Fields{
		"samples_in":  n,
		"samples_out": count,
		"dt":          dt,
	})
	return out, nil
}

// isUniform reports whether the delta spread stays within tol of the median
func (r *Resampler) isUniform(deltas []float64, median, tol float64) bool {
	for _, d := range deltas {
		if !common.IsFinite(d) || math.Abs(d-median) > tol*median {
			return false
		}
	}
	return true
}

// hasGaps reports whether any channel contains a non-finite value
func (r *Resampler) hasGaps(ts *TimeSeries) bool {
	for _, ch := range ts.Channels {
		for _, v := range ch {
			if !common.IsFinite(v) {
				return true
			}
		}
	}
	return false
}
