package timeseries

import (
	"fmt"
	"math"
)

// TimeSeries is an ordered sequence of timestamps (seconds, strictly
// increasing) paired with one or more value channels. Channels are stored
// channel-major: Channels[k][i] is the value of channel k at Times[i].
type TimeSeries struct {
	Times    []float64
	Channels [][]float64
}

// InvalidInputError reports a malformed or degenerate input series
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input series: %s", e.Reason)
}

// NewScalar creates a single-channel time series
func NewScalar(times, values []float64) *TimeSeries {
	return &TimeSeries{
		Times:    times,
		Channels: [][]float64{values},
	}
}

// NewVector creates a multi-channel time series from channel-major data
func NewVector(times []float64, channels [][]float64) *TimeSeries {
	return &TimeSeries{
		Times:    times,
		Channels: channels,
	}
}

// Len returns the number of samples
func (ts *TimeSeries) Len() int {
	return len(ts.Times)
}

// NumChannels returns the number of value channels
func (ts *TimeSeries) NumChannels() int {
	return len(ts.Channels)
}

// Channel returns the values of channel k
func (ts *TimeSeries) Channel(k int) []float64 {
	return ts.Channels[k]
}

// Select returns a single-channel view of channel k sharing the time axis
func (ts *TimeSeries) Select(k int) (*TimeSeries, error) {
	if k < 0 || k >= len(ts.Channels) {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("channel %d out of range [0,%d)", k, len(ts.Channels))}
	}
	return NewScalar(ts.Times, ts.Channels[k]), nil
}

// Validate checks the structural invariants: at least two samples, strictly
// increasing finite timestamps, channel lengths matching the time axis, and
// no channel consisting entirely of non-finite values.
func (ts *TimeSeries) Validate() error {
	if len(ts.Times) < 2 {
		return &InvalidInputError{Reason: fmt.Sprintf("need at least 2 samples, got %d", len(ts.Times))}
	}
	if len(ts.Channels) == 0 {
		return &InvalidInputError{Reason: "no value channels"}
	}
	for i, t := range ts.Times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &InvalidInputError{Reason: fmt.Sprintf("non-finite timestamp at index %d", i)}
		}
		if i > 0 && t <= ts.Times[i-1] {
			return &InvalidInputError{Reason: fmt.Sprintf("timestamps not strictly increasing at index %d", i)}
		}
	}
	for k, ch := range ts.Channels {
		if len(ch) != len(ts.Times) {
			return &InvalidInputError{Reason: fmt.Sprintf("channel %d has %d values for %d timestamps", k, len(ch), len(ts.Times))}
		}
		finite := false
		for _, v := range ch {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				finite = true
				break
			}
		}
		if !finite {
			return &InvalidInputError{Reason: fmt.Sprintf("channel %d is entirely non-finite", k)}
		}
	}
	return nil
}

// UniformTimeSeries is a TimeSeries whose timestamp spacing is constant
// within a small relative tolerance. Produced exclusively by the Resampler.
type UniformTimeSeries struct {
	TimeSeries

	// Dt is the uniform sample spacing in seconds
	Dt float64
}

// Duration returns the time span covered by the series
func (u *UniformTimeSeries) Duration() float64 {
	if len(u.Times) < 2 {
		return 0
	}
	return u.Times[len(u.Times)-1] - u.Times[0]
}
