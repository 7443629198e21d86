package wavelet

import (
	"fmt"
	"math"

	"github.com/spacekit/heliowave/algorithms/common"
)

// DefaultOmega0 is the characteristic frequency of the Morlet wavelet
const DefaultOmega0 = 6.0

// DefaultVoicesPerOctave is the default scale density for generated scale sets
const DefaultVoicesPerOctave = 8

// InvalidRangeError reports an unsatisfiable scale, period, or time-range request
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: %s", e.Reason)
}

// FourierFactor returns the Torrence & Compo conversion factor between a
// Morlet wavelet scale and its equivalent Fourier period.
func FourierFactor(omega0 float64) float64 {
	return (omega0 + math.Sqrt(2+omega0*omega0)) / (4 * math.Pi)
}

// ScaleToPeriod converts a wavelet scale to its equivalent Fourier period
func ScaleToPeriod(scale, omega0 float64) float64 {
	return scale * FourierFactor(omega0)
}

// PeriodToScale converts a Fourier period to the equivalent wavelet scale.
// Exact inverse of ScaleToPeriod.
func PeriodToScale(period, omega0 float64) float64 {
	return period / FourierFactor(omega0)
}

// ScaleSet is the ordered, strictly increasing sequence of wavelet scales
// used by the transform, each paired with its derived Fourier period.
type ScaleSet struct {
	Omega0  float64
	Scales  []float64
	Periods []float64
}

// Len returns the number of scales
func (ss *ScaleSet) Len() int {
	return len(ss.Scales)
}

// NewScaleSet builds a ScaleSet from an explicit scale list
func NewScaleSet(omega0 float64, scales []float64) (*ScaleSet, error) {
	if omega0 <= 0 {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("omega0 must be positive, got %g", omega0)}
	}
	if len(scales) == 0 {
		return nil, &InvalidRangeError{Reason: "empty scale list"}
	}
	for i := 1; i < len(scales); i++ {
		if scales[i] <= scales[i-1] {
			return nil, &InvalidRangeError{Reason: fmt.Sprintf("scales not strictly increasing at index %d", i)}
		}
	}
	if scales[0] <= 0 {
		return nil, &InvalidRangeError{Reason: "scales must be positive"}
	}

	ss := &ScaleSet{
		Omega0:  omega0,
		Scales:  append([]float64(nil), scales...),
		Periods: make([]float64, len(scales)),
	}
	for i, s := range scales {
		ss.Periods[i] = ScaleToPeriod(s, omega0)
	}
	return ss, nil
}

// NewScaleSetFromOctaves builds a ScaleSet of dyadic voices
// s_j = s0 * 2^(j/voicesPerOctave), the Torrence & Compo construction.
// The top voice lands at or below sMax; it is not stretched to hit sMax
// exactly, so scales that are power-of-two multiples of s0 sit exactly on
// the grid.
func NewScaleSetFromOctaves(omega0, s0, sMax float64, voicesPerOctave int) (*ScaleSet, error) {
	if s0 <= 0 || sMax <= s0 {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("need 0 < s0 < sMax, got [%g, %g]", s0, sMax)}
	}
	if voicesPerOctave <= 0 {
		voicesPerOctave = DefaultVoicesPerOctave
	}
	count := int(math.Floor(float64(voicesPerOctave)*math.Log2(sMax/s0))) + 1
	if count < 2 {
		count = 2
	}
	scales := make([]float64, count)
	for j := range scales {
		scales[j] = s0 * math.Pow(2, float64(j)/float64(voicesPerOctave))
	}
	return NewScaleSet(omega0, scales)
}

// NewScaleSetFromPeriodRange builds a ScaleSet covering the requested period
// range [pMin, pMax] for a series of n samples at spacing dt. The request is
// rejected when it has non-positive width or lies entirely outside the
// representable period range [2·dt, n·dt].
func NewScaleSetFromPeriodRange(omega0, pMin, pMax float64, dt float64, n int, voicesPerOctave int) (*ScaleSet, error) {
	if pMax <= pMin {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("period range [%g, %g] has non-positive width", pMin, pMax)}
	}
	if pMin <= 0 {
		return nil, &InvalidRangeError{Reason: "periods must be positive"}
	}
	if dt <= 0 || n < 2 {
		return nil, &InvalidRangeError{Reason: "need at least 2 samples with positive spacing"}
	}
	if pMax < 2*dt || pMin > float64(n)*dt {
		return nil, &InvalidRangeError{
			Reason: fmt.Sprintf("period range [%g, %g] entirely outside representable range [%g, %g]",
				pMin, pMax, 2*dt, float64(n)*dt),
		}
	}
	if voicesPerOctave <= 0 {
		voicesPerOctave = DefaultVoicesPerOctave
	}
	s0 := PeriodToScale(pMin, omega0)
	sMax := PeriodToScale(pMax, omega0)
	count := int(math.Floor(float64(voicesPerOctave)*math.Log2(sMax/s0))) + 1
	if count < 2 {
		count = 2
	}
	// An explicit range pins both requested periods onto the axis, so the
	// grid is endpoint inclusive rather than dyadic.
	return NewScaleSet(omega0, common.LogSpace(s0, sMax, count))
}

// NewDefaultScaleSet distributes dyadic voices between the two-sample
// period and half the series duration.
func NewDefaultScaleSet(omega0 float64, dt float64, n int, voicesPerOctave int) (*ScaleSet, error) {
	if dt <= 0 || n < 4 {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("series too short for default scale range (%d samples)", n)}
	}
	pMin := 2 * dt
	pMax := float64(n) * dt / 2
	return NewScaleSetFromOctaves(omega0, PeriodToScale(pMin, omega0), PeriodToScale(pMax, omega0), voicesPerOctave)
}
