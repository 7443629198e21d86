package wavelet

import (
	"math"
	"math/cmplx"

	"github.com/spacekit/heliowave/algorithms/common"
)

// PowerOptions selects the normalization applied to extracted power.
// The two modes compose: the fraction-of-variance division is applied
// first, then the explicit constant.
type PowerOptions struct {
	// Fraction divides power by the channel's total variance
	Fraction bool

	// NormVal divides power by an explicit constant when > 0
	NormVal float64
}

// PowerResult holds the real power and phase surfaces of one channel
type PowerResult struct {
	Times   []float64
	Periods []float64

	// Power[t][j] = |W[t][j]|^2, normalized per PowerOptions
	Power [][]float64

	// Phase[t][j] in radians, (-pi, pi]
	Phase [][]float64
}

// Power derives the power and phase surfaces from a coefficient surface.
// channel is the original (resampled) channel the surface was computed
// from; it is only read when fraction-of-variance normalization is on.
// A zero-variance channel under that mode yields NaN power, not an error.
func Power(cs *CoefficientSurface, channel []float64, opts PowerOptions) *PowerResult {
	norm := 1.0
	if opts.Fraction {
		norm = common.Variance(channel)
	}
	if opts.NormVal > 0 {
		norm *= opts.NormVal
	}

	res := &PowerResult{
		Times:   cs.Times,
		Periods: cs.Scales.Periods,
		Power:   make([][]float64, len(cs.Coeffs)),
		Phase:   make([][]float64, len(cs.Coeffs)),
	}
	for t, row := range cs.Coeffs {
		pow := make([]float64, len(row))
		ph := make([]float64, len(row))
		for j, w := range row {
			p := real(w)*real(w) + imag(w)*imag(w)
			if norm == 0 {
				pow[j] = math.NaN()
			} else {
				pow[j] = p / norm
			}
			ph[j] = cmplx.Phase(w)
		}
		res.Power[t] = pow
		res.Phase[t] = ph
	}
	return res
}
