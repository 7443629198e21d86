package rotate

import (
	"fmt"
	"math"

	"github.com/spacekit/heliowave/algorithms/common"
	"github.com/spacekit/heliowave/algorithms/wavelet"
)

// InsufficientChannelsError reports a rotation request with fewer than two
// vector components
type InsufficientChannelsError struct {
	Got int
}

func (e *InsufficientChannelsError) Error() string {
	return fmt.Sprintf("field-aligned rotation needs at least 2 channels, got %d", e.Got)
}

// Basis is a per-time-sample orthonormal field-aligned basis. Par points
// along the background field direction; Perp1 and Perp2 complete the
// right-handed triad. Weight carries the reference magnitude-ratio factor
// applied to rotated power.
type Basis struct {
	Par    [][3]float64
	Perp1  [][3]float64
	Perp2  [][3]float64
	Weight []float64
}

// Options controls how rotated output is formed.
//
// The composition order is a fixed contract: projection onto the basis
// first, then the magnitude-ratio weight, then the Kolmogorov
// normalization.
type Options struct {
	// RotatePow projects raw per-channel power onto the basis instead of
	// projecting coefficients before squaring
	RotatePow bool

	// Kolom multiplies rotated power by period^(-5/3) for comparison
	// against a Kolmogorov spectral law
	Kolom bool

	// SmoothWindow is the sample count for the background-direction
	// estimate. Zero picks n/8, clamped to [3, n].
	SmoothWindow int
}

// Result holds the rotated power surfaces
type Result struct {
	Times   []float64
	Periods []float64

	// ParPower is the power parallel to the background field
	ParPower [][]float64

	// PerpPower is the summed perpendicular power
	PerpPower [][]float64

	// ParRatio = ParPower / (ParPower + PerpPower), in [0, 1]
	ParRatio [][]float64
}

// Rotator projects per-channel wavelet power into a field-aligned basis
type Rotator struct {
	opts Options
}

// New creates a Rotator
func New(opts Options) *Rotator {
	return &Rotator{opts: opts}
}

// BuildBasis derives the per-time field-aligned basis from the channel
// values. The parallel direction is the boxcar-smoothed background vector;
// magRatio, when non-nil, supplies the instantaneous-to-reference magnitude
// ratio applied as a weight to rotated power and must match the time axis.
func (r *Rotator) BuildBasis(channels [][]float64, magRatio []float64) (*Basis, error) {
	if len(channels) < 2 {
		return nil, &InsufficientChannelsError{Got: len(channels)}
	}
	n := len(channels[0])
	if magRatio != nil && len(magRatio) != n {
		return nil, fmt.Errorf("magnitude-ratio series has %d samples, channels have %d", len(magRatio), n)
	}

	window := r.opts.SmoothWindow
	if window <= 0 {
		window = n / 8
	}
	window = max(min(window, n), 3)

	// Background field: boxcar-smoothed components, zero for a missing
	// third channel
	var bg [3][]float64
	for k := range bg {
		if k < len(channels) {
			bg[k] = common.MovingAverage(channels[k], window)
		} else {
			bg[k] = make([]float64, n)
		}
	}

	basis := &Basis{
		Par:    make([][3]float64, n),
		Perp1:  make([][3]float64, n),
		Perp2:  make([][3]float64, n),
		Weight: make([]float64, n),
	}
	for t := 0; t < n; t++ {
		par := unit([3]float64{bg[0][t], bg[1][t], bg[2][t]})
		cp := crossProduct(par, [3]float64{0, 0, 1})
		var perp1 [3]float64
		if norm(cp) < 1e-12 {
			// Background along z; any x works
			perp1 = [3]float64{1, 0, 0}
		} else {
			perp1 = unit(cp)
		}
		perp2 := crossProduct(par, perp1)

		basis.Par[t] = par
		basis.Perp1[t] = perp1
		basis.Perp2[t] = perp2
		if magRatio != nil {
			basis.Weight[t] = magRatio[t]
		} else {
			basis.Weight[t] = 1
		}
	}
	return basis, nil
}

// RotateCoefficients projects per-channel coefficient surfaces onto the
// basis, returning the parallel and the two perpendicular complex surfaces.
func (r *Rotator) RotateCoefficients(surfaces []*wavelet.CoefficientSurface, basis *Basis) (par, perp1, perp2 *wavelet.CoefficientSurface, err error) {
	if len(surfaces) < 2 {
		return nil, nil, nil, &InsufficientChannelsError{Got: len(surfaces)}
	}
	for k := 1; k < len(surfaces); k++ {
		if !surfaces[0].SameAxes(surfaces[k]) {
			return nil, nil, nil, fmt.Errorf("channel %d has a different time or scale axis", k)
		}
	}

	par = emptyLike(surfaces[0])
	perp1 = emptyLike(surfaces[0])
	perp2 = emptyLike(surfaces[0])
	for t := range surfaces[0].Coeffs {
		for j := range surfaces[0].Coeffs[t] {
			var w [3]complex128
			for k := range surfaces {
				if k < 3 {
					w[k] = surfaces[k].Coeffs[t][j]
				}
			}
			par.Coeffs[t][j] = project(w, basis.Par[t])
			perp1.Coeffs[t][j] = project(w, basis.Perp1[t])
			perp2.Coeffs[t][j] = project(w, basis.Perp2[t])
		}
	}
	return par, perp1, perp2, nil
}

// Power rotates per-channel power into parallel and perpendicular
// components. With RotatePow the per-channel real power is projected
// through the squared basis components; otherwise the complex coefficients
// are projected first and squared after.
func (r *Rotator) Power(surfaces []*wavelet.CoefficientSurface, basis *Basis) (*Result, error) {
	if len(surfaces) < 2 {
		return nil, &InsufficientChannelsError{Got: len(surfaces)}
	}

	res := &Result{
		Times:   surfaces[0].Times,
		Periods: surfaces[0].Scales.Periods,
	}
	n := len(surfaces[0].Times)
	nScales := surfaces[0].Scales.Len()
	res.ParPower = newMatrix(n, nScales)
	res.PerpPower = newMatrix(n, nScales)
	res.ParRatio = newMatrix(n, nScales)

	if r.opts.RotatePow {
		for t := 0; t < n; t++ {
			for j := 0; j < nScales; j++ {
				parP, totalP := 0.0, 0.0
				for k, s := range surfaces {
					if k >= 3 {
						break
					}
					w := s.Coeffs[t][j]
					p := real(w)*real(w) + imag(w)*imag(w)
					totalP += p
					parP += basis.Par[t][k] * basis.Par[t][k] * p
				}
				res.ParPower[t][j] = parP
				res.PerpPower[t][j] = totalP - parP
			}
		}
	} else {
		par, perp1, perp2, err := r.RotateCoefficients(surfaces, basis)
		if err != nil {
			return nil, err
		}
		for t := 0; t < n; t++ {
			for j := 0; j < nScales; j++ {
				res.ParPower[t][j] = absSq(par.Coeffs[t][j])
				res.PerpPower[t][j] = absSq(perp1.Coeffs[t][j]) + absSq(perp2.Coeffs[t][j])
			}
		}
	}

	// Fixed composition order: weight, then spectral-index normalization
	for t := 0; t < n; t++ {
		w := basis.Weight[t] * basis.Weight[t]
		for j := 0; j < nScales; j++ {
			res.ParPower[t][j] *= w
			res.PerpPower[t][j] *= w
		}
	}
	if r.opts.Kolom {
		for j := 0; j < nScales; j++ {
			norm := math.Pow(res.Periods[j], -5.0/3.0)
			for t := 0; t < n; t++ {
				res.ParPower[t][j] *= norm
				res.PerpPower[t][j] *= norm
			}
		}
	}

	for t := 0; t < n; t++ {
		for j := 0; j < nScales; j++ {
			total := res.ParPower[t][j] + res.PerpPower[t][j]
			res.ParRatio[t][j] = res.ParPower[t][j] / total
		}
	}
	return res, nil
}

func emptyLike(s *wavelet.CoefficientSurface) *wavelet.CoefficientSurface {
	out := &wavelet.CoefficientSurface{
		Times:  s.Times,
		Scales: s.Scales,
		Dt:     s.Dt,
		COI:    s.COI,
		Coeffs: make([][]complex128, len(s.Coeffs)),
	}
	for t := range out.Coeffs {
		out.Coeffs[t] = make([]complex128, s.Scales.Len())
	}
	return out
}

func project(w [3]complex128, dir [3]float64) complex128 {
	return w[0]*complex(dir[0], 0) + w[1]*complex(dir[1], 0) + w[2]*complex(dir[2], 0)
}

func absSq(w complex128) float64 {
	return real(w)*real(w) + imag(w)*imag(w)
}

func crossProduct(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func unit(v [3]float64) [3]float64 {
	n := norm(v)
	if n == 0 {
		return [3]float64{0, 0, 1}
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
