package cross

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/spacekit/heliowave/algorithms/common"
	"github.com/spacekit/heliowave/algorithms/wavelet"
)

// DefaultPeriodsPerWindow sizes the smoothing window of the "cir" variant:
// each scale is averaged over this many of its own Fourier periods.
const DefaultPeriodsPerWindow = 3.0

// ChannelMismatchError reports cross-spectral inputs on incompatible axes
type ChannelMismatchError struct {
	Reason string
}

func (e *ChannelMismatchError) Error() string {
	return fmt.Sprintf("channel mismatch: %s", e.Reason)
}

// Result holds the three cross-spectral surfaces for one channel pair:
// coincidence (real part), quadrature (imaginary part), and coherence.
type Result struct {
	Times   []float64
	Periods []float64

	Coincidence [][]float64
	Quadrature  [][]float64
	Coherence   [][]float64
}

// Analyzer computes pairwise cross-wavelet statistics from coefficient
// surfaces that share time and scale axes.
type Analyzer struct {
	// PeriodsPerWindow controls smoothing in the Smoothed variant.
	// Zero means the default.
	PeriodsPerWindow float64

	workers int
}

// NewAnalyzer creates an Analyzer with default smoothing
func NewAnalyzer() *Analyzer {
	return &Analyzer{workers: runtime.NumCPU()}
}

// Linear computes the instantaneous ("lin") cross statistics. The pointwise
// coherence estimator is degenerate and saturates at 1 for any two channels;
// it is kept for parity with the smoothed variant.
func (a *Analyzer) Linear(surfA, surfB *wavelet.CoefficientSurface) (*Result, error) {
	if !surfA.SameAxes(surfB) {
		return nil, &ChannelMismatchError{Reason: "surfaces have different time or scale axes"}
	}

	res := newResult(surfA)
	for t, rowA := range surfA.Coeffs {
		rowB := surfB.Coeffs[t]
		for j := range rowA {
			wa, wb := rowA[j], rowB[j]
			re := real(wa)*real(wb) + imag(wa)*imag(wb)
			im := imag(wa)*real(wb) - real(wa)*imag(wb)
			pa := real(wa)*real(wa) + imag(wa)*imag(wa)
			pb := real(wb)*real(wb) + imag(wb)*imag(wb)

			res.Coincidence[t][j] = re
			res.Quadrature[t][j] = im
			res.Coherence[t][j] = (re*re + im*im) / (pa * pb)
		}
	}
	return res, nil
}

// Smoothed computes the smoothed ("cir") cross statistics: the cross term
// and both powers are boxcar-averaged along time with a window sized to
// each scale's Fourier period before the coherence ratio is formed.
func (a *Analyzer) Smoothed(surfA, surfB *wavelet.CoefficientSurface) (*Result, error) {
	if !surfA.SameAxes(surfB) {
		return nil, &ChannelMismatchError{Reason: "surfaces have different time or scale axes"}
	}

	n := len(surfA.Times)
	nScales := surfA.Scales.Len()
	crossRe := newMatrix(n, nScales)
	crossIm := newMatrix(n, nScales)
	powA := newMatrix(n, nScales)
	powB := newMatrix(n, nScales)
	for t, rowA := range surfA.Coeffs {
		rowB := surfB.Coeffs[t]
		for j := range rowA {
			wa, wb := rowA[j], rowB[j]
			crossRe[t][j] = real(wa)*real(wb) + imag(wa)*imag(wb)
			crossIm[t][j] = imag(wa)*real(wb) - real(wa)*imag(wb)
			powA[t][j] = real(wa)*real(wa) + imag(wa)*imag(wa)
			powB[t][j] = real(wb)*real(wb) + imag(wb)*imag(wb)
		}
	}

	nPeriods := a.PeriodsPerWindow
	if nPeriods <= 0 {
		nPeriods = DefaultPeriodsPerWindow
	}
	a.smoothColumns(crossRe, surfA.Scales.Periods, surfA.Dt, nPeriods)
	a.smoothColumns(crossIm, surfA.Scales.Periods, surfA.Dt, nPeriods)
	a.smoothColumns(powA, surfA.Scales.Periods, surfA.Dt, nPeriods)
	a.smoothColumns(powB, surfA.Scales.Periods, surfA.Dt, nPeriods)

	res := newResult(surfA)
	for t := range crossRe {
		for j := range crossRe[t] {
			re, im := crossRe[t][j], crossIm[t][j]
			res.Coincidence[t][j] = re
			res.Quadrature[t][j] = im
			denom := powA[t][j] * powB[t][j]
			if denom == 0 {
				res.Coherence[t][j] = math.NaN()
			} else {
				res.Coherence[t][j] = (re*re + im*im) / denom
			}
		}
	}
	return res, nil
}

// smoothColumns boxcar-averages each scale column along time in place, with
// a window of nPeriods Fourier periods of that scale. Columns are
// independent, so they run on a worker pool.
func (a *Analyzer) smoothColumns(m [][]float64, periods []float64, dt, nPeriods float64) {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan int, len(periods))
	var wg sync.WaitGroup
	for range min(workers, len(periods)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			column := make([]float64, len(m))
			for j := range jobs {
				width := int(math.Round(nPeriods * periods[j] / dt))
				if width%2 == 0 {
					width++
				}
				for t := range m {
					column[t] = m[t][j]
				}
				smoothed := common.MovingAverage(column, width)
				for t := range m {
					m[t][j] = smoothed[t]
				}
			}
		}()
	}
	for j := range periods {
		jobs <- j
	}
	close(jobs)
	wg.Wait()
}

func newResult(surf *wavelet.CoefficientSurface) *Result {
	n := len(surf.Times)
	return &Result{
		Times:       surf.Times,
		Periods:     surf.Scales.Periods,
		Coincidence: newMatrix(n, surf.Scales.Len()),
		Quadrature:  newMatrix(n, surf.Scales.Len()),
		Coherence:   newMatrix(n, surf.Scales.Len()),
	}
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
