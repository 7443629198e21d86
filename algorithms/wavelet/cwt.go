package wavelet

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/mjibson/go-dsp/fft"

	"github.com/spacekit/heliowave/algorithms/common"
	"github.com/spacekit/heliowave/logging"
)

// EmptyChannelError reports a zero-length channel handed to the transform
type EmptyChannelError struct {
	Channel int
}

func (e *EmptyChannelError) Error() string {
	return fmt.Sprintf("channel %d is empty", e.Channel)
}

// CoefficientSurface is the complex wavelet coefficient matrix of one
// channel, indexed [time][scale], with its axes and cone-of-influence
// metadata. Consumed read-only by the power and cross-spectral stages.
type CoefficientSurface struct {
	Times  []float64
	Scales *ScaleSet
	Dt     float64

	// Coeffs[t][j] is the coefficient at Times[t], Scales.Scales[j]
	Coeffs [][]complex128

	// COI[t] is the longest Fourier period unaffected by edge padding at
	// Times[t]. Rows with Periods[j] > COI[t] are edge-affected. The
	// surface is tagged, never cropped.
	COI []float64
}

// EdgeAffected reports whether the coefficient at [t][j] lies inside the
// cone of influence of the series edges.
func (cs *CoefficientSurface) EdgeAffected(t, j int) bool {
	return cs.Scales.Periods[j] > cs.COI[t]
}

// SameAxes reports whether two surfaces share identical time and scale axes
func (cs *CoefficientSurface) SameAxes(other *CoefficientSurface) bool {
	if len(cs.Times) != len(other.Times) || cs.Scales.Len() != other.Scales.Len() {
		return false
	}
	for i := range cs.Times {
		if cs.Times[i] != other.Times[i] {
			return false
		}
	}
	for j := range cs.Scales.Scales {
		if cs.Scales.Scales[j] != other.Scales.Scales[j] {
			return false
		}
	}
	return true
}

// Transform computes the continuous Morlet wavelet transform of uniformly
// sampled channels via FFT-domain convolution.
type Transform struct {
	omega0  float64
	workers int
	logger  logging.Logger
}

// NewTransform creates a Transform for the given characteristic frequency.
// omega0 <= 0 selects the default.
func NewTransform(omega0 float64) *Transform {
	if omega0 <= 0 {
		omega0 = DefaultOmega0
	}
	return &Transform{
		omega0:  omega0,
		workers: runtime.NumCPU(),
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{
			"component": "cwt",
		}),
	}
}

// Omega0 returns the characteristic frequency of the Morlet kernel
func (tr *Transform) Omega0() float64 {
	return tr.omega0
}

// Compute transforms one channel onto the given scale set. The channel is
// mean-removed and zero-padded to the next power of two before the forward
// FFT; the padded region is discarded from the returned surface.
func (tr *Transform) Compute(times, channel []float64, dt float64, scales *ScaleSet) (*CoefficientSurface, error) {
	n := len(channel)
	if n == 0 {
		return nil, &EmptyChannelError{Channel: 0}
	}
	if len(times) != n {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("time axis has %d samples for %d values", len(times), n)}
	}

	padded := make([]float64, common.NextPowerOfTwo(n))
	copy(padded, common.Demean(channel))

	// One forward transform per channel; every scale reuses it
	spectrum := fft.FFTReal(padded)
	omega := angularFrequencies(len(padded), dt)

	surface := &CoefficientSurface{
		Times:  append([]float64(nil), times...),
		Scales: scales,
		Dt:     dt,
		Coeffs: make([][]complex128, n),
		COI:    coneOfInfluence(n, dt, tr.omega0),
	}
	for t := range surface.Coeffs {
		surface.Coeffs[t] = make([]complex128, scales.Len())
	}

	// Per-scale rows are independent; fan them out over a worker pool.
	// Workers write disjoint columns of the surface.
	jobs := make(chan int, scales.Len())
	var wg sync.WaitGroup
	for range min(tr.workers, scales.Len()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			product := make([]complex128, len(padded))
			for j := range jobs {
				daughter := morletFourier(omega, scales.Scales[j], tr.omega0, dt)
				for k := range product {
					product[k] = spectrum[k] * complex(daughter[k], 0)
				}
				row := fft.IFFT(product)
				for t := 0; t < n; t++ {
					surface.Coeffs[t][j] = row[t]
				}
			}
		}()
	}
	for j := 0; j < scales.Len(); j++ {
		jobs <- j
	}
	close(jobs)
	wg.Wait()

	tr.logger.Debug("computed coefficient surface", logging.Fields{
		"samples": n,
		"scales":  scales.Len(),
		"padded":  len(padded),
	})
	return surface, nil
}

// ComputeChannels transforms every channel of a multi-channel series
// concurrently, returning one surface per channel in input order.
func (tr *Transform) ComputeChannels(times []float64, channels [][]float64, dt float64, scales *ScaleSet) ([]*CoefficientSurface, error) {
	surfaces := make([]*CoefficientSurface, len(channels))
	errs := make([]error, len(channels))

	var wg sync.WaitGroup
	for k := range channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			surfaces[k], errs[k] = tr.Compute(times, channels[k], dt, scales)
		}()
	}
	wg.Wait()

	for k, err := range errs {
		if err != nil {
			var empty *EmptyChannelError
			if errors.As(err, &empty) {
				empty.Channel = k
			}
			return nil, err
		}
	}
	return surfaces, nil
}

// coneOfInfluence returns the per-sample maximum unaffected period using the
// Morlet e-folding time sqrt(2)*s (Torrence & Compo 1998, Table 1).
func coneOfInfluence(n int, dt, omega0 float64) []float64 {
	ff := FourierFactor(omega0)
	coi := make([]float64, n)
	for t := range coi {
		edge := math.Min(float64(t), float64(n-1-t))
		coi[t] = ff * math.Sqrt2 * dt * edge
	}
	return coi
}
