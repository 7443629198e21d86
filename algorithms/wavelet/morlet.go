package wavelet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseWaveName maps a legacy wavelet family string to the Morlet
// characteristic frequency omega0. Recognized forms:
//
//	""            -> DefaultOmega0
//	"morl"        -> DefaultOmega0
//	"cmorlB-C"    -> 2*pi*C (complex Morlet, bandwidth B, center frequency C)
//
// The bandwidth part of "cmorl" names is accepted but not used; the core
// only needs omega0.
func ParseWaveName(name string) (float64, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	switch {
	case name == "" || name == "morl":
		return DefaultOmega0, nil
	case strings.HasPrefix(name, "cmorl"):
		rest := strings.TrimPrefix(name, "cmorl")
		parts := strings.SplitN(rest, "-", 2)
		if len(parts) != 2 {
			return 0, fmt.Errorf("malformed wavelet name %q: want cmorlB-C", name)
		}
		if _, err := strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("malformed bandwidth in wavelet name %q: %w", name, err)
		}
		center, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("malformed center frequency in wavelet name %q: %w", name, err)
		}
		if center <= 0 {
			return 0, fmt.Errorf("center frequency must be positive in wavelet name %q", name)
		}
		return 2 * math.Pi * center, nil
	default:
		return 0, fmt.Errorf("unsupported wavelet family %q", name)
	}
}

// morletFourier evaluates the analytic Morlet daughter wavelet in the
// frequency domain at one scale: a Gaussian window centered at omega0/scale,
// zero for non-positive frequencies, normalized to unit energy per
// Torrence & Compo (1998) eq. 6.
func morletFourier(omega []float64, scale, omega0, dt float64) []float64 {
	norm := math.Sqrt(2*math.Pi*scale/dt) * math.Pow(math.Pi, -0.25)
	out := make([]float64, len(omega))
	for k, w := range omega {
		if w <= 0 {
			continue
		}
		arg := scale*w - omega0
		out[k] = norm * math.Exp(-arg*arg/2)
	}
	return out
}

// angularFrequencies returns the FFT bin angular frequencies for n samples
// at spacing dt, positive for the first half and negative for the second.
func angularFrequencies(n int, dt float64) []float64 {
	omega := make([]float64, n)
	step := 2 * math.Pi / (float64(n) * dt)
	for k := range omega {
		if k <= n/2 {
			omega[k] = float64(k) * step
		} else {
			omega[k] = -float64(n-k) * step
		}
	}
	return omega
}
