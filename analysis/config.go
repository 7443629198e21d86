package analysis

import (
	"fmt"

	"github.com/spacekit/heliowave/algorithms/wavelet"
)

// Config enumerates the recognized analysis options. Which output surfaces
// Analyze produces is a pure function of this structure and the input
// channel count; see OutputNames.
type Config struct {
	// WaveName selects the Morlet characteristic frequency through the
	// legacy family string ("morl", "cmorlB-C"). Ignored when Omega0 > 0.
	WaveName string `json:"wavename,omitempty"`

	// Omega0 sets the Morlet characteristic frequency directly
	Omega0 float64 `json:"omega0,omitempty"`

	// SamplingPeriod overrides the detected uniform spacing
	SamplingPeriod float64 `json:"sampling_period,omitempty"`

	// DimenNum selects a single input channel before the transform runs.
	// Nil means all channels, so the zero-value Config transforms the
	// whole vector.
	DimenNum *int `json:"dimennum,omitempty"`

	// Scales supplies an explicit scale list, overriding PRange and the
	// default log distribution
	Scales []float64 `json:"scales,omitempty"`

	// VoicesPerOctave sets the density of generated scale sets.
	// Zero means the default.
	VoicesPerOctave int `json:"voices_per_octave,omitempty"`

	// PRange restricts the analysis to periods within [PRange[0], PRange[1]]
	PRange [2]float64 `json:"prange,omitempty"`

	// TRange crops output rows to timestamps within [TRange[0], TRange[1]]
	// inclusive
	TRange [2]float64 `json:"trange,omitempty"`

	// RBin averages consecutive groups of RBin output rows
	RBin int `json:"rbin,omitempty"`

	// Resolution keeps every Resolution-th output row
	Resolution int `json:"resolution,omitempty"`

	// Fraction divides power by the channel variance
	Fraction bool `json:"fraction,omitempty"`

	// NormVal divides power by an explicit constant when > 0
	NormVal float64 `json:"normval,omitempty"`

	// MagRatio is an optional reference magnitude-ratio series on the
	// input time base, used as the per-sample weight of the field-aligned
	// rotation outputs. Absent means unit weight.
	MagRatio []float64 `json:"-"`

	// RotatePow rotates raw power instead of coefficients; applied before
	// the Kolom normalization (fixed order)
	RotatePow bool `json:"rotate_pow,omitempty"`

	// Kolom applies the Kolmogorov spectral-index normalization to
	// rotated power
	Kolom bool `json:"kolom,omitempty"`

	// Cross1 enables the pairwise cross-spectral outputs (lin and cir)
	// between the first two channels
	Cross1 bool `json:"cross1,omitempty"`

	// Cross2 enables the field-aligned projected cross-spectral outputs
	// (pr and pl); needs three channels
	Cross2 bool `json:"cross2,omitempty"`

	// GetComponents adds per-channel power surfaces next to the combined one
	GetComponents bool `json:"get_components,omitempty"`

	// GetPhase adds the phase surface of the first channel
	GetPhase bool `json:"get_phase,omitempty"`

	// PeriodsPerWindow sizes the cir smoothing window. Zero means the
	// default.
	PeriodsPerWindow float64 `json:"periods_per_window,omitempty"`
}

// DefaultConfig returns a Config that transforms every input channel and
// produces the combined power surface
func DefaultConfig() Config {
	return Config{}
}

// omega0 resolves the characteristic frequency from Omega0 or WaveName
func (c *Config) omega0() (float64, error) {
	if c.Omega0 > 0 {
		return c.Omega0, nil
	}
	return wavelet.ParseWaveName(c.WaveName)
}

func (c *Config) hasTRange() bool {
	return c.TRange[0] != 0 || c.TRange[1] != 0
}

func (c *Config) hasPRange() bool {
	return c.PRange[0] != 0 || c.PRange[1] != 0
}

// componentName labels per-channel outputs the conventional way
func componentName(k int) string {
	switch k {
	case 0:
		return "x"
	case 1:
		return "y"
	case 2:
		return "z"
	default:
		return fmt.Sprintf("c%d", k)
	}
}

// OutputNames returns the surface keys Analyze produces for an input with
// the given channel count. It is a pure function of the configuration.
func (c *Config) OutputNames(numChannels int) []string {
	if c.DimenNum != nil {
		numChannels = 1
	}
	names := []string{"pow"}
	if c.GetPhase {
		names = append(names, "phase")
	}
	if c.GetComponents && numChannels > 1 {
		for k := 0; k < numChannels; k++ {
			names = append(names, "pow_"+componentName(k))
		}
	}
	if c.Cross1 && numChannels >= 2 {
		names = append(names,
			"gam_lin", "coin_lin", "quad_lin",
			"gam_cir", "coin_cir", "quad_cir")
	}
	if c.Cross2 && numChannels >= 3 {
		names = append(names,
			"gam_pr", "coin_pr", "quad_pr",
			"gam_pl", "coin_pl", "quad_pl")
	}
	if numChannels >= 2 {
		names = append(names, "pol_par", "pol_perp", "rat_par")
	}
	return names
}
