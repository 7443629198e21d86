package analysis

import (
	"fmt"
	"math"

	"github.com/spacekit/heliowave/algorithms/common"
	"github.com/spacekit/heliowave/algorithms/cross"
	"github.com/spacekit/heliowave/algorithms/rotate"
	"github.com/spacekit/heliowave/algorithms/wavelet"
	"github.com/spacekit/heliowave/logging"
	"github.com/spacekit/heliowave/timeseries"
)

// Result is the named-surface output of one engine invocation. Every
// surface carries its own time and period axes.
type Result struct {
	// Dt is the uniform sample spacing the transform ran on
	Dt float64

	// Omega0 is the Morlet characteristic frequency used
	Omega0 float64

	// Surfaces maps canonical quantity names (see Config.OutputNames) to
	// their shaped surfaces
	Surfaces map[string]*Surface
}

// Analyzer runs the full pipeline: resampling, scale mapping, the Morlet
// CWT per channel, power/phase extraction, cross-spectral statistics,
// field-aligned rotation, and output shaping. An Analyzer holds no state
// across invocations.
type Analyzer struct {
	cfg    Config
	omega0 float64
	logger logging.Logger
}

// NewAnalyzer validates the configuration and resolves the wavelet
// parameters.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	omega0, err := cfg.omega0()
	if err != nil {
		return nil, err
	}
	if cfg.RBin < 0 {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("rbin must be non-negative, got %d", cfg.RBin)}
	}
	if cfg.Resolution < 0 {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("resolution must be non-negative, got %d", cfg.Resolution)}
	}
	return &Analyzer{
		cfg:    cfg,
		omega0: omega0,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}, nil
}

// Analyze transforms one series into its named output surfaces. The input
// is never mutated; either the full surface map is returned or an error,
// never a partial result.
func (a *Analyzer) Analyze(ts *timeseries.TimeSeries) (*Result, error) {
	cfg := &a.cfg
	if cfg.MagRatio != nil && len(cfg.MagRatio) != ts.Len() {
		return nil, fmt.Errorf("magnitude-ratio series has %d samples, input has %d", len(cfg.MagRatio), ts.Len())
	}

	input := ts
	if cfg.DimenNum != nil {
		selected, err := ts.Select(*cfg.DimenNum)
		if err != nil {
			return nil, err
		}
		input = selected
	}

	resampler := timeseries.NewResampler()
	resampler.SamplingPeriod = cfg.SamplingPeriod
	u, err := resampler.Resample(input)
	if err != nil {
		return nil, err
	}

	scales, err := a.buildScales(u)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("pipeline configured", logging.Fields{
		"samples":  u.Len(),
		"channels": u.NumChannels(),
		"scales":   scales.Len(),
		"dt":       u.Dt,
	})

	transform := wavelet.NewTransform(a.omega0)
	surfaces, err := transform.ComputeChannels(u.Times, u.Channels, u.Dt, scales)
	if err != nil {
		return nil, err
	}
	coi := surfaces[0].COI

	out := make(map[string]*Surface)

	// Power and phase
	raw := make([]*wavelet.PowerResult, len(surfaces))
	for k, s := range surfaces {
		raw[k] = wavelet.Power(s, u.Channels[k], wavelet.PowerOptions{})
	}
	out["pow"] = newSurface(u.Times, scales.Periods, a.combinedPower(raw, u.Channels), coi)
	if cfg.GetPhase {
		out["phase"] = newSurface(u.Times, scales.Periods, raw[0].Phase, coi)
	}
	if cfg.GetComponents && u.NumChannels() > 1 {
		opts := wavelet.PowerOptions{Fraction: cfg.Fraction, NormVal: cfg.NormVal}
		for k, s := range surfaces {
			normalized := wavelet.Power(s, u.Channels[k], opts)
			out["pow_"+componentName(k)] = newSurface(u.Times, scales.Periods, normalized.Power, coi)
		}
	}

	// Pairwise cross spectra
	if cfg.Cross1 {
		if u.NumChannels() < 2 {
			return nil, &cross.ChannelMismatchError{Reason: fmt.Sprintf("cross-spectral outputs need 2 channels, got %d", u.NumChannels())}
		}
		analyzer := cross.NewAnalyzer()
		analyzer.PeriodsPerWindow = cfg.PeriodsPerWindow

		lin, err := analyzer.Linear(surfaces[0], surfaces[1])
		if err != nil {
			return nil, err
		}
		cir, err := analyzer.Smoothed(surfaces[0], surfaces[1])
		if err != nil {
			return nil, err
		}
		a.addCross(out, "lin", lin, coi)
		a.addCross(out, "cir", cir, coi)
	}

	// Field-aligned basis, shared by rotation and the projected spectra.
	// Rotation outputs come with any multi-channel input; MagRatio only
	// changes the weighting.
	if u.NumChannels() >= 2 {
		rotator := rotate.New(rotate.Options{RotatePow: cfg.RotatePow, Kolom: cfg.Kolom})

		var magRatio []float64
		if cfg.MagRatio != nil {
			magRatio = common.Interp1(ts.Times, cfg.MagRatio, u.Times)
		}
		basis, err := rotator.BuildBasis(u.Channels, magRatio)
		if err != nil {
			return nil, err
		}

		if cfg.Cross2 && u.NumChannels() >= 3 {
			par, perp1, perp2, err := rotator.RotateCoefficients(surfaces, basis)
			if err != nil {
				return nil, err
			}
			analyzer := cross.NewAnalyzer()
			analyzer.PeriodsPerWindow = cfg.PeriodsPerWindow

			pr, err := analyzer.Smoothed(perp1, perp2)
			if err != nil {
				return nil, err
			}
			pl, err := analyzer.Smoothed(par, perp1)
			if err != nil {
				return nil, err
			}
			a.addCross(out, "pr", pr, coi)
			a.addCross(out, "pl", pl, coi)
		}

		rotated, err := rotator.Power(surfaces, basis)
		if err != nil {
			return nil, err
		}
		out["pol_par"] = newSurface(u.Times, scales.Periods, rotated.ParPower, coi)
		out["pol_perp"] = newSurface(u.Times, scales.Periods, rotated.PerpPower, coi)
		out["rat_par"] = newSurface(u.Times, scales.Periods, rotated.ParRatio, coi)
	}

	for name, s := range out {
		shaped, err := a.shape(s)
		if err != nil {
			return nil, fmt.Errorf("shaping %s: %w", name, err)
		}
		out[name] = shaped
	}

	return &Result{Dt: u.Dt, Omega0: a.omega0, Surfaces: out}, nil
}

// buildScales picks the scale sequence: explicit list, requested period
// range, or the default log distribution between the two-sample period and
// half the series duration.
func (a *Analyzer) buildScales(u *timeseries.UniformTimeSeries) (*wavelet.ScaleSet, error) {
	cfg := &a.cfg
	switch {
	case len(cfg.Scales) > 0:
		return wavelet.NewScaleSet(a.omega0, cfg.Scales)
	case cfg.hasPRange():
		return wavelet.NewScaleSetFromPeriodRange(a.omega0, cfg.PRange[0], cfg.PRange[1], u.Dt, u.Len(), cfg.VoicesPerOctave)
	default:
		return wavelet.NewDefaultScaleSet(a.omega0, u.Dt, u.Len(), cfg.VoicesPerOctave)
	}
}

// combinedPower sums raw per-channel power and applies the configured
// normalization: total variance under Fraction, then the explicit constant.
func (a *Analyzer) combinedPower(raw []*wavelet.PowerResult, channels [][]float64) [][]float64 {
	norm := 1.0
	if a.cfg.Fraction {
		total := 0.0
		for _, ch := range channels {
			total += common.Variance(ch)
		}
		norm = total
	}
	if a.cfg.NormVal > 0 {
		norm *= a.cfg.NormVal
	}

	combined := make([][]float64, len(raw[0].Power))
	for t := range combined {
		row := make([]float64, len(raw[0].Power[t]))
		for _, pr := range raw {
			for j, p := range pr.Power[t] {
				row[j] += p
			}
		}
		if norm == 0 {
			for j := range row {
				row[j] = math.NaN()
			}
		} else if norm != 1 {
			for j := range row {
				row[j] /= norm
			}
		}
		combined[t] = row
	}
	return combined
}

func (a *Analyzer) addCross(out map[string]*Surface, variant string, res *cross.Result, coi []float64) {
	out["gam_"+variant] = newSurface(res.Times, res.Periods, res.Coherence, coi)
	out["coin_"+variant] = newSurface(res.Times, res.Periods, res.Coincidence, coi)
	out["quad_"+variant] = newSurface(res.Times, res.Periods, res.Quadrature, coi)
}

// shape applies the output reductions in a fixed order: time crop, bin
// averaging, decimation, then the period filter.
func (a *Analyzer) shape(s *Surface) (*Surface, error) {
	cfg := &a.cfg
	var err error
	if cfg.hasTRange() {
		s, err = CropTime(s, cfg.TRange[0], cfg.TRange[1])
		if err != nil {
			return nil, err
		}
	}
	if cfg.RBin > 1 {
		s, err = BinAverage(s, cfg.RBin)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Resolution > 1 {
		s, err = Decimate(s, cfg.Resolution)
		if err != nil {
			return nil, err
		}
	}
	if cfg.hasPRange() {
		s, err = FilterPeriods(s, cfg.PRange[0], cfg.PRange[1])
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}
