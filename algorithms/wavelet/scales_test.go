package wavelet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFourierFactor(t *testing.T) {
	want := (6.0 + math.Sqrt(38.0)) / (4 * math.Pi)
	assert.InDelta(t, want, FourierFactor(DefaultOmega0), 1e-15)
}

func TestPeriodScaleRoundTrip(t *testing.T) {
	omegas := []float64{1, 5.5, 6, 12, 60}
	scales := []float64{0.01, 1, 32, 1e4}

	for _, w := range omegas {
		for _, s := range scales {
			got := PeriodToScale(ScaleToPeriod(s, w), w)
			assert.InEpsilonf(t, s, got, 1e-12, "omega0=%g scale=%g", w, s)
		}
	}
}

func TestNewScaleSet(t *testing.T) {
	ss, err := NewScaleSet(DefaultOmega0, []float64{1, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, 3, ss.Len())
	for j, s := range ss.Scales {
		assert.InDelta(t, ScaleToPeriod(s, DefaultOmega0), ss.Periods[j], 1e-12)
	}
}

func TestNewScaleSetRejects(t *testing.T) {
	tests := []struct {
		name   string
		omega0 float64
		scales []float64
	}{
		{"empty", DefaultOmega0, nil},
		{"not_increasing", DefaultOmega0, []float64{1, 3, 2}},
		{"duplicate", DefaultOmega0, []float64{1, 1, 2}},
		{"non_positive_scale", DefaultOmega0, []float64{-1, 1, 2}},
		{"bad_omega0", 0, []float64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScaleSet(tt.omega0, tt.scales)
			require.Error(t, err)
			var rangeErr *InvalidRangeError
			assert.ErrorAs(t, err, &rangeErr)
		})
	}
}

func TestScaleSetFromPeriodRange(t *testing.T) {
	ss, err := NewScaleSetFromPeriodRange(DefaultOmega0, 8, 60, 1.0, 4000, 0)
	require.NoError(t, err)

	assert.InDelta(t, 8.0, ss.Periods[0], 1e-9)
	assert.InDelta(t, 60.0, ss.Periods[ss.Len()-1], 1e-9)
	for j := 1; j < ss.Len(); j++ {
		assert.Greater(t, ss.Periods[j], ss.Periods[j-1])
	}
}

func TestScaleSetFromPeriodRangeRejects(t *testing.T) {
	tests := []struct {
		name       string
		pMin, pMax float64
	}{
		{"zero_width", 8, 8},
		{"negative_width", 60, 8},
		{"below_resolvable", 0.1, 1.5},
		{"above_duration", 5000, 9000},
		{"non_positive", -4, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScaleSetFromPeriodRange(DefaultOmega0, tt.pMin, tt.pMax, 1.0, 4000, 0)
			require.Error(t, err)
			var rangeErr *InvalidRangeError
			assert.ErrorAs(t, err, &rangeErr)
		})
	}
}

func TestDefaultScaleSetSpansSeries(t *testing.T) {
	dt, n := 0.25, 4096
	ss, err := NewDefaultScaleSet(DefaultOmega0, dt, n, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2*dt, ss.Periods[0], 1e-9)
	// Last generated voice lands at or below half the duration
	assert.LessOrEqual(t, ss.Periods[ss.Len()-1], float64(n)*dt/2*(1+1e-9))
	assert.Greater(t, ss.Periods[ss.Len()-1], float64(n)*dt/8)
}

func TestDefaultScaleSetDyadicVoices(t *testing.T) {
	dt, n, voices := 1.0, 4000, 8
	ss, err := NewDefaultScaleSet(DefaultOmega0, dt, n, voices)
	require.NoError(t, err)

	// Adjacent voices keep the exact 2^(1/voices) ratio even when the
	// default range is not a whole number of octaves
	step := math.Pow(2, 1.0/float64(voices))
	for j := 1; j < ss.Len(); j++ {
		assert.InEpsilonf(t, step, ss.Scales[j]/ss.Scales[j-1], 1e-12, "voice %d", j)
	}

	// Power-of-two multiples of the shortest period sit exactly on the axis
	found := false
	for _, p := range ss.Periods {
		if math.Abs(p-32.0) < 1e-9 {
			found = true
			break
		}
	}
	assert.True(t, found, "period 32 missing from the default axis")
}

func TestParseWaveName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"default", "", DefaultOmega0, false},
		{"morlet", "morl", DefaultOmega0, false},
		{"complex_morlet", "cmorl1.5-1.0", 2 * math.Pi, false},
		{"complex_morlet_half", "cmorl0.5-0.5", math.Pi, false},
		{"uppercase", "CMORL1.5-1.0", 2 * math.Pi, false},
		{"missing_center", "cmorl1.5", 0, true},
		{"negative_center", "cmorl1.5--2", 0, true},
		{"unknown_family", "haar", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWaveName(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
