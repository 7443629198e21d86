package rotate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacekit/heliowave/algorithms/wavelet"
)

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// testChannels builds a 3-component series: a steady background along x
// with a transverse oscillation in y
func testChannels(n int) [][]float64 {
	chX := make([]float64, n)
	chY := make([]float64, n)
	chZ := make([]float64, n)
	for i := range chX {
		chX[i] = 5.0
		chY[i] = math.Sin(2 * math.Pi * float64(i) / 16.0)
		chZ[i] = 0.1 * math.Cos(2*math.Pi*float64(i)/16.0)
	}
	return [][]float64{chX, chY, chZ}
}

func testSurfaces(t *testing.T, channels [][]float64) []*wavelet.CoefficientSurface {
	t.Helper()

	n := len(channels[0])
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
	}
	scales, err := wavelet.NewDefaultScaleSet(wavelet.DefaultOmega0, 1.0, n, 0)
	require.NoError(t, err)

	surfs, err := wavelet.NewTransform(wavelet.DefaultOmega0).ComputeChannels(times, channels, 1.0, scales)
	require.NoError(t, err)
	return surfs
}

func TestBuildBasisOrthonormal(t *testing.T) {
	channels := testChannels(256)

	basis, err := New(Options{}).BuildBasis(channels, nil)
	require.NoError(t, err)
	require.Len(t, basis.Par, 256)

	for ti := 0; ti < 256; ti += 17 {
		assert.InDelta(t, 1.0, dot(basis.Par[ti], basis.Par[ti]), 1e-9)
		assert.InDelta(t, 1.0, dot(basis.Perp1[ti], basis.Perp1[ti]), 1e-9)
		assert.InDelta(t, 1.0, dot(basis.Perp2[ti], basis.Perp2[ti]), 1e-9)
		assert.InDelta(t, 0.0, dot(basis.Par[ti], basis.Perp1[ti]), 1e-9)
		assert.InDelta(t, 0.0, dot(basis.Par[ti], basis.Perp2[ti]), 1e-9)
		assert.InDelta(t, 0.0, dot(basis.Perp1[ti], basis.Perp2[ti]), 1e-9)
		assert.Equal(t, 1.0, basis.Weight[ti])
	}
}

func TestBuildBasisFollowsBackground(t *testing.T) {
	channels := testChannels(256)

	basis, err := New(Options{}).BuildBasis(channels, nil)
	require.NoError(t, err)

	// Background field points along x; oscillations average out
	mid := basis.Par[128]
	assert.InDelta(t, 1.0, mid[0], 0.05)
}

func TestBuildBasisInsufficientChannels(t *testing.T) {
	_, err := New(Options{}).BuildBasis([][]float64{{1, 2, 3}}, nil)
	require.Error(t, err)
	var insufficient *InsufficientChannelsError
	assert.ErrorAs(t, err, &insufficient)
}

func TestBuildBasisMagRatioWeight(t *testing.T) {
	channels := testChannels(64)
	ratio := make([]float64, 64)
	for i := range ratio {
		ratio[i] = 2.0
	}

	basis, err := New(Options{}).BuildBasis(channels, ratio)
	require.NoError(t, err)
	assert.Equal(t, 2.0, basis.Weight[10])
}

func TestRotateCoefficientsPreservesPower(t *testing.T) {
	channels := testChannels(256)
	surfs := testSurfaces(t, channels)

	rotator := New(Options{})
	basis, err := rotator.BuildBasis(channels, nil)
	require.NoError(t, err)

	par, perp1, perp2, err := rotator.RotateCoefficients(surfs, basis)
	require.NoError(t, err)

	// Projection onto an orthonormal basis preserves total power
	for ti := 32; ti < 224; ti += 13 {
		for j := 0; j < surfs[0].Scales.Len(); j += 5 {
			total := 0.0
			for _, s := range surfs {
				total += absSq(s.Coeffs[ti][j])
			}
			rotated := absSq(par.Coeffs[ti][j]) + absSq(perp1.Coeffs[ti][j]) + absSq(perp2.Coeffs[ti][j])
			assert.InDelta(t, total, rotated, 1e-9*math.Max(1, total))
		}
	}
}

func TestPowerParPlusPerpIsTotal(t *testing.T) {
	channels := testChannels(256)
	surfs := testSurfaces(t, channels)

	rotator := New(Options{RotatePow: true})
	basis, err := rotator.BuildBasis(channels, nil)
	require.NoError(t, err)

	res, err := rotator.Power(surfs, basis)
	require.NoError(t, err)

	for ti := 0; ti < 256; ti += 31 {
		for j := 0; j < len(res.Periods); j += 7 {
			total := 0.0
			for _, s := range surfs {
				total += absSq(s.Coeffs[ti][j])
			}
			sum := res.ParPower[ti][j] + res.PerpPower[ti][j]
			assert.InDelta(t, total, sum, 1e-9*math.Max(1, total))

			ratio := res.ParRatio[ti][j]
			if !math.IsNaN(ratio) {
				assert.GreaterOrEqual(t, ratio, 0.0)
				assert.LessOrEqual(t, ratio, 1.0)
			}
		}
	}
}

func TestPowerTransverseWaveIsPerpendicular(t *testing.T) {
	// Oscillation transverse to the background x direction lands in the
	// perpendicular component at the wave period
	channels := testChannels(512)
	surfs := testSurfaces(t, channels)

	rotator := New(Options{})
	basis, err := rotator.BuildBasis(channels, nil)
	require.NoError(t, err)
	res, err := rotator.Power(surfs, basis)
	require.NoError(t, err)

	// Locate the 16-sample-period row
	j := 0
	for k, p := range res.Periods {
		if math.Abs(p-16) < math.Abs(res.Periods[j]-16) {
			j = k
		}
	}
	for ti := 128; ti < 384; ti += 11 {
		assert.Less(t, res.ParRatio[ti][j], 0.2, "time index %d", ti)
	}
}

func TestPowerKolomNormalization(t *testing.T) {
	channels := testChannels(256)
	surfs := testSurfaces(t, channels)

	plainRot := New(Options{RotatePow: true})
	kolomRot := New(Options{RotatePow: true, Kolom: true})
	basis, err := plainRot.BuildBasis(channels, nil)
	require.NoError(t, err)

	plain, err := plainRot.Power(surfs, basis)
	require.NoError(t, err)
	kolom, err := kolomRot.Power(surfs, basis)
	require.NoError(t, err)

	for j := 0; j < len(plain.Periods); j += 6 {
		norm := math.Pow(plain.Periods[j], -5.0/3.0)
		assert.InDelta(t, plain.ParPower[128][j]*norm, kolom.ParPower[128][j], 1e-9*math.Max(1e-12, plain.ParPower[128][j]*norm))
	}
}

func TestPowerInsufficientChannels(t *testing.T) {
	channels := testChannels(64)
	surfs := testSurfaces(t, channels)

	rotator := New(Options{})
	basis, err := rotator.BuildBasis(channels, nil)
	require.NoError(t, err)

	_, err = rotator.Power(surfs[:1], basis)
	require.Error(t, err)
	var insufficient *InsufficientChannelsError
	assert.ErrorAs(t, err, &insufficient)
}
