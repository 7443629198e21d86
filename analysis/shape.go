package analysis

import (
	"fmt"

	"github.com/spacekit/heliowave/algorithms/wavelet"
)

// Output shaping. Every operation is pure: the input surface is read-only
// and a new surface is returned. Time-axis operations and period-axis
// operations commute.

// CropTime retains the rows whose timestamp falls within [t0, t1] inclusive
func CropTime(s *Surface, t0, t1 float64) (*Surface, error) {
	if t1 < t0 {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("time range [%g, %g] has negative width", t0, t1)}
	}

	lo, hi := 0, len(s.Times)
	for lo < hi && s.Times[lo] < t0 {
		lo++
	}
	for hi > lo && s.Times[hi-1] > t1 {
		hi--
	}
	if lo == hi {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("time range [%g, %g] contains no samples", t0, t1)}
	}

	out := &Surface{
		Times:   append([]float64(nil), s.Times[lo:hi]...),
		Periods: append([]float64(nil), s.Periods...),
		Values:  make([][]float64, hi-lo),
	}
	for t := lo; t < hi; t++ {
		out.Values[t-lo] = append([]float64(nil), s.Values[t]...)
	}
	if s.COI != nil {
		out.COI = append([]float64(nil), s.COI[lo:hi]...)
	}
	return out, nil
}

// BinAverage reduces the time axis by averaging consecutive groups of r
// rows. A trailing partial group is dropped, so the output has exactly
// len/r rows.
func BinAverage(s *Surface, r int) (*Surface, error) {
	if r <= 0 {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("bin factor must be positive, got %d", r)}
	}
	if r == 1 {
		return s.Clone(), nil
	}

	n := len(s.Times) / r
	if n == 0 {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("bin factor %d exceeds series length %d", r, len(s.Times))}
	}

	out := &Surface{
		Times:   make([]float64, n),
		Periods: append([]float64(nil), s.Periods...),
		Values:  make([][]float64, n),
	}
	if s.COI != nil {
		out.COI = make([]float64, n)
	}
	inv := 1 / float64(r)
	for i := 0; i < n; i++ {
		row := make([]float64, len(s.Periods))
		tSum := 0.0
		coiSum := 0.0
		for k := i * r; k < (i+1)*r; k++ {
			tSum += s.Times[k]
			for j := range row {
				row[j] += s.Values[k][j]
			}
			if s.COI != nil {
				coiSum += s.COI[k]
			}
		}
		out.Times[i] = tSum * inv
		for j := range row {
			row[j] *= inv
		}
		out.Values[i] = row
		if s.COI != nil {
			out.COI[i] = coiSum * inv
		}
	}
	return out, nil
}

// Decimate reduces the time axis by stride-based selection, keeping every
// stride-th row starting at the first.
func Decimate(s *Surface, stride int) (*Surface, error) {
	if stride <= 0 {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("stride must be positive, got %d", stride)}
	}
	if stride == 1 {
		return s.Clone(), nil
	}

	n := (len(s.Times) + stride - 1) / stride
	out := &Surface{
		Times:   make([]float64, 0, n),
		Periods: append([]float64(nil), s.Periods...),
		Values:  make([][]float64, 0, n),
	}
	if s.COI != nil {
		out.COI = make([]float64, 0, n)
	}
	for t := 0; t < len(s.Times); t += stride {
		out.Times = append(out.Times, s.Times[t])
		out.Values = append(out.Values, append([]float64(nil), s.Values[t]...))
		if s.COI != nil {
			out.COI = append(out.COI, s.COI[t])
		}
	}
	return out, nil
}

// FilterPeriods retains the columns whose period falls within [pMin, pMax]
func FilterPeriods(s *Surface, pMin, pMax float64) (*Surface, error) {
	if pMax <= pMin {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("period range [%g, %g] has non-positive width", pMin, pMax)}
	}

	// Tolerant bounds, so a range endpoint that round-tripped through the
	// scale mapping is not dropped by one ulp
	const tol = 1e-9
	keep := make([]int, 0, len(s.Periods))
	for j, p := range s.Periods {
		if p >= pMin*(1-tol) && p <= pMax*(1+tol) {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return nil, &wavelet.InvalidRangeError{Reason: fmt.Sprintf("no scales within period range [%g, %g]", pMin, pMax)}
	}

	out := &Surface{
		Times:   append([]float64(nil), s.Times...),
		Periods: make([]float64, len(keep)),
		Values:  make([][]float64, len(s.Values)),
	}
	if s.COI != nil {
		out.COI = append([]float64(nil), s.COI...)
	}
	for i, j := range keep {
		out.Periods[i] = s.Periods[j]
	}
	for t, row := range s.Values {
		sel := make([]float64, len(keep))
		for i, j := range keep {
			sel[i] = row[j]
		}
		out.Values[t] = sel
	}
	return out, nil
}
