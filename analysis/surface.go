package analysis

// Surface is a real-valued time-by-scale matrix with its originating time
// and period axes carried as metadata. Shaping operations never mutate a
// Surface; they return new, independently owned ones.
type Surface struct {
	// Times holds one timestamp per row of Values
	Times []float64

	// Periods holds one Fourier period per column of Values
	Periods []float64

	// Values[t][j] is the quantity at Times[t], Periods[j]
	Values [][]float64

	// COI, when present, is the per-row maximum edge-unaffected period
	COI []float64
}

// Frequencies returns the per-column frequency axis (1/period)
func (s *Surface) Frequencies() []float64 {
	freqs := make([]float64, len(s.Periods))
	for j, p := range s.Periods {
		freqs[j] = 1 / p
	}
	return freqs
}

// Clone returns a deep copy
func (s *Surface) Clone() *Surface {
	out := &Surface{
		Times:   append([]float64(nil), s.Times...),
		Periods: append([]float64(nil), s.Periods...),
		Values:  make([][]float64, len(s.Values)),
	}
	for t, row := range s.Values {
		out.Values[t] = append([]float64(nil), row...)
	}
	if s.COI != nil {
		out.COI = append([]float64(nil), s.COI...)
	}
	return out
}

func newSurface(times, periods []float64, values [][]float64, coi []float64) *Surface {
	return &Surface{
		Times:   times,
		Periods: periods,
		Values:  values,
		COI:     coi,
	}
}
