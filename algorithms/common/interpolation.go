package common

// Interp1 linearly interpolates the samples (xs, ys) onto the points xi.
// xs must be strictly increasing. Non-finite ys samples are skipped, so
// isolated gaps are bridged by interpolating across them. Points outside
// the finite sample range are clamped to the nearest finite endpoint.
func Interp1(xs, ys, xi []float64) []float64 {
	// Collapse to the finite samples only
	fx := make([]float64, 0, len(xs))
	fy := make([]float64, 0, len(ys))
	for i := range xs {
		if IsFinite(ys[i]) {
			fx = append(fx, xs[i])
			fy = append(fy, ys[i])
		}
	}

	out := make([]float64, len(xi))
	if len(fx) == 0 {
		return out
	}
	if len(fx) == 1 {
		for i := range out {
			out[i] = fy[0]
		}
		return out
	}

	// xi is typically increasing, so advance the segment cursor instead of
	// binary searching from scratch each point
	seg := 0
	for i, x := range xi {
		switch {
		case x <= fx[0]:
			out[i] = fy[0]
		case x >= fx[len(fx)-1]:
			out[i] = fy[len(fx)-1]
		default:
			if seg > 0 && x < fx[seg] {
				seg = 0
			}
			for fx[seg+1] < x {
				seg++
			}
			frac := (x - fx[seg]) / (fx[seg+1] - fx[seg])
			out[i] = fy[seg] + frac*(fy[seg+1]-fy[seg])
		}
	}
	return out
}
