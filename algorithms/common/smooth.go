package common

// MovingAverage returns the centered boxcar moving average of data with the
// given window width. The window is truncated at the edges, so the output
// has the same length as the input. Width < 2 returns a copy.
func MovingAverage(data []float64, width int) []float64 {
	out := make([]float64, len(data))
	if width < 2 {
		copy(out, data)
		return out
	}
	half := width / 2
	for i := range data {
		lo := max(i-half, 0)
		hi := min(i+half, len(data)-1)
		sum := 0.0
		for k := lo; k <= hi; k++ {
			sum += data[k]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
