package vision

// DefaultMaxDimension is the longest side the diffusion backend accepts.
const DefaultMaxDimension = 1024

// RoundUp8 rounds v up to the next multiple of 8.
func RoundUp8(v int) int {
	return ((v + 7) / 8) * 8
}

// NormalizeDimensions returns a target size whose sides are multiples of 8 and
// no larger than maxDim.
//
// Both sides are rounded up first. If the width then exceeds maxDim it is clamped
// and the height scaled by the same factor (truncated, then rounded up). The
// height check runs afterwards on the already adjusted values, so extreme aspect
// ratios can trigger both.
func NormalizeDimensions(w, h, maxDim int) (int, int) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	tw, th := RoundUp8(w), RoundUp8(h)

	if tw > maxDim {
		scale := float64(maxDim) / float64(tw)
		tw = maxDim
		th = RoundUp8(int(float64(th) * scale))
	}
	if th > maxDim {
		scale := float64(maxDim) / float64(th)
		th = maxDim
		tw = RoundUp8(int(float64(tw) * scale))
	}

	// Degenerate inputs (e.g. 1×5000) would otherwise collapse a side to zero.
	if tw < 8 {
		tw = 8
	}
	if th < 8 {
		th = 8
	}
	return tw, th
}
