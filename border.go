package glance

// BorderMode selects how out-of-bounds neighborhood samples are synthesized
// whenever a kernel window extends past the buffer bounds.
type BorderMode int

const (
	// BorderExtend repeats the nearest edge sample.
	BorderExtend BorderMode = iota
	// BorderMirror reflects the samples around the edge, the edge sample
	// included: for a row "a b c", the positions left of "a" read "a b c".
	BorderMirror
	// BorderWrap tiles the buffer periodically.
	BorderWrap
	// BorderConstant substitutes a fixed fill value.
	BorderConstant
)

// Border is the shared border-handling strategy injected into every windowed
// operation (convolution, rank filters, morphology), so edge semantics stay
// consistent across the library. Value is only consulted in BorderConstant
// mode and is expressed in sample units of the buffer being filtered.
type Border struct {
	Mode  BorderMode
	Value float64
}

// ConstantBorder returns a constant-fill border strategy.
func ConstantBorder(value float64) Border {
	return Border{Mode: BorderConstant, Value: value}
}

// fold maps the coordinate p into [0, n) according to the border mode.
// The second return is false only in BorderConstant mode for an
// out-of-bounds p, in which case the caller substitutes Value.
func (b Border) fold(p, n int) (int, bool) {
	if p >= 0 && p < n {
		return p, true
	}
	switch b.Mode {
	case BorderExtend:
		if p < 0 {
			return 0, true
		}
		return n - 1, true
	case BorderMirror:
		// Reflection period is 2n; fold into it first.
		p %= 2 * n
		if p < 0 {
			p += 2 * n
		}
		if p >= n {
			p = 2*n - 1 - p
		}
		return p, true
	case BorderWrap:
		p %= n
		if p < 0 {
			p += n
		}
		return p, true
	default:
		return 0, false
	}
}

// sampleAt resolves the sample of channel c at (x, y) through the border
// strategy, returning the fill value for constant-mode misses.
func sampleAt[T Sample](b *Buffer[T], border Border, x, y, c int) float64 {
	xi, ok := border.fold(x, b.width)
	if !ok {
		return border.Value
	}
	yi, ok := border.fold(y, b.height)
	if !ok {
		return border.Value
	}
	return float64(b.SampleAt(xi, yi, c))
}
