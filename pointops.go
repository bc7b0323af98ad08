package glance

import (
	"math"

	"github.com/pkg/errors"
)

// BT.601 luminance weights used for the RGBA to grayscale conversion.
const (
	lumaRed   = 0.299
	lumaGreen = 0.587
	lumaBlue  = 0.114
)

// alphaChannel is the index of the alpha channel in 4-channel buffers.
// Tonal point operations leave it untouched.
const alphaChannel = 3

// mapSamples applies fn to every non-alpha sample of src and quantizes the
// result, producing a new buffer. Rows are processed in parallel.
func mapSamples[T Sample](src *Buffer[T], workers int, fn func(v float64) float64) *Buffer[T] {
	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := dst.offset(x, y)
				for c := 0; c < src.channels; c++ {
					if src.channels == 4 && c == alphaChannel {
						continue
					}
					dst.data[off+c] = quantize[T](fn(float64(dst.data[off+c])))
				}
			}
		}
	})
	return dst
}

// Brightness adds delta (in sample units) to every sample, saturating at the
// bounds of the sample range.
func Brightness[T Sample](src *Buffer[T], delta float64, workers int) *Buffer[T] {
	return mapSamples(src, workers, func(v float64) float64 {
		return v + delta
	})
}

// Contrast scales the distance of every sample from the midpoint of the
// sample range by factor.
func Contrast[T Sample](src *Buffer[T], factor float64, workers int) *Buffer[T] {
	mid := maxSample[T]() / 2
	return mapSamples(src, workers, func(v float64) float64 {
		return (v-mid)*factor + mid
	})
}

// Gamma applies the power-law transform pow(v/max, gamma)*max to every
// sample. A non-positive gamma is rejected.
func Gamma[T Sample](src *Buffer[T], gamma float64, workers int) (*Buffer[T], error) {
	if gamma <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "gamma %v must be positive", gamma)
	}
	max := maxSample[T]()
	return mapSamples(src, workers, func(v float64) float64 {
		return math.Pow(v/max, gamma) * max
	}), nil
}

// Invert maps every sample v to max-v, preserving alpha.
func Invert[T Sample](src *Buffer[T], workers int) *Buffer[T] {
	max := maxSample[T]()
	return mapSamples(src, workers, func(v float64) float64 {
		return max - v
	})
}

// ThresholdKind selects the thresholding rule.
type ThresholdKind int

const (
	// ThresholdBinary maps samples at or above the threshold to high,
	// everything else to low.
	ThresholdBinary ThresholdKind = iota
	// ThresholdTruncate caps samples above the threshold at the threshold
	// value and leaves the rest unchanged.
	ThresholdTruncate
	// ThresholdToZero keeps samples above the threshold and maps the rest
	// to low.
	ThresholdToZero
)

// Threshold applies the selected thresholding rule to every sample.
// high and low are only consulted by the kinds that use them.
func Threshold[T Sample](src *Buffer[T], kind ThresholdKind, t, high, low T, workers int) *Buffer[T] {
	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := dst.offset(x, y)
				for c := 0; c < src.channels; c++ {
					if src.channels == 4 && c == alphaChannel {
						continue
					}
					v := dst.data[off+c]
					switch kind {
					case ThresholdBinary:
						if v >= t {
							dst.data[off+c] = high
						} else {
							dst.data[off+c] = low
						}
					case ThresholdTruncate:
						if v > t {
							dst.data[off+c] = t
						}
					case ThresholdToZero:
						if v <= t {
							dst.data[off+c] = low
						}
					}
				}
			}
		}
	})
	return dst
}

// Grayscale reduces a 3 or 4 channel buffer to a single luminance channel
// using the BT.601 perceptual weights. Alpha, when present, is ignored.
func Grayscale[T Sample](src *Buffer[T], workers int) (*Buffer[T], error) {
	if src.channels != 3 && src.channels != 4 {
		return nil, errors.Wrapf(ErrInvalidParameter, "grayscale needs 3 or 4 channels, buffer has %d", src.channels)
	}
	dst := &Buffer[T]{
		width:    src.width,
		height:   src.height,
		channels: 1,
		stride:   src.width,
		data:     make([]T, src.width*src.height),
	}
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := src.offset(x, y)
				lum := float64(src.data[off])*lumaRed +
					float64(src.data[off+1])*lumaGreen +
					float64(src.data[off+2])*lumaBlue
				dst.data[y*dst.stride+x] = quantize[T](lum)
			}
		}
	})
	return dst, nil
}

// Lerp linearly interpolates between two buffers of identical geometry:
// out = a*(1-alpha) + b*alpha. The alpha channel of 4-channel buffers is
// set fully opaque.
func Lerp[T Sample](a, b *Buffer[T], alpha float64, workers int) (*Buffer[T], error) {
	if a.width != b.width || a.height != b.height || a.channels != b.channels {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"cannot lerp %dx%dx%d with %dx%dx%d",
			a.width, a.height, a.channels, b.width, b.height, b.channels)
	}
	dst := a.Clone()
	max := maxSample[T]()
	parallelize(workers, 0, a.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < a.width; x++ {
				off := dst.offset(x, y)
				ao := a.offset(x, y)
				bo := b.offset(x, y)
				for c := 0; c < a.channels; c++ {
					if a.channels == 4 && c == alphaChannel {
						dst.data[off+c] = quantize[T](max)
						continue
					}
					v := float64(a.data[ao+c])*(1-alpha) + float64(b.data[bo+c])*alpha
					dst.data[off+c] = quantize[T](v)
				}
			}
		}
	})
	return dst, nil
}
