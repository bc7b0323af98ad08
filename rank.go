package glance

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// The rank filters and morphological operations share one discipline: every
// neighborhood is read from the original input buffer while results are
// written into a separate output buffer, so a worker can never observe
// another worker's (or its own) partially written results.

// Median replaces every sample with the median of the width x height window
// centered on it (anchor rule as for kernels). For windows with an even
// sample count the lower-middle value is picked deterministically. A 1x1
// window is the identity transform.
func Median[T Sample](src *Buffer[T], width, height int, border Border, workers int) (*Buffer[T], error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "median window %dx%d", width, height)
	}
	if width > src.width || height > src.height {
		return nil, errors.Wrapf(ErrKernelTooLarge, "%dx%d window on %dx%d buffer", width, height, src.width, src.height)
	}

	anchorX := (width - 1) / 2
	anchorY := (height - 1) / 2
	fill := quantize[T](border.Value)

	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		window := make([]T, 0, width*height)
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := dst.offset(x, y)
				for c := 0; c < src.channels; c++ {
					window = window[:0]
					for wy := 0; wy < height; wy++ {
						sy, okY := border.fold(y+wy-anchorY, src.height)
						for wx := 0; wx < width; wx++ {
							sx, okX := border.fold(x+wx-anchorX, src.width)
							if !okY || !okX {
								window = append(window, fill)
								continue
							}
							window = append(window, src.SampleAt(sx, sy, c))
						}
					}
					slices.Sort(window)
					dst.data[off+c] = window[(len(window)-1)/2]
				}
			}
		}
	})
	return dst, nil
}

// rankExtremum drives Erode and Dilate: it reduces the samples under the
// structuring element with min (dilate=false) or max (dilate=true).
func rankExtremum[T Sample](src *Buffer[T], se *StructuringElement, border Border, workers int, dilate bool) (*Buffer[T], error) {
	if se.width > src.width || se.height > src.height {
		return nil, errors.Wrapf(ErrKernelTooLarge, "%dx%d structuring element on %dx%d buffer", se.width, se.height, src.width, src.height)
	}

	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := dst.offset(x, y)
				for c := 0; c < src.channels; c++ {
					first := true
					var best float64
					for sy := 0; sy < se.height; sy++ {
						for sx := 0; sx < se.width; sx++ {
							if !se.Contains(sx, sy) {
								continue
							}
							v := sampleAt(src, border, x+sx-se.anchorX, y+sy-se.anchorY, c)
							if first || (dilate && v > best) || (!dilate && v < best) {
								best = v
								first = false
							}
						}
					}
					dst.data[off+c] = quantize[T](best)
				}
			}
		}
	})
	return dst, nil
}

// Erode outputs, for every sample, the minimum value under the structuring
// element.
func Erode[T Sample](src *Buffer[T], se *StructuringElement, border Border, workers int) (*Buffer[T], error) {
	return rankExtremum(src, se, border, workers, false)
}

// Dilate outputs, for every sample, the maximum value under the structuring
// element.
func Dilate[T Sample](src *Buffer[T], se *StructuringElement, border Border, workers int) (*Buffer[T], error) {
	return rankExtremum(src, se, border, workers, true)
}

// Opening erodes and then dilates, removing bright details smaller than the
// structuring element.
func Opening[T Sample](src *Buffer[T], se *StructuringElement, border Border, workers int) (*Buffer[T], error) {
	eroded, err := Erode(src, se, border, workers)
	if err != nil {
		return nil, err
	}
	return Dilate(eroded, se, border, workers)
}

// Closing dilates and then erodes, filling dark details smaller than the
// structuring element.
func Closing[T Sample](src *Buffer[T], se *StructuringElement, border Border, workers int) (*Buffer[T], error) {
	dilated, err := Dilate(src, se, border, workers)
	if err != nil {
		return nil, err
	}
	return Erode(dilated, se, border, workers)
}
