package glance

import (
	"math"

	"github.com/pkg/errors"
)

// Convolve applies the kernel over every pixel of src and returns a new
// buffer of identical geometry. Each output sample is the weighted sum of
// the kernel-sized neighborhood, with the kernel anchor aligned to the
// output pixel and out-of-bounds samples resolved through the border
// strategy, then clamped and rounded to the sample type. Channels are
// convolved independently.
//
// Separable kernels are dispatched to a two-pass 1D path; the direct 2D
// path remains correct for any kernel.
func Convolve[T Sample](src *Buffer[T], k *Kernel, border Border, workers int) (*Buffer[T], error) {
	if k.width > src.width || k.height > src.height {
		return nil, errors.Wrapf(ErrKernelTooLarge, "%dx%d kernel on %dx%d buffer", k.width, k.height, src.width, src.height)
	}
	if k.Separable() {
		return convolveSeparable(src, k, border, workers), nil
	}
	return convolve2D(src, k, border, workers), nil
}

// convolve2D is the direct single-pass implementation.
func convolve2D[T Sample](src *Buffer[T], k *Kernel, border Border, workers int) *Buffer[T] {
	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := dst.offset(x, y)
				for c := 0; c < src.channels; c++ {
					sum := 0.0
					for ky := 0; ky < k.height; ky++ {
						sy := y + ky - k.anchorY
						for kx := 0; kx < k.width; kx++ {
							sum += k.At(kx, ky) * sampleAt(src, border, x+kx-k.anchorX, sy, c)
						}
					}
					dst.data[off+c] = quantize[T](sum)
				}
			}
		}
	})
	return dst
}

// convolveSeparable runs the horizontal 1D factor over the source into a
// float intermediate, then the vertical factor over the intermediate.
// Because the 2D weights of a separable kernel are the exact outer product
// of its factors, the two passes compute the same sums as the direct path.
func convolveSeparable[T Sample](src *Buffer[T], k *Kernel, border Border, workers int) *Buffer[T] {
	xf, yf := k.Factors()
	rowLen := src.width * src.channels
	tmp := make([]float64, rowLen*src.height)

	// Horizontal pass: border folding applies to x only, y stays in range.
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				for c := 0; c < src.channels; c++ {
					sum := 0.0
					for i, w := range xf {
						sum += w * sampleAt(src, border, x+i-k.anchorX, y, c)
					}
					tmp[y*rowLen+x*src.channels+c] = sum
				}
			}
		}
	})

	// A constant border row, convolved horizontally, sums to value*sum(xf).
	oobRow := border.Value
	if border.Mode == BorderConstant {
		s := 0.0
		for _, w := range xf {
			s += w
		}
		oobRow = border.Value * s
	}

	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := dst.offset(x, y)
				for c := 0; c < src.channels; c++ {
					sum := 0.0
					for i, w := range yf {
						sy, ok := border.fold(y+i-k.anchorY, src.height)
						if !ok {
							sum += w * oobRow
							continue
						}
						sum += w * tmp[sy*rowLen+x*src.channels+c]
					}
					dst.data[off+c] = quantize[T](sum)
				}
			}
		}
	})
	return dst
}

// GaussianBlur convolves the buffer with a normalized Gaussian kernel of
// the given size and standard deviation.
func GaussianBlur[T Sample](src *Buffer[T], size int, sigma float64, border Border, workers int) (*Buffer[T], error) {
	k, err := Gaussian(size, sigma)
	if err != nil {
		return nil, err
	}
	return Convolve(src, k, border, workers)
}

// BoxBlur convolves the buffer with a normalized averaging kernel.
func BoxBlur[T Sample](src *Buffer[T], size int, border Border, workers int) (*Buffer[T], error) {
	k, err := Box(size)
	if err != nil {
		return nil, err
	}
	return Convolve(src, k, border, workers)
}

// LaplacianFilter convolves the buffer with the 3x3 Laplacian kernel.
func LaplacianFilter[T Sample](src *Buffer[T], border Border, workers int) (*Buffer[T], error) {
	return Convolve(src, Laplacian(), border, workers)
}

// Sobel computes the gradient magnitude sqrt(gx^2+gy^2) of a single channel
// buffer through the two 3x3 Sobel kernels, zeroing magnitudes at or below
// the threshold (expressed in sample units). The input must be a
// single channel (grayscale) buffer.
func Sobel[T Sample](src *Buffer[T], threshold float64, border Border, workers int) (*Buffer[T], error) {
	if src.channels != 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "sobel needs a single channel buffer, got %d channel(s)", src.channels)
	}
	if src.width < 3 || src.height < 3 {
		return nil, errors.Wrapf(ErrKernelTooLarge, "3x3 kernel on %dx%d buffer", src.width, src.height)
	}

	kx := SobelX()
	ky := SobelY()
	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				var sumX, sumY float64
				for j := 0; j < 3; j++ {
					sy := y + j - 1
					for i := 0; i < 3; i++ {
						v := sampleAt(src, border, x+i-1, sy, 0)
						sumX += v * kx.At(i, j)
						sumY += v * ky.At(i, j)
					}
				}
				magnitude := math.Sqrt(sumX*sumX + sumY*sumY)
				if magnitude <= threshold {
					magnitude = 0
				}
				dst.data[y*dst.stride+x] = quantize[T](magnitude)
			}
		}
	})
	return dst, nil
}
