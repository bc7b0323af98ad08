package glance

import (
	"math"

	"github.com/pkg/errors"
)

// Kernel is an immutable 2D matrix of signed convolution weights with an
// explicit anchor point. The anchor rule is ((w-1)/2, (h-1)/2) for both odd
// and even dimensions, which selects the exact center for odd sizes and the
// upper-left of the two center candidates for even sizes.
type Kernel struct {
	width   int
	height  int
	anchorX int
	anchorY int
	weights []float64

	// 1D factors of a separable kernel; nil when the kernel does not
	// decompose. The 2D weights of a separable kernel are always the exact
	// outer product of the factors.
	xf, yf []float64
}

// NewKernel builds a kernel from row-major weights.
func NewKernel(width, height int, weights []float64) (*Kernel, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "kernel dimensions %dx%d", width, height)
	}
	if len(weights) != width*height {
		return nil, errors.Wrapf(ErrInvalidParameter, "kernel has %d weight(s), expected %d", len(weights), width*height)
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Kernel{
		width:   width,
		height:  height,
		anchorX: (width - 1) / 2,
		anchorY: (height - 1) / 2,
		weights: w,
	}, nil
}

// newSeparable builds a kernel as the outer product of two 1D factors.
func newSeparable(xf, yf []float64) *Kernel {
	w := len(xf)
	h := len(yf)
	weights := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			weights[y*w+x] = yf[y] * xf[x]
		}
	}
	return &Kernel{
		width:   w,
		height:  h,
		anchorX: (w - 1) / 2,
		anchorY: (h - 1) / 2,
		weights: weights,
		xf:      xf,
		yf:      yf,
	}
}

// Size returns the kernel width and height.
func (k *Kernel) Size() (int, int) { return k.width, k.height }

// Anchor returns the anchor point coordinates.
func (k *Kernel) Anchor() (int, int) { return k.anchorX, k.anchorY }

// At returns the weight at kernel position (x, y).
func (k *Kernel) At(x, y int) float64 { return k.weights[y*k.width+x] }

// Separable reports whether the kernel decomposes into two 1D passes.
func (k *Kernel) Separable() bool { return k.xf != nil && k.yf != nil }

// Factors returns the horizontal and vertical 1D factors of a separable
// kernel, or nil slices for a non-separable one.
func (k *Kernel) Factors() ([]float64, []float64) { return k.xf, k.yf }

// Identity returns the 1x1 kernel with a single unit weight. Convolving
// with it reproduces the input buffer.
func Identity() *Kernel {
	k, _ := NewKernel(1, 1, []float64{1})
	return k
}

// Box returns a normalized size x size averaging kernel. It is separable.
func Box(size int) (*Kernel, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "box kernel size %d", size)
	}
	f := make([]float64, size)
	for i := range f {
		f[i] = 1 / float64(size)
	}
	return newSeparable(f, f), nil
}

// Gaussian returns a normalized size x size Gaussian kernel with the given
// standard deviation. It is separable.
func Gaussian(size int, sigma float64) (*Kernel, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "gaussian kernel size %d", size)
	}
	if sigma <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "gaussian sigma %v", sigma)
	}
	f := make([]float64, size)
	center := float64(size-1) / 2
	sum := 0.0
	for i := range f {
		d := float64(i) - center
		f[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += f[i]
	}
	for i := range f {
		f[i] /= sum
	}
	return newSeparable(f, f), nil
}

// SobelX returns the 3x3 horizontal Sobel gradient kernel.
func SobelX() *Kernel {
	k, _ := NewKernel(3, 3, []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	})
	return k
}

// SobelY returns the 3x3 vertical Sobel gradient kernel.
func SobelY() *Kernel {
	k, _ := NewKernel(3, 3, []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	})
	return k
}

// Laplacian returns the 3x3 4-connected Laplacian kernel.
func Laplacian() *Kernel {
	k, _ := NewKernel(3, 3, []float64{
		0, 1, 0,
		1, -4, 1,
		0, 1, 0,
	})
	return k
}

// StructuringElement is a boolean neighborhood mask used by the
// morphological operations. Unlike a Kernel it carries no weights: a set
// cell means the sample under it participates in the min/max. The anchor
// rule matches Kernel.
type StructuringElement struct {
	width   int
	height  int
	anchorX int
	anchorY int
	mask    []bool
}

// NewStructuringElement builds a structuring element from a row-major mask.
// At least one cell must be set.
func NewStructuringElement(width, height int, mask []bool) (*StructuringElement, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "structuring element dimensions %dx%d", width, height)
	}
	if len(mask) != width*height {
		return nil, errors.Wrapf(ErrInvalidParameter, "mask has %d cell(s), expected %d", len(mask), width*height)
	}
	any := false
	m := make([]bool, len(mask))
	copy(m, mask)
	for _, set := range m {
		if set {
			any = true
			break
		}
	}
	if !any {
		return nil, errors.Wrap(ErrInvalidParameter, "empty structuring element")
	}
	return &StructuringElement{
		width:   width,
		height:  height,
		anchorX: (width - 1) / 2,
		anchorY: (height - 1) / 2,
		mask:    m,
	}, nil
}

// Size returns the structuring element width and height.
func (se *StructuringElement) Size() (int, int) { return se.width, se.height }

// Contains reports whether the cell at (x, y) is part of the neighborhood.
func (se *StructuringElement) Contains(x, y int) bool { return se.mask[y*se.width+x] }

// RectSE returns a fully set rectangular structuring element.
func RectSE(width, height int) (*StructuringElement, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "structuring element dimensions %dx%d", width, height)
	}
	mask := make([]bool, width*height)
	for i := range mask {
		mask[i] = true
	}
	return NewStructuringElement(width, height, mask)
}

// DiskSE returns a circular structuring element of the given radius, with a
// side of 2*radius+1 cells.
func DiskSE(radius int) (*StructuringElement, error) {
	if radius < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "disk radius %d", radius)
	}
	size := 2*radius + 1
	mask := make([]bool, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := x - radius
			dy := y - radius
			mask[y*size+x] = dx*dx+dy*dy <= radius*radius
		}
	}
	return NewStructuringElement(size, size, mask)
}

// CrossSE returns a cross shaped structuring element: the full middle row
// and middle column are set.
func CrossSE(width, height int) (*StructuringElement, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "structuring element dimensions %dx%d", width, height)
	}
	mask := make([]bool, width*height)
	midY := (height - 1) / 2
	midX := (width - 1) / 2
	for x := 0; x < width; x++ {
		mask[midY*width+x] = true
	}
	for y := 0; y < height; y++ {
		mask[y*width+midX] = true
	}
	return NewStructuringElement(width, height, mask)
}
