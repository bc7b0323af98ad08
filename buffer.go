package glance

import (
	"github.com/pkg/errors"
)

// Buffer holds a contiguous, strided 2D array of pixels with a fixed channel
// layout and sample type. Samples are stored in row-major order and the
// sample of channel c at (x, y) lives at index y*stride + x*channels + c.
// The stride is expressed in samples and may exceed width*channels to allow
// row alignment padding.
//
// A Buffer is exclusively owned by its creator until handed to an operation.
// Operations either return a brand new buffer or document explicitly that
// they mutate their receiver; none of them shares mutable buffer state
// across goroutines outside the row-band discipline of parallelize.
type Buffer[T Sample] struct {
	width    int
	height   int
	channels int
	stride   int
	data     []T
}

// NewBuffer creates a zero-filled buffer with the given dimensions.
func NewBuffer[T Sample](width, height, channels int) (*Buffer[T], error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d with %d channel(s)", width, height, channels)
	}
	return &Buffer[T]{
		width:    width,
		height:   height,
		channels: channels,
		stride:   width * channels,
		data:     make([]T, width*height*channels),
	}, nil
}

// NewBufferFill creates a buffer with every pixel set to the fill pixel.
// The fill length must match the channel count.
func NewBufferFill[T Sample](width, height, channels int, fill []T) (*Buffer[T], error) {
	b, err := NewBuffer[T](width, height, channels)
	if err != nil {
		return nil, err
	}
	if len(fill) != channels {
		return nil, errors.Wrapf(ErrInvalidParameter, "fill pixel has %d sample(s), buffer has %d channel(s)", len(fill), channels)
	}
	for i := 0; i < len(b.data); i += channels {
		copy(b.data[i:i+channels], fill)
	}
	return b, nil
}

// FromData wraps an existing sample slice into a buffer without copying.
// The data length must be exactly width*height*channels.
func FromData[T Sample](width, height, channels int, data []T) (*Buffer[T], error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d with %d channel(s)", width, height, channels)
	}
	if len(data) != width*height*channels {
		return nil, errors.Wrapf(ErrInvalidParameter, "data length %d does not match %dx%dx%d", len(data), width, height, channels)
	}
	return &Buffer[T]{
		width:    width,
		height:   height,
		channels: channels,
		stride:   width * channels,
		data:     data,
	}, nil
}

// FromDataStride is like FromData but accepts a row stride larger than
// width*channels, keeping any alignment padding the producer emitted.
func FromDataStride[T Sample](width, height, channels, stride int, data []T) (*Buffer[T], error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d with %d channel(s)", width, height, channels)
	}
	if stride < width*channels {
		return nil, errors.Wrapf(ErrInvalidParameter, "stride %d below row width %d", stride, width*channels)
	}
	if stride*height > len(data) {
		return nil, errors.Wrapf(ErrInvalidParameter, "data length %d below stride*height %d", len(data), stride*height)
	}
	return &Buffer[T]{
		width:    width,
		height:   height,
		channels: channels,
		stride:   stride,
		data:     data,
	}, nil
}

// Width returns the buffer width in pixels.
func (b *Buffer[T]) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer[T]) Height() int { return b.height }

// Channels returns the number of samples per pixel.
func (b *Buffer[T]) Channels() int { return b.channels }

// Stride returns the row stride in samples.
func (b *Buffer[T]) Stride() int { return b.stride }

// Dimensions returns the buffer width and height.
func (b *Buffer[T]) Dimensions() (int, int) { return b.width, b.height }

// Data exposes the backing sample store. The layout is documented on Buffer.
func (b *Buffer[T]) Data() []T { return b.data }

// offset returns the index of the first sample of the pixel at (x, y).
func (b *Buffer[T]) offset(x, y int) int {
	return y*b.stride + x*b.channels
}

// inBounds reports whether (x, y) addresses a pixel inside the buffer.
func (b *Buffer[T]) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns a copy of the pixel at (x, y).
func (b *Buffer[T]) Get(x, y int) ([]T, error) {
	if !b.inBounds(x, y) {
		return nil, errors.Wrapf(ErrOutOfBounds, "(%d,%d) outside %dx%d", x, y, b.width, b.height)
	}
	px := make([]T, b.channels)
	copy(px, b.data[b.offset(x, y):])
	return px, nil
}

// Set overwrites the pixel at (x, y). The pixel length must match the
// channel count.
func (b *Buffer[T]) Set(x, y int, px []T) error {
	if !b.inBounds(x, y) {
		return errors.Wrapf(ErrOutOfBounds, "(%d,%d) outside %dx%d", x, y, b.width, b.height)
	}
	if len(px) != b.channels {
		return errors.Wrapf(ErrInvalidParameter, "pixel has %d sample(s), buffer has %d channel(s)", len(px), b.channels)
	}
	copy(b.data[b.offset(x, y):], px)
	return nil
}

// SampleAt returns the sample of channel c at (x, y) without bounds checks.
// It is the hot-path accessor used by the filter engines, which validate
// their coordinates up front.
func (b *Buffer[T]) SampleAt(x, y, c int) T {
	return b.data[y*b.stride+x*b.channels+c]
}

// SetSampleAt overwrites the sample of channel c at (x, y) without bounds
// checks, the writing counterpart of SampleAt.
func (b *Buffer[T]) SetSampleAt(x, y, c int, v T) {
	b.data[y*b.stride+x*b.channels+c] = v
}

// Row returns the sample slice of row y, stride padding excluded. The slice
// aliases the backing store.
func (b *Buffer[T]) Row(y int) ([]T, error) {
	if y < 0 || y >= b.height {
		return nil, errors.Wrapf(ErrOutOfBounds, "row %d outside height %d", y, b.height)
	}
	off := y * b.stride
	return b.data[off : off+b.width*b.channels], nil
}

// Clone returns a deep copy of the buffer with a compact stride.
func (b *Buffer[T]) Clone() *Buffer[T] {
	dst := &Buffer[T]{
		width:    b.width,
		height:   b.height,
		channels: b.channels,
		stride:   b.width * b.channels,
		data:     make([]T, b.width*b.height*b.channels),
	}
	row := b.width * b.channels
	for y := 0; y < b.height; y++ {
		copy(dst.data[y*dst.stride:y*dst.stride+row], b.data[y*b.stride:])
	}
	return dst
}

// Map produces a new buffer of identical dimensions by applying fn to every
// pixel independently. The slice passed to fn is pre-filled with the source
// pixel and any mutation of it becomes the output pixel. fn must be pure
// with respect to the source buffer; rows are processed in parallel across
// the given number of workers.
func (b *Buffer[T]) Map(fn func(x, y int, px []T), workers int) *Buffer[T] {
	dst := b.Clone()
	parallelize(workers, 0, b.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < b.width; x++ {
				off := dst.offset(x, y)
				fn(x, y, dst.data[off:off+b.channels])
			}
		}
	})
	return dst
}

// Convert rescales a buffer into another sample type, mapping the source
// range proportionally onto the destination range.
func Convert[T, F Sample](src *Buffer[F]) *Buffer[T] {
	dst := &Buffer[T]{
		width:    src.width,
		height:   src.height,
		channels: src.channels,
		stride:   src.width * src.channels,
		data:     make([]T, src.width*src.height*src.channels),
	}
	scale := maxSample[T]() / maxSample[F]()
	for y := 0; y < src.height; y++ {
		so := y * src.stride
		do := y * dst.stride
		for i := 0; i < src.width*src.channels; i++ {
			dst.data[do+i] = quantize[T](float64(src.data[so+i]) * scale)
		}
	}
	return dst
}
