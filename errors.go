package glance

import "github.com/pkg/errors"

// The error conditions surfaced by the library. All of them are local and
// recoverable: the caller decides whether to abort or retry with corrected
// parameters. Call sites wrap these sentinels with contextual details, so
// they should be tested with errors.Is.
var (
	// ErrInvalidDimensions is returned when a buffer is constructed with a
	// zero or negative width, height or channel count.
	ErrInvalidDimensions = errors.New("invalid buffer dimensions")

	// ErrOutOfBounds is returned on pixel access beyond the buffer extent.
	ErrOutOfBounds = errors.New("pixel coordinates out of bounds")

	// ErrInvalidParameter is returned on invalid operation parameters,
	// like a non-positive gamma or mismatched buffer dimensions.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrKernelTooLarge is returned when a kernel or filter window exceeds
	// the dimensions of the buffer it is applied to.
	ErrKernelTooLarge = errors.New("kernel exceeds buffer dimensions")
)
