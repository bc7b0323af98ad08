package glance

import "math"

// Sample is the set of supported sample types: 8 and 16 bit unsigned
// integers and normalized 32 bit floats. All filter arithmetic is carried
// out in float64 and converted back through quantize, so the filter code is
// written only once, against this constraint.
type Sample interface {
	uint8 | uint16 | float32
}

// maxSample returns the upper bound of the representable sample range.
// Float samples are treated as normalized values in [0, 1].
func maxSample[T Sample]() float64 {
	var t T
	switch any(t).(type) {
	case uint8:
		return math.MaxUint8
	case uint16:
		return math.MaxUint16
	default:
		return 1.0
	}
}

// quantize clamps v into the representable sample range and rounds it to the
// nearest representable value. Saturation is the numeric policy of the whole
// library: values never wrap around.
func quantize[T Sample](v float64) T {
	max := maxSample[T]()
	if v < 0 {
		v = 0
	} else if v > max {
		v = max
	}

	var t T
	if _, ok := any(t).(float32); ok {
		return T(v)
	}
	return T(math.Round(v))
}

// isFloatSample reports whether T is the normalized float sample type.
func isFloatSample[T Sample]() bool {
	var t T
	_, ok := any(t).(float32)
	return ok
}
