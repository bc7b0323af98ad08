// Package imop implements the Porter-Duff composition operations used for
// mixing a graphic element with its backdrop. Porter and Duff presented in
// their paper 12 different composition operations, but the image/draw core
// package implements only the source-over-destination and source. This
// package overcomes the missing composite operations, working directly over
// 4-channel glance buffers through their bounds-checked pixel accessors.
package imop

import (
	"github.com/glancelib/glance"
	"github.com/glancelib/glance/utils"
	"github.com/pkg/errors"
)

const (
	Copy    = "copy"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Bitmap wraps the RGBA buffer the composition result is painted onto.
type Bitmap struct {
	Buf *glance.Buffer[uint8]
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// NewBitmap allocates a composition target of the given size.
func NewBitmap(width, height int) (*Bitmap, error) {
	buf, err := glance.NewBuffer[uint8](width, height, 4)
	if err != nil {
		return nil, err
	}
	return &Bitmap{Buf: buf}, nil
}

// InitOp initializes a new Composite with the copy operation active.
func InitOp() *Composite {
	return &Composite{
		current: Copy,
		ops: []string{
			Copy,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported composite operations.
func (op *Composite) Set(cop string) {
	if utils.Contains(op.ops, cop) {
		op.current = cop
	}
}

// Get returns the currently active composite operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw applies the active composition (and the optional blend mode) over the
// source and backdrop buffers, painting the result into the bitmap. The
// buffers must be 4-channel and share the bitmap's dimensions.
func (op *Composite) Draw(bitmap *Bitmap, src, bdp *glance.Buffer[uint8], blend *Blend) error {
	if src.Channels() != 4 || bdp.Channels() != 4 {
		return errors.Wrap(glance.ErrInvalidParameter, "compositing requires 4-channel buffers")
	}
	if src.Width() != bdp.Width() || src.Height() != bdp.Height() {
		return errors.Wrapf(glance.ErrInvalidParameter,
			"cannot composite %dx%d over %dx%d",
			src.Width(), src.Height(), bdp.Width(), bdp.Height())
	}
	if bitmap == nil || bitmap.Buf.Width() != src.Width() || bitmap.Buf.Height() != src.Height() {
		return errors.Wrap(glance.ErrInvalidParameter, "bitmap does not match the source dimensions")
	}

	dx, dy := src.Dimensions()
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			s, err := src.Get(x, y)
			if err != nil {
				return err
			}
			b, err := bdp.Get(x, y)
			if err != nil {
				return err
			}

			rsn, gsn, bsn, asn := normalize(s)
			rbn, gbn, bbn, abn := normalize(b)

			var rn, gn, bn, an float64

			// applying the alpha composition formula
			switch op.current {
			case Copy:
				rn, gn, bn, an = rsn, gsn, bsn, asn
			case SrcOver:
				rn = asn*rsn + abn*rbn*(1-asn)
				gn = asn*gsn + abn*gbn*(1-asn)
				bn = asn*bsn + abn*bbn*(1-asn)
				an = asn + abn*(1-asn)
			case DstOver:
				rn = asn*rsn*(1-abn) + abn*rbn
				gn = asn*gsn*(1-abn) + abn*gbn
				bn = asn*bsn*(1-abn) + abn*bbn
				an = asn*(1-abn) + abn
			case SrcIn:
				rn = asn * rsn * abn
				gn = asn * gsn * abn
				bn = asn * bsn * abn
				an = asn * abn
			case DstIn:
				rn = abn * rbn * asn
				gn = abn * gbn * asn
				bn = abn * bbn * asn
				an = abn * asn
			case SrcOut:
				rn = asn * rsn * (1 - abn)
				gn = asn * gsn * (1 - abn)
				bn = asn * bsn * (1 - abn)
				an = asn * (1 - abn)
			case DstOut:
				rn = abn * rbn * (1 - asn)
				gn = abn * gbn * (1 - asn)
				bn = abn * bbn * (1 - asn)
				an = abn * (1 - asn)
			case SrcAtop:
				rn = asn*rsn*abn + (1-asn)*abn*rbn
				gn = asn*gsn*abn + (1-asn)*abn*gbn
				bn = asn*bsn*abn + (1-asn)*abn*bbn
				an = asn*abn + abn*(1-asn)
			case DstAtop:
				rn = asn*rsn*(1-abn) + abn*rbn*asn
				gn = asn*gsn*(1-abn) + abn*gbn*asn
				bn = asn*bsn*(1-abn) + abn*bbn*asn
				an = asn*(1-abn) + abn*asn
			case Xor:
				rn = asn*rsn*(1-abn) + abn*rbn*(1-asn)
				gn = asn*gsn*(1-abn) + abn*gbn*(1-asn)
				bn = asn*bsn*(1-abn) + abn*bbn*(1-asn)
				an = asn*(1-abn) + abn*(1-asn)
			}

			// applying the blending mode over the composed pixel
			if blend != nil && blend.Get() != "" {
				rn, gn, bn, an = blend.apply(rn, gn, bn, an, rbn, gbn, bbn, abn)
			}

			px := []uint8{
				uint8(utils.Clamp(rn, 0, 1) * 255),
				uint8(utils.Clamp(gn, 0, 1) * 255),
				uint8(utils.Clamp(bn, 0, 1) * 255),
				uint8(utils.Clamp(an, 0, 1) * 255),
			}
			if err := bitmap.Buf.Set(x, y, px); err != nil {
				return err
			}
		}
	}
	return nil
}

// normalize converts an 8-bit RGBA pixel into [0, 1] components.
func normalize(px []uint8) (r, g, b, a float64) {
	return float64(px[0]) / 255, float64(px[1]) / 255, float64(px[2]) / 255, float64(px[3]) / 255
}
