package glance

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// This file is the codec boundary of the library: the engine itself only
// deals in buffers, while decoded images from the stdlib codecs (and the
// bmp codec from golang.org/x/image) are converted in and out here.

// FromImage converts any image type to a 4-channel RGBA buffer with
// min-point at (0, 0).
func FromImage(img image.Image) *Buffer[uint8] {
	srcBounds := img.Bounds()
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	w := srcBounds.Dx()
	h := srcBounds.Dy()
	dst := &Buffer[uint8]{
		width:    w,
		height:   h,
		channels: 4,
		stride:   w * 4,
		data:     make([]uint8, w*h*4),
	}

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := w * 4
		for y := 0; y < h; y++ {
			si := src.PixOffset(srcMinX, srcMinY+y)
			copy(dst.data[y*dst.stride:y*dst.stride+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			di := y * dst.stride
			for x := 0; x < w; x++ {
				srcX := srcMinX + x
				srcY := srcMinY + y
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.data[di+0] = r
				dst.data[di+1] = g
				dst.data[di+2] = b
				dst.data[di+3] = 0xff
				di += 4
			}
		}
	default:
		for y := 0; y < h; y++ {
			di := y * dst.stride
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+x, srcMinY+y)).(color.NRGBA)
				dst.data[di+0] = c.R
				dst.data[di+1] = c.G
				dst.data[di+2] = c.B
				dst.data[di+3] = c.A
				di += 4
			}
		}
	}
	return dst
}

// FromGray converts a grayscale image to a single channel buffer.
func FromGray(img *image.Gray) *Buffer[uint8] {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := &Buffer[uint8]{
		width:    w,
		height:   h,
		channels: 1,
		stride:   w,
		data:     make([]uint8, w*h),
	}
	for y := 0; y < h; y++ {
		si := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.data[y*w:(y+1)*w], img.Pix[si:si+w])
	}
	return dst
}

// FromGray16 converts a 16-bit grayscale image to a single channel buffer.
func FromGray16(img *image.Gray16) *Buffer[uint16] {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := &Buffer[uint16]{
		width:    w,
		height:   h,
		channels: 1,
		stride:   w,
		data:     make([]uint16, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			dst.data[y*w+x] = uint16(img.Pix[si])<<8 | uint16(img.Pix[si+1])
		}
	}
	return dst
}

// ToGray16 converts a single channel 16-bit buffer to an *image.Gray16.
func ToGray16(b *Buffer[uint16]) (*image.Gray16, error) {
	if b.channels != 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "cannot render a %d channel buffer as grayscale", b.channels)
	}
	dst := image.NewGray16(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			v := b.SampleAt(x, y, 0)
			di := dst.PixOffset(x, y)
			dst.Pix[di] = uint8(v >> 8)
			dst.Pix[di+1] = uint8(v)
		}
	}
	return dst, nil
}

// ToImage converts a buffer back to a stdlib image: single channel buffers
// become *image.Gray, 3 and 4 channel buffers *image.NRGBA.
func ToImage(b *Buffer[uint8]) (image.Image, error) {
	switch b.channels {
	case 1:
		dst := image.NewGray(image.Rect(0, 0, b.width, b.height))
		for y := 0; y < b.height; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.width], b.data[y*b.stride:])
		}
		return dst, nil
	case 3:
		dst := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
		for y := 0; y < b.height; y++ {
			di := dst.PixOffset(0, y)
			so := y * b.stride
			for x := 0; x < b.width; x++ {
				dst.Pix[di+0] = b.data[so+x*3+0]
				dst.Pix[di+1] = b.data[so+x*3+1]
				dst.Pix[di+2] = b.data[so+x*3+2]
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
		return dst, nil
	case 4:
		dst := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
		rowSize := b.width * 4
		for y := 0; y < b.height; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowSize], b.data[y*b.stride:])
		}
		return dst, nil
	default:
		return nil, errors.Wrapf(ErrInvalidParameter, "cannot render a %d channel buffer", b.channels)
	}
}

// Decode reads and decodes an image stream into a 4-channel buffer.
func Decode(r io.Reader) (*Buffer[uint8], error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode the source image")
	}
	return FromImage(img), nil
}

// Encode writes the buffer to w. When w is a file, the encoder is picked by
// its extension (jpg, png, bmp); any other writer receives jpeg output.
func Encode(w io.Writer, b *Buffer[uint8]) error {
	img, err := ToImage(b)
	if err != nil {
		return err
	}

	if f, ok := w.(*os.File); ok {
		switch filepath.Ext(f.Name()) {
		case ".png":
			return png.Encode(w, img)
		case ".bmp":
			return bmp.Encode(w, img)
		case "", ".jpg", ".jpeg":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		default:
			return errors.Wrapf(ErrInvalidParameter, "unsupported image format %q", filepath.Ext(f.Name()))
		}
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
}
