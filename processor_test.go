package glance

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_DefaultIsPassThrough(t *testing.T) {
	src, err := NewBufferFill(4, 4, 4, []uint8{10, 20, 30, 0xff})
	require.NoError(t, err)

	out, err := NewProcessor().Apply(src)
	require.NoError(t, err)
	assert.Equal(t, src.Data(), out.Data())
}

func TestProcessor_SingleStageMatchesDirectCall(t *testing.T) {
	src, err := NewBufferFill(4, 4, 4, []uint8{10, 20, 30, 0xff})
	require.NoError(t, err)

	p := NewProcessor()
	p.Invert = true
	p.Workers = 1

	out, err := p.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, Invert(src, 1).Data(), out.Data())
}

func TestProcessor_SobelImpliesGrayscale(t *testing.T) {
	src, err := NewBufferFill(8, 8, 4, []uint8{90, 90, 90, 0xff})
	require.NoError(t, err)

	p := NewProcessor()
	p.SobelThreshold = 0
	p.Workers = 1

	out, err := p.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Channels(), "sobel must force a single channel first")
}

func TestProcessor_StageErrorAborts(t *testing.T) {
	src, err := NewBufferFill(4, 4, 4, []uint8{90, 90, 90, 0xff})
	require.NoError(t, err)

	p := NewProcessor()
	p.Gamma = -2

	_, err = p.Apply(src)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestProcessor_MedianLargerThanImageFails(t *testing.T) {
	src, err := NewBufferFill(2, 2, 4, []uint8{90, 90, 90, 0xff})
	require.NoError(t, err)

	p := NewProcessor()
	p.MedianWindow = 5

	_, err = p.Apply(src)
	assert.True(t, errors.Is(err, ErrKernelTooLarge))
}

func TestProcessor_StageOrderInvertBeforeThreshold(t *testing.T) {
	// A dark image inverted becomes bright; thresholding after the invert
	// must therefore saturate to the high value.
	src, err := NewBufferFill(4, 4, 4, []uint8{10, 10, 10, 0xff})
	require.NoError(t, err)

	p := NewProcessor()
	p.Invert = true
	p.Grayscale = true
	p.ThresholdLevel = 128

	out, err := p.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), out.SampleAt(0, 0, 0))
}

func TestProcessor_Process(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, testImage(6, 6)))

	p := NewProcessor()
	p.Equalize = true
	p.BlurRadius = 1

	var out bytes.Buffer
	require.NoError(t, p.Process(&in, &out))

	img, format, err := image.Decode(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 6, img.Bounds().Dx())
}

func TestProcessor_ProcessBadInput(t *testing.T) {
	var out bytes.Buffer
	err := NewProcessor().Process(bytes.NewReader([]byte("junk")), &out)
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}
