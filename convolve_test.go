package glance

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBuffer returns a single channel buffer with a deterministic pattern.
func testBuffer(t *testing.T, w, h int) *Buffer[uint8] {
	t.Helper()
	b, err := NewBuffer[uint8](w, h, 1)
	require.NoError(t, err)
	for i := range b.data {
		b.data[i] = uint8(i * 31 % 256)
	}
	return b
}

func TestConvolve_IdentityKernel(t *testing.T) {
	src := testBuffer(t, 12, 9)

	out, err := Convolve(src, Identity(), Border{Mode: BorderExtend}, 2)
	require.NoError(t, err)
	assert.Equal(t, src.Data(), out.Data())
}

func TestConvolve_KernelTooLarge(t *testing.T) {
	src := testBuffer(t, 2, 2)

	k, err := Box(3)
	require.NoError(t, err)
	_, err = Convolve(src, k, Border{Mode: BorderExtend}, 1)
	assert.True(t, errors.Is(err, ErrKernelTooLarge))
}

func TestConvolve_SeparableMatchesDirect(t *testing.T) {
	// Multiples of nine make the true box averages integral, so both paths
	// round to the same sample values.
	src, err := NewBuffer[uint8](10, 8, 1)
	require.NoError(t, err)
	for i := range src.data {
		src.data[i] = uint8(i % 28 * 9)
	}

	k, err := Box(3)
	require.NoError(t, err)
	require.True(t, k.Separable())

	for _, border := range []Border{
		{Mode: BorderExtend},
		{Mode: BorderMirror},
		{Mode: BorderWrap},
		ConstantBorder(18),
	} {
		direct := convolve2D(src, k, border, 1)
		separable := convolveSeparable(src, k, border, 1)
		assert.Equal(t, direct.Data(), separable.Data(), "border mode %v", border.Mode)
	}
}

func TestConvolve_SeparableMatchesDirectFloat(t *testing.T) {
	src, err := NewBuffer[float32](9, 9, 1)
	require.NoError(t, err)
	for i := range src.data {
		src.data[i] = float32(i%17) / 16
	}

	k, err := Gaussian(5, 1.2)
	require.NoError(t, err)
	require.True(t, k.Separable())

	direct := convolve2D(src, k, Border{Mode: BorderMirror}, 1)
	separable := convolveSeparable(src, k, Border{Mode: BorderMirror}, 1)
	for i := range direct.data {
		assert.InDelta(t, direct.data[i], separable.data[i], 1e-5)
	}
}

func TestConvolve_BoxBlurAverages(t *testing.T) {
	// A 3x3 buffer of a single bright center: the blurred center is the
	// average of the whole neighborhood.
	src, err := FromData(3, 3, 1, []uint8{
		0, 0, 0,
		0, 90, 0,
		0, 0, 0,
	})
	require.NoError(t, err)

	out, err := BoxBlur(src, 3, ConstantBorder(0), 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(10), out.SampleAt(1, 1, 0))
}

func TestConvolve_ConstantBorderFeedsFillValue(t *testing.T) {
	src, err := FromData(1, 1, 1, []uint8{90})
	require.NoError(t, err)

	k, err := Box(1)
	require.NoError(t, err)
	out, err := Convolve(src, k, ConstantBorder(255), 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(90), out.SampleAt(0, 0, 0))
}

func TestConvolve_WorkerCountInvariance(t *testing.T) {
	src := testBuffer(t, 100, 100)

	k, err := Gaussian(5, 1.4)
	require.NoError(t, err)

	single, err := Convolve(src, k, Border{Mode: BorderExtend}, 1)
	require.NoError(t, err)
	many, err := Convolve(src, k, Border{Mode: BorderExtend}, 8)
	require.NoError(t, err)
	assert.Equal(t, single.Data(), many.Data())
}

func TestConvolve_MultiChannelIndependence(t *testing.T) {
	// Each channel is convolved on its own: a channel holding a constant
	// value stays constant under a normalized kernel.
	src, err := NewBufferFill(6, 6, 3, []uint8{50, 100, 200})
	require.NoError(t, err)

	out, err := BoxBlur(src, 3, Border{Mode: BorderExtend}, 2)
	require.NoError(t, err)
	px, err := out.Get(3, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{50, 100, 200}, px)
}

func TestLaplacian_ZeroOnFlatRegions(t *testing.T) {
	src, err := NewBufferFill(5, 5, 1, []uint8{120})
	require.NoError(t, err)

	out, err := LaplacianFilter(src, Border{Mode: BorderExtend}, 1)
	require.NoError(t, err)
	for _, v := range out.Data() {
		assert.Equal(t, uint8(0), v)
	}
}

func TestSobel_DetectsVerticalEdge(t *testing.T) {
	src, err := NewBuffer[uint8](6, 5, 1)
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 3; x < 6; x++ {
			src.data[y*src.stride+x] = 255
		}
	}

	out, err := Sobel(src, 0, Border{Mode: BorderExtend}, 1)
	require.NoError(t, err)

	// Flat regions away from the edge carry no gradient.
	assert.Equal(t, uint8(0), out.SampleAt(0, 2, 0))
	assert.Equal(t, uint8(0), out.SampleAt(5, 2, 0))
	// The step column saturates the magnitude.
	assert.Equal(t, uint8(255), out.SampleAt(3, 2, 0))
	assert.Equal(t, uint8(255), out.SampleAt(2, 2, 0))
}

func TestSobel_RequiresSingleChannel(t *testing.T) {
	src, err := NewBuffer[uint8](4, 4, 3)
	require.NoError(t, err)
	_, err = Sobel(src, 0, Border{Mode: BorderExtend}, 1)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestSobel_ThresholdZeroesWeakEdges(t *testing.T) {
	src, err := NewBuffer[uint8](6, 5, 1)
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 3; x < 6; x++ {
			src.data[y*src.stride+x] = 10
		}
	}

	// The step of 10 produces a magnitude of 40; a threshold above that
	// suppresses the edge entirely.
	out, err := Sobel(src, 64, Border{Mode: BorderExtend}, 1)
	require.NoError(t, err)
	for _, v := range out.Data() {
		assert.Equal(t, uint8(0), v)
	}
}
