package imop

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glancelib/glance"
)

func fillBuffer(t *testing.T, w, h int, px []uint8) *glance.Buffer[uint8] {
	t.Helper()
	buf, err := glance.NewBufferFill(w, h, 4, px)
	require.NoError(t, err)
	return buf
}

func TestInitOp_DefaultsToCopy(t *testing.T) {
	op := InitOp()
	assert.Equal(t, Copy, op.Get())

	op.Set(SrcOver)
	assert.Equal(t, SrcOver, op.Get())

	op.Set("no_such_op")
	assert.Equal(t, SrcOver, op.Get(), "an unknown operation must not change the active one")
}

func TestDraw_Validation(t *testing.T) {
	op := InitOp()

	bitmap, err := NewBitmap(2, 2)
	require.NoError(t, err)

	rgb, err := glance.NewBuffer[uint8](2, 2, 3)
	require.NoError(t, err)
	rgba := fillBuffer(t, 2, 2, []uint8{0, 0, 0, 255})

	err = op.Draw(bitmap, rgb, rgba, nil)
	assert.True(t, errors.Is(err, glance.ErrInvalidParameter))

	small := fillBuffer(t, 1, 2, []uint8{0, 0, 0, 255})
	err = op.Draw(bitmap, small, rgba, nil)
	assert.True(t, errors.Is(err, glance.ErrInvalidParameter))

	wrongBitmap, err := NewBitmap(3, 3)
	require.NoError(t, err)
	err = op.Draw(wrongBitmap, rgba, rgba, nil)
	assert.True(t, errors.Is(err, glance.ErrInvalidParameter))
}

func TestDraw_SrcOver(t *testing.T) {
	// A half-transparent red source over an opaque green backdrop.
	src := fillBuffer(t, 2, 2, []uint8{255, 0, 0, 128})
	bdp := fillBuffer(t, 2, 2, []uint8{0, 255, 0, 255})

	bitmap, err := NewBitmap(2, 2)
	require.NoError(t, err)

	op := InitOp()
	op.Set(SrcOver)
	require.NoError(t, op.Draw(bitmap, src, bdp, nil))

	px, err := bitmap.Buf.Get(1, 1)
	require.NoError(t, err)
	for i, want := range []uint8{128, 127, 0, 255} {
		assert.InDelta(t, want, px[i], 1, "channel %d", i)
	}
}

func TestDraw_CopyIgnoresBackdrop(t *testing.T) {
	src := fillBuffer(t, 2, 2, []uint8{10, 20, 30, 40})
	bdp := fillBuffer(t, 2, 2, []uint8{200, 200, 200, 255})

	bitmap, err := NewBitmap(2, 2)
	require.NoError(t, err)

	require.NoError(t, InitOp().Draw(bitmap, src, bdp, nil))
	px, err := bitmap.Buf.Get(0, 0)
	require.NoError(t, err)
	for i, want := range []uint8{10, 20, 30, 40} {
		assert.InDelta(t, want, px[i], 1, "channel %d", i)
	}
}

func TestDraw_XorOfOpaqueLayersIsEmpty(t *testing.T) {
	src := fillBuffer(t, 2, 2, []uint8{255, 0, 0, 255})
	bdp := fillBuffer(t, 2, 2, []uint8{0, 255, 0, 255})

	bitmap, err := NewBitmap(2, 2)
	require.NoError(t, err)

	op := InitOp()
	op.Set(Xor)
	require.NoError(t, op.Draw(bitmap, src, bdp, nil))

	px, err := bitmap.Buf.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 0}, px)
}

func TestDraw_SrcInKeepsOverlapOnly(t *testing.T) {
	src := fillBuffer(t, 1, 1, []uint8{255, 0, 0, 255})
	clear := fillBuffer(t, 1, 1, []uint8{0, 255, 0, 0})

	bitmap, err := NewBitmap(1, 1)
	require.NoError(t, err)

	op := InitOp()
	op.Set(SrcIn)
	require.NoError(t, op.Draw(bitmap, src, clear, nil))

	px, err := bitmap.Buf.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 0}, px, "a transparent backdrop leaves nothing inside")
}
