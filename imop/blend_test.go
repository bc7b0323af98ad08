package imop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlend_SetRejectsUnknownMode(t *testing.T) {
	b := NewBlend()
	assert.Equal(t, "", b.Get())

	b.Set(Multiply)
	assert.Equal(t, Multiply, b.Get())

	b.Set("divide")
	assert.Equal(t, Multiply, b.Get())
}

func TestDraw_MultiplyBlend(t *testing.T) {
	// A white source copied over and multiplied with a 40% gray backdrop
	// takes the backdrop's value.
	src := fillBuffer(t, 1, 1, []uint8{255, 255, 255, 255})
	bdp := fillBuffer(t, 1, 1, []uint8{102, 102, 102, 255})

	bitmap, err := NewBitmap(1, 1)
	require.NoError(t, err)

	blend := NewBlend()
	blend.Set(Multiply)
	require.NoError(t, InitOp().Draw(bitmap, src, bdp, blend))

	px, err := bitmap.Buf.Get(0, 0)
	require.NoError(t, err)
	for i, want := range []uint8{102, 102, 102, 255} {
		assert.InDelta(t, want, px[i], 1, "channel %d", i)
	}
}

func TestDraw_DarkenAndLighten(t *testing.T) {
	src := fillBuffer(t, 1, 1, []uint8{200, 50, 120, 255})
	bdp := fillBuffer(t, 1, 1, []uint8{100, 150, 120, 255})

	bitmap, err := NewBitmap(1, 1)
	require.NoError(t, err)

	darken := NewBlend()
	darken.Set(Darken)
	require.NoError(t, InitOp().Draw(bitmap, src, bdp, darken))
	px, err := bitmap.Buf.Get(0, 0)
	require.NoError(t, err)
	for i, want := range []uint8{100, 50, 120, 255} {
		assert.InDelta(t, want, px[i], 1, "channel %d", i)
	}

	lighten := NewBlend()
	lighten.Set(Lighten)
	require.NoError(t, InitOp().Draw(bitmap, src, bdp, lighten))
	px, err = bitmap.Buf.Get(0, 0)
	require.NoError(t, err)
	for i, want := range []uint8{200, 150, 120, 255} {
		assert.InDelta(t, want, px[i], 1, "channel %d", i)
	}
}

func TestBlendApply_ScreenAndOverlay(t *testing.T) {
	screen := NewBlend()
	screen.Set(Screen)
	r, _, _, _ := screen.apply(0.5, 0, 0, 1, 0.5, 0, 0, 1)
	assert.InDelta(t, 0.75, r, 1e-9)

	ov := NewBlend()
	ov.Set(Overlay)
	low, _, _, _ := ov.apply(0.25, 0, 0, 1, 0.5, 0, 0, 1)
	assert.InDelta(t, 0.25, low, 1e-9)
	high, _, _, _ := ov.apply(0.75, 0, 0, 1, 0.5, 0, 0, 1)
	assert.InDelta(t, 0.75, high, 1e-9)
}
