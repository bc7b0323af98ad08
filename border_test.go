package glance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorderFold(t *testing.T) {
	cases := []struct {
		name string
		mode BorderMode
		p    int
		want int
		ok   bool
	}{
		{"in bounds", BorderExtend, 2, 2, true},
		{"extend left", BorderExtend, -3, 0, true},
		{"extend right", BorderExtend, 7, 4, true},
		{"mirror left edge", BorderMirror, -1, 0, true},
		{"mirror left", BorderMirror, -2, 1, true},
		{"mirror right", BorderMirror, 5, 4, true},
		{"mirror right deep", BorderMirror, 7, 2, true},
		{"wrap left", BorderWrap, -1, 4, true},
		{"wrap right", BorderWrap, 5, 0, true},
		{"wrap far", BorderWrap, 12, 2, true},
		{"constant miss", BorderConstant, -1, 0, false},
		{"constant hit", BorderConstant, 3, 3, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := Border{Mode: c.mode}
			got, ok := b.fold(c.p, 5)
			assert.Equal(t, c.ok, ok)
			if ok {
				assert.Equal(t, c.want, got)
			}
		})
	}
}

func TestSampleAt_ConstantFill(t *testing.T) {
	b, err := FromData(2, 1, 1, []uint8{10, 20})
	require.NoError(t, err)

	border := ConstantBorder(99)
	assert.Equal(t, 99.0, sampleAt(b, border, -1, 0, 0))
	assert.Equal(t, 99.0, sampleAt(b, border, 0, 1, 0))
	assert.Equal(t, 20.0, sampleAt(b, border, 1, 0, 0))
}
