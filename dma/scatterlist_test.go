package dma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewScatterList(t *testing.T) {
	segments := []Segment{
		{Address: 0x1000, Length: 4096},
		{Address: 0x8000, Length: 2048},
		{Address: 0x3000, Length: 4096},
	}

	list := NewScatterList(segments)
	require.Equal(t, 3, list.SegmentCount())
	require.Equal(t, 10240, list.TotalLength())
	require.Equal(t, segments, list.Segments())

	// The list snapshots its input.
	segments[0].Length = 1
	require.Equal(t, 4096, list.Segments()[0].Length)
}

func TestNewScatterListRejectsMalformedSegments(t *testing.T) {
	require.Panics(t, func() {
		NewScatterList(nil)
	})
	require.Panics(t, func() {
		NewScatterList([]Segment{{Address: 0x1000, Length: 0}})
	})
	require.Panics(t, func() {
		NewScatterList([]Segment{{Address: 0x1000, Length: 4096}, {Address: 0x2000, Length: -1}})
	})
}

func TestMemoryAreaReleaseRunsOnce(t *testing.T) {
	released := 0
	area := &MemoryArea{
		Length:    4096,
		OnRelease: func() { released++ },
	}

	area.Release()
	area.Release()
	require.Equal(t, 1, released)

	// A never-mapped area has nothing to do.
	(&MemoryArea{Length: 4096}).Release()
}

func TestDirectionValidity(t *testing.T) {
	require.True(t, DirBidirectional.Valid())
	require.True(t, DirToDevice.Valid())
	require.True(t, DirFromDevice.Valid())
	require.True(t, DirNone.Valid())
	require.False(t, Direction(42).Valid())

	require.Equal(t, "DirToDevice", DirToDevice.String())
	require.Equal(t, "Direction(42)", Direction(42).String())
}

func TestAttrFlagsString(t *testing.T) {
	require.Equal(t, "AttrNoKernelMapping|AttrWriteCombine", (AttrNoKernelMapping | AttrWriteCombine).String())
	require.Equal(t, "AttrNoWarn", AttrNoWarn.String())
}
