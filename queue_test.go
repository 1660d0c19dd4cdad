package vbuf

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/mediakit/vbuf/dma"
	"github.com/mediakit/vbuf/dma/mock_dma"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

func readyQueue(t *testing.T, ctrl *gomock.Controller, options QueueOptions) (*mock_dma.MockDriver, *Device, *Queue) {
	t.Helper()

	driver := mock_dma.NewMockDriver(ctrl)
	device := NewDevice(driver)

	if options.BufferSize == 0 {
		options.BufferSize = 4096
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stdout))
	}

	queue, err := NewQueue(device, options)
	require.NoError(t, err)

	return driver, device, queue
}

func coherentRegion(size int) dma.CoherentMemory {
	backing := make([]byte, size)
	return dma.CoherentMemory{
		Bytes:   backing,
		Address: dma.DeviceAddress(0x1000),
		Cookie:  backing,
	}
}

func pageList(pages int) *dma.ScatterList {
	segments := make([]dma.Segment, pages)
	for i := range segments {
		segments[i] = dma.Segment{
			Address: dma.DeviceAddress(0x10000 + i*4096),
			Length:  4096,
		}
	}
	return dma.NewScatterList(segments)
}

func TestNewQueueRejectsBadConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mock_dma.NewMockDriver(ctrl)

	_, err := NewQueue(nil, QueueOptions{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewQueue(NewDevice(driver), QueueOptions{Direction: dma.DirNone})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewQueue(NewDevice(driver), QueueOptions{Direction: dma.Direction(42)})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRequestBuffersCoherentRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	regions := []dma.CoherentMemory{coherentRegion(4096), coherentRegion(4096), coherentRegion(4096)}
	for _, region := range regions {
		region := region
		driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(region, nil)
		driver.EXPECT().FreeCoherent(region, 4096, dma.AttrFlags(0))
	}

	coherent, allocated, err := queue.RequestBuffers(MemoryModeKernel, 0, 3)
	require.NoError(t, err)
	require.True(t, coherent)
	require.Equal(t, 3, allocated)
	require.Equal(t, 3, queue.NumBuffers())
	require.Equal(t, 3, device.References())
	require.Equal(t, MemoryModeKernel, queue.MemoryMode())

	// Coherent allocations arrive with their kernel view established.
	require.NotNil(t, queue.Buffer(0).Bytes())

	require.NoError(t, queue.FreeBuffers())
	require.Equal(t, 0, queue.NumBuffers())
	require.Equal(t, 0, device.References())

	_, established := queue.Coherent()
	require.False(t, established)
}

func TestRequestBuffersNonCoherentDefersKernelView(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, _, queue := readyQueue(t, ctrl, QueueOptions{
		Direction:       dma.DirBidirectional,
		AllowCacheHints: true,
	})

	list := pageList(1)
	driver.EXPECT().AllocScatter(4096, dma.DirBidirectional, dma.AttrFlags(0)).Return(list, nil)

	coherent, allocated, err := queue.RequestBuffers(MemoryModeKernel, RequestNonCoherent, 1)
	require.NoError(t, err)
	require.False(t, coherent)
	require.Equal(t, 1, allocated)

	// No MapScatterKernel expectation was registered: the mapping must not be
	// established eagerly. It appears on the first Bytes call.
	view := make([]byte, 4096)
	driver.EXPECT().MapScatterKernel(list).Return(view, nil)
	require.NotNil(t, queue.Buffer(0).Bytes())

	driver.EXPECT().UnmapScatterKernel(list, view)
	driver.EXPECT().FreeScatter(list, dma.DirBidirectional)
	require.NoError(t, queue.FreeBuffers())
}

func TestRequestBuffersRollsBackPartialAllocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	first := coherentRegion(4096)
	second := coherentRegion(4096)
	gomock.InOrder(
		driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(first, nil),
		driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(second, nil),
		driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(dma.CoherentMemory{}, errors.New("no pages")),
	)
	driver.EXPECT().FreeCoherent(first, 4096, dma.AttrFlags(0))
	driver.EXPECT().FreeCoherent(second, 4096, dma.AttrFlags(0))

	_, _, err := queue.RequestBuffers(MemoryModeKernel, 0, 3)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, 0, queue.NumBuffers())
	require.Equal(t, 0, device.References())
	require.Equal(t, MemoryModeNone, queue.MemoryMode())

	_, established := queue.Coherent()
	require.False(t, established)
}

func TestRequestBuffersMasksReservedFlagBits(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, _, queue := readyQueue(t, ctrl, QueueOptions{
		Direction:       dma.DirBidirectional,
		AllowCacheHints: true,
	})

	region := coherentRegion(4096)
	driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(region, nil)

	// Every defined-in-the-future bit set, RequestNonCoherent clear: the
	// request must behave exactly like flags == 0.
	coherent, _, err := queue.RequestBuffers(MemoryModeKernel, RequestFlags(0xFFFFFFFE), 1)
	require.NoError(t, err)
	require.True(t, coherent)

	driver.EXPECT().FreeCoherent(region, 4096, dma.AttrFlags(0))
	require.NoError(t, queue.FreeBuffers())
}

func TestRequestBuffersRejectsModeChangeUnderBuffers(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, _, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	region := coherentRegion(4096)
	driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(region, nil)

	_, _, err := queue.RequestBuffers(MemoryModeKernel, 0, 1)
	require.NoError(t, err)

	_, _, err = queue.RequestBuffers(MemoryModeUserPtr, 0, 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, 1, queue.NumBuffers())

	driver.EXPECT().FreeCoherent(region, 4096, dma.AttrFlags(0))
	require.NoError(t, queue.FreeBuffers())
}

func TestRequestBuffersBusyGuards(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, _, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	region := coherentRegion(4096)
	driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(region, nil)

	_, _, err := queue.RequestBuffers(MemoryModeKernel, 0, 1)
	require.NoError(t, err)

	require.NoError(t, queue.QueueBuffer(0, SyncHints{}))

	// Reconfiguration and teardown are both rejected while a buffer is
	// queued to the device.
	_, _, err = queue.RequestBuffers(MemoryModeKernel, 0, 2)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorIs(t, queue.FreeBuffers(), ErrInvalidArgument)
	require.Equal(t, 1, queue.NumBuffers())

	require.NoError(t, queue.FinishBuffer(0))

	driver.EXPECT().FreeCoherent(region, 4096, dma.AttrFlags(0))
	require.NoError(t, queue.FreeBuffers())
}

func TestCreateBuffersAppendsToExistingSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	regionA := coherentRegion(4096)
	regionB := coherentRegion(8192)
	driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(regionA, nil)
	driver.EXPECT().AllocCoherent(8192, dma.AttrFlags(0)).Return(regionB, nil)

	first, err := queue.CreateBuffers(MemoryModeKernel, 0, 1, []int{4096})
	require.NoError(t, err)
	require.Equal(t, 0, first)

	// Two planes collapse into one backing allocation.
	first, err = queue.CreateBuffers(MemoryModeKernel, 0, 1, []int{4096, 4096})
	require.NoError(t, err)
	require.Equal(t, 1, first)

	require.Equal(t, 2, queue.NumBuffers())
	require.Equal(t, 2, device.References())
	require.Equal(t, 8192, queue.Buffer(1).Size())

	driver.EXPECT().FreeCoherent(regionA, 4096, dma.AttrFlags(0))
	driver.EXPECT().FreeCoherent(regionB, 8192, dma.AttrFlags(0))
	require.NoError(t, queue.FreeBuffers())
}

func TestCreateBuffersRejectsZeroSizedPlane(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, _, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	_, err := queue.CreateBuffers(MemoryModeKernel, 0, 1, []int{4096, 0})
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, 0, queue.NumBuffers())

	_, err = queue.CreateBuffers(MemoryModeKernel, 0, 1, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = queue.CreateBuffers(MemoryModeKernel, 0, 0, []int{4096})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestQueueStatsString(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, _, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	region := coherentRegion(4096)
	driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(region, nil)

	_, _, err := queue.RequestBuffers(MemoryModeKernel, 0, 1)
	require.NoError(t, err)
	require.NoError(t, queue.QueueBuffer(0, SyncHints{}))

	stats := queue.Statistics()
	require.Equal(t, 1, stats.BufferCount)
	require.Equal(t, 4096, stats.BufferBytes)
	require.Equal(t, 1, stats.QueuedCount)
	require.Equal(t, 1, stats.MappedCount)

	writer := jwriter.NewWriter()
	queue.BuildStatsString(&writer)
	require.NoError(t, writer.Error())
	require.True(t, json.Valid(writer.Bytes()))

	require.NoError(t, queue.FinishBuffer(0))
	driver.EXPECT().FreeCoherent(region, 4096, dma.AttrFlags(0))
	require.NoError(t, queue.FreeBuffers())
}

func TestQueueCycleStateErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, _, queue := readyQueue(t, ctrl, QueueOptions{Direction: dma.DirBidirectional})

	region := coherentRegion(4096)
	driver.EXPECT().AllocCoherent(4096, dma.AttrFlags(0)).Return(region, nil)

	_, _, err := queue.RequestBuffers(MemoryModeKernel, 0, 1)
	require.NoError(t, err)

	require.ErrorIs(t, queue.QueueBuffer(7, SyncHints{}), ErrInvalidArgument)
	require.ErrorIs(t, queue.FinishBuffer(0), ErrInvalidArgument)

	require.NoError(t, queue.QueueBuffer(0, SyncHints{}))
	require.ErrorIs(t, queue.QueueBuffer(0, SyncHints{}), ErrInvalidArgument)
	require.NoError(t, queue.FinishBuffer(0))
	require.ErrorIs(t, queue.FinishBuffer(0), ErrInvalidArgument)

	driver.EXPECT().FreeCoherent(region, 4096, dma.AttrFlags(0))
	require.NoError(t, queue.FreeBuffers())
}
