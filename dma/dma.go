// Package dma is the typed surface of the platform DMA API consumed by the
// buffer core. The platform (a hardware integration layer, or dma/hostdma for
// host-memory testing) implements Driver; the core never touches device memory
// through any other path.
package dma

import (
	"fmt"
)

// Direction is the direction of device transfers relative to main memory.
type Direction int32

const (
	// DirBidirectional buffers are both read and written by the device.
	DirBidirectional Direction = iota
	// DirToDevice buffers are written by the CPU and read by the device.
	DirToDevice
	// DirFromDevice buffers are written by the device and read by the CPU.
	DirFromDevice
	// DirNone buffers are never accessed by the device.
	DirNone
)

var directionMapping = make(map[Direction]string)

func (d Direction) String() string {
	str, ok := directionMapping[d]
	if !ok {
		return fmt.Sprintf("Direction(%d)", int32(d))
	}
	return str
}

func init() {
	directionMapping[DirBidirectional] = "DirBidirectional"
	directionMapping[DirToDevice] = "DirToDevice"
	directionMapping[DirFromDevice] = "DirFromDevice"
	directionMapping[DirNone] = "DirNone"
}

// Valid reports whether d names a direction a queue may be created with.
func (d Direction) Valid() bool {
	_, ok := directionMapping[d]
	return ok
}

// AttrFlags are allocation attributes passed through to the driver.
type AttrFlags uint32

const (
	// AttrNoKernelMapping requests that coherent allocations skip the kernel
	// virtual mapping. The returned CoherentMemory carries a nil Bytes slice
	// and only the driver cookie identifies the allocation.
	AttrNoKernelMapping AttrFlags = 1 << iota
	// AttrWriteCombine requests write-combining rather than cached mappings.
	AttrWriteCombine
	// AttrNoWarn suppresses driver-side allocation failure reporting.
	AttrNoWarn
)

var attrFlagsMapping = NewFlagStringMapping[AttrFlags]()

func (f AttrFlags) String() string {
	return attrFlagsMapping.FlagsToString(f)
}

func init() {
	attrFlagsMapping.Register(AttrNoKernelMapping, "AttrNoKernelMapping")
	attrFlagsMapping.Register(AttrWriteCombine, "AttrWriteCombine")
	attrFlagsMapping.Register(AttrNoWarn, "AttrNoWarn")
}

// CacheOperation selects the cache-maintenance performed by sync calls.
type CacheOperation uint32

const (
	// CacheOperationFlush cleans CPU caches ahead of device access.
	CacheOperationFlush CacheOperation = iota
	// CacheOperationInvalidate discards CPU cache lines after device access.
	CacheOperationInvalidate
)

var cacheOperationMapping = make(map[CacheOperation]string)

func (o CacheOperation) String() string {
	return cacheOperationMapping[o]
}

func init() {
	cacheOperationMapping[CacheOperationFlush] = "CacheOperationFlush"
	cacheOperationMapping[CacheOperationInvalidate] = "CacheOperationInvalidate"
}

// DeviceAddress is an address in the device's view of memory.
type DeviceAddress uint64

// CoherentMemory is one CPU-cache-coherent, device-addressable region.
type CoherentMemory struct {
	// Bytes is the kernel-addressable view of the region. It is nil when the
	// region was allocated with AttrNoKernelMapping.
	Bytes []byte
	// Address is the region's address in the device's view of memory.
	Address DeviceAddress
	// Cookie is driver-private state threaded back into Free and mapping
	// calls. The core never inspects it.
	Cookie any
}

// MemoryArea is one user-space mapping window over a buffer. The driver
// populates it on a successful mapping call and must leave it unmodified on
// failure.
type MemoryArea struct {
	// Length is the requested window length in bytes.
	Length int
	// Data is the mapped view, set by the driver on success.
	Data []byte
	// Private is driver-private mapping state.
	Private any

	// OnRelease is installed by the core after a successful mapping. The
	// consumer must invoke Release exactly once when the mapping is torn down.
	OnRelease func()
}

// Release tears down the core's bookkeeping for this mapping window. Calling
// it more than once is harmless.
func (a *MemoryArea) Release() {
	if a.OnRelease != nil {
		release := a.OnRelease
		a.OnRelease = nil
		release()
	}
}

// Driver is the platform DMA API. All methods execute synchronously in the
// calling context and none of them retry; error classification is the
// caller's concern.
type Driver interface {
	// AllocCoherent allocates one coherent, device-addressable region of size
	// bytes. Unless attrs carries AttrNoKernelMapping, the returned region has
	// an established kernel virtual view.
	AllocCoherent(size int, attrs AttrFlags) (CoherentMemory, error)
	// FreeCoherent releases a region obtained from AllocCoherent.
	FreeCoherent(mem CoherentMemory, size int, attrs AttrFlags)

	// AllocScatter allocates size bytes of physically discontiguous,
	// non-coherent memory for transfers in the given direction.
	AllocScatter(size int, dir Direction, attrs AttrFlags) (*ScatterList, error)
	// FreeScatter releases a scatter allocation.
	FreeScatter(list *ScatterList, dir Direction)

	// MapScatterKernel maps a scatter allocation into one virtually
	// contiguous kernel range.
	MapScatterKernel(list *ScatterList) ([]byte, error)
	// UnmapScatterKernel tears down a mapping obtained from MapScatterKernel.
	UnmapScatterKernel(list *ScatterList, view []byte)

	// ScatterFromCoherent synthesizes a scatter-list description of a
	// coherent region so it can be handed to sharing/export paths.
	ScatterFromCoherent(mem CoherentMemory, size int, attrs AttrFlags) (*ScatterList, error)

	// SyncScatter performs cache maintenance over a scatter list around a
	// device access window: CacheOperationFlush hands the ranges to the
	// device, CacheOperationInvalidate returns them to the CPU.
	SyncScatter(list *ScatterList, dir Direction, op CacheOperation)
	// SyncKernel performs the same maintenance over a kernel virtual range.
	SyncKernel(view []byte, op CacheOperation)

	// MapCoherentUser maps a coherent region into the user address space
	// described by area.
	MapCoherentUser(area *MemoryArea, mem CoherentMemory, size int, attrs AttrFlags) error
	// MapScatterUser maps a scatter allocation into the user address space
	// described by area.
	MapScatterUser(area *MemoryArea, list *ScatterList) error

	// PinUserPages pins size bytes of user memory starting at addr and
	// describes the pinned pages as a scatter list.
	PinUserPages(addr uintptr, size int, dir Direction) (*ScatterList, error)
	// UnpinUserPages releases pages pinned by PinUserPages.
	UnpinUserPages(list *ScatterList, dir Direction)
}
