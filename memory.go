package vbuf

import (
	"github.com/mediakit/vbuf/dma"
)

// MemoryMode identifies where a buffer's backing storage comes from.
type MemoryMode byte

const (
	// MemoryModeNone is the mode of a queue with no buffer set established.
	MemoryModeNone MemoryMode = iota
	// MemoryModeKernel buffers are allocated by this core and mapped out to
	// user space on request.
	MemoryModeKernel
	// MemoryModeUserPtr buffers wrap pinned user-space pages.
	MemoryModeUserPtr
	// MemoryModeImported buffers wrap memory owned by an external sharing
	// subsystem; the exporter owns their cache maintenance.
	MemoryModeImported
)

var memoryModeMapping = make(map[MemoryMode]string)

func (m MemoryMode) String() string {
	return memoryModeMapping[m]
}

func init() {
	memoryModeMapping[MemoryModeNone] = "MemoryModeNone"
	memoryModeMapping[MemoryModeKernel] = "MemoryModeKernel"
	memoryModeMapping[MemoryModeUserPtr] = "MemoryModeUserPtr"
	memoryModeMapping[MemoryModeImported] = "MemoryModeImported"
}

// Memory is one buffer's backing storage, implemented per acquisition
// strategy. The coherent and non-coherent kernel variants are selected by the
// queue's coherency value at allocation time; user-pointer and imported
// variants are attached by the consumer.
type Memory interface {
	// Size returns the usable length of the backing storage in bytes.
	Size() int
	// Coherent reports whether the storage is CPU-cache-coherent.
	Coherent() bool
	// Bytes returns a kernel-addressable view of the storage, establishing it
	// lazily where the variant defers mapping. It returns nil when the CPU
	// cannot currently address the storage; that is not a fatal condition.
	Bytes() []byte
	// BaseScatterList returns the storage described as a scatter list,
	// synthesizing one on first use for variants not natively backed by one.
	BaseScatterList() (*dma.ScatterList, error)
	// MapUser maps the storage into the user address space described by area.
	// area is left unmodified on failure.
	MapUser(area *dma.MemoryArea) error
	// Release frees the backing storage. No method may be called afterward.
	Release()

	// syncScatterList returns the scatter list the sync engine maintains, or
	// nil when no scatter list is associated with the storage.
	syncScatterList() *dma.ScatterList
	// mappedBytes returns the kernel view only if one is already established;
	// it never triggers a lazy mapping.
	mappedBytes() []byte
}

// ImportedBuffer is memory owned by an external buffer-sharing subsystem.
// Consumers supply one per buffer on MemoryModeImported queues. The exporter
// retains ownership of cache synchronization.
type ImportedBuffer interface {
	// Size returns the importable length in bytes.
	Size() int
	// MapKernel establishes a kernel-addressable view of the buffer.
	MapKernel() ([]byte, error)
	// UnmapKernel tears down a view obtained from MapKernel.
	UnmapKernel(view []byte)
	// ScatterList describes the buffer for the device.
	ScatterList() (*dma.ScatterList, error)
	// Release drops this importer's reference to the external buffer.
	Release()
}
