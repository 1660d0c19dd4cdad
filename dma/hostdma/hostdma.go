//go:build linux

// Package hostdma is a dma.Driver backed by anonymous memory mappings. Host
// memory is CPU-coherent, so every cache-maintenance call is a no-op; the
// point of this driver is to exercise the full buffer lifecycle without
// device hardware, both in soak tests and in userspace consumers.
package hostdma

import (
	"os"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/mediakit/vbuf/dma"
	"github.com/mediakit/vbuf/memutil"
	"golang.org/x/sys/unix"
)

// ErrUserPtrUnsupported is returned from PinUserPages: this driver has no
// separate user address space to pin from.
var ErrUserPtrUnsupported = errors.New("hostdma: user-pointer pinning is not supported")

var _ dma.Driver = (*Driver)(nil)

// Driver implements dma.Driver over anonymous mmap pages.
type Driver struct {
	pageSize int

	mu sync.Mutex
	// scatterBacking tracks the single host mapping behind each scatter
	// allocation handed out by AllocScatter.
	scatterBacking map[*dma.ScatterList][]byte
}

func New() *Driver {
	pageSize := os.Getpagesize()
	memutil.DebugCheckPow2(uint(pageSize), "host page size")

	return &Driver{
		pageSize:       pageSize,
		scatterBacking: make(map[*dma.ScatterList][]byte),
	}
}

func (d *Driver) mmap(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, memutil.AlignUp(size, uint(d.pageSize)),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
}

func (d *Driver) AllocCoherent(size int, attrs dma.AttrFlags) (dma.CoherentMemory, error) {
	if size <= 0 {
		return dma.CoherentMemory{}, errors.Newf("hostdma: invalid coherent allocation size %d", size)
	}

	backing, err := d.mmap(size)
	if err != nil {
		return dma.CoherentMemory{}, errors.Wrapf(err, "hostdma: mmap of %d bytes", size)
	}

	mem := dma.CoherentMemory{
		Address: dma.DeviceAddress(uintptr(unsafe.Pointer(&backing[0]))),
		Cookie:  backing,
	}
	if attrs&dma.AttrNoKernelMapping == 0 {
		mem.Bytes = backing[:size]
	}
	return mem, nil
}

func (d *Driver) FreeCoherent(mem dma.CoherentMemory, size int, attrs dma.AttrFlags) {
	backing, ok := mem.Cookie.([]byte)
	if !ok {
		panic("hostdma: coherent memory was not allocated by this driver")
	}
	_ = unix.Munmap(backing)
}

func (d *Driver) AllocScatter(size int, dir dma.Direction, attrs dma.AttrFlags) (*dma.ScatterList, error) {
	if size <= 0 {
		return nil, errors.Newf("hostdma: invalid scatter allocation size %d", size)
	}

	backing, err := d.mmap(size)
	if err != nil {
		return nil, errors.Wrapf(err, "hostdma: mmap of %d bytes", size)
	}

	// Present the mapping page by page, the way a real scatter allocation
	// would arrive.
	var segments []dma.Segment
	for offset := 0; offset < size; offset += d.pageSize {
		length := d.pageSize
		if size-offset < length {
			length = size - offset
		}
		segments = append(segments, dma.Segment{
			Address: dma.DeviceAddress(uintptr(unsafe.Pointer(&backing[offset]))),
			Length:  length,
		})
	}
	list := dma.NewScatterList(segments)

	d.mu.Lock()
	d.scatterBacking[list] = backing
	d.mu.Unlock()

	return list, nil
}

func (d *Driver) FreeScatter(list *dma.ScatterList, dir dma.Direction) {
	d.mu.Lock()
	backing, ok := d.scatterBacking[list]
	delete(d.scatterBacking, list)
	d.mu.Unlock()

	if !ok {
		panic("hostdma: scatter list was not allocated by this driver")
	}
	_ = unix.Munmap(backing)
}

func (d *Driver) MapScatterKernel(list *dma.ScatterList) ([]byte, error) {
	d.mu.Lock()
	backing, ok := d.scatterBacking[list]
	d.mu.Unlock()

	if !ok {
		return nil, errors.New("hostdma: scatter list was not allocated by this driver")
	}
	// The host backing is already virtually contiguous.
	return backing[:list.TotalLength()], nil
}

func (d *Driver) UnmapScatterKernel(list *dma.ScatterList, view []byte) {
}

func (d *Driver) ScatterFromCoherent(mem dma.CoherentMemory, size int, attrs dma.AttrFlags) (*dma.ScatterList, error) {
	backing, ok := mem.Cookie.([]byte)
	if !ok {
		return nil, errors.New("hostdma: coherent memory was not allocated by this driver")
	}

	return dma.NewScatterList([]dma.Segment{
		{
			Address: dma.DeviceAddress(uintptr(unsafe.Pointer(&backing[0]))),
			Length:  size,
		},
	}), nil
}

func (d *Driver) SyncScatter(list *dma.ScatterList, dir dma.Direction, op dma.CacheOperation) {
}

func (d *Driver) SyncKernel(view []byte, op dma.CacheOperation) {
}

func (d *Driver) MapCoherentUser(area *dma.MemoryArea, mem dma.CoherentMemory, size int, attrs dma.AttrFlags) error {
	backing, ok := mem.Cookie.([]byte)
	if !ok {
		return errors.New("hostdma: coherent memory was not allocated by this driver")
	}

	area.Data = backing[:size]
	area.Length = size
	return nil
}

func (d *Driver) MapScatterUser(area *dma.MemoryArea, list *dma.ScatterList) error {
	view, err := d.MapScatterKernel(list)
	if err != nil {
		return err
	}

	area.Data = view
	area.Length = len(view)
	return nil
}

func (d *Driver) PinUserPages(addr uintptr, size int, dir dma.Direction) (*dma.ScatterList, error) {
	return nil, ErrUserPtrUnsupported
}

func (d *Driver) UnpinUserPages(list *dma.ScatterList, dir dma.Direction) {
}
