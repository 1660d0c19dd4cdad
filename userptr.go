package vbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/mediakit/vbuf/dma"
)

// userPtrMemory wraps pinned user-space pages. Allocator-chosen coherency
// does not apply here; the pages are whatever the user supplied, and the sync
// engine maintains them over the pinned scatter list.
type userPtrMemory struct {
	device *Device
	size   int
	dir    dma.Direction
	list   *dma.ScatterList
}

func pinUserMemory(device *Device, addr uintptr, size int, dir dma.Direction) (*userPtrMemory, error) {
	if addr == 0 || size <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "cannot pin user range addr=%#x size=%d", addr, size)
	}

	list, err := device.Driver().PinUserPages(addr, size, dir)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "pinning %d user bytes at %#x: %v", size, addr, err)
	}

	return &userPtrMemory{
		device: device,
		size:   size,
		dir:    dir,
		list:   list,
	}, nil
}

func (m *userPtrMemory) Size() int {
	return m.size
}

func (m *userPtrMemory) Coherent() bool {
	return true
}

func (m *userPtrMemory) Bytes() []byte {
	// User pages are not given a kernel view by this core.
	return nil
}

func (m *userPtrMemory) BaseScatterList() (*dma.ScatterList, error) {
	return m.list, nil
}

func (m *userPtrMemory) MapUser(area *dma.MemoryArea) error {
	return errors.Wrap(ErrInvalidArgument, "user-pointer memory is already user-addressable")
}

func (m *userPtrMemory) Release() {
	m.device.Driver().UnpinUserPages(m.list, m.dir)
}

func (m *userPtrMemory) syncScatterList() *dma.ScatterList {
	return m.list
}

func (m *userPtrMemory) mappedBytes() []byte {
	return nil
}
