package vbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/mediakit/vbuf/dma"
)

// coherentMemory is the contiguous, CPU-cache-coherent allocation variant.
// The kernel view is established eagerly at allocation unless the queue's
// attributes carry AttrNoKernelMapping.
type coherentMemory struct {
	device *Device
	size   int
	attrs  dma.AttrFlags
	mem    dma.CoherentMemory

	// scatter is synthesized on first BaseScatterList call and cached.
	scatter *dma.ScatterList
}

func allocCoherent(device *Device, size int, attrs dma.AttrFlags) (*coherentMemory, error) {
	mem, err := device.Driver().AllocCoherent(size, attrs)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "allocating %d coherent bytes: %v", size, err)
	}

	return &coherentMemory{
		device: device,
		size:   size,
		attrs:  attrs,
		mem:    mem,
	}, nil
}

func (m *coherentMemory) Size() int {
	return m.size
}

func (m *coherentMemory) Coherent() bool {
	return true
}

func (m *coherentMemory) Bytes() []byte {
	return m.mem.Bytes
}

func (m *coherentMemory) BaseScatterList() (*dma.ScatterList, error) {
	if m.scatter != nil {
		return m.scatter, nil
	}

	list, err := m.device.Driver().ScatterFromCoherent(m.mem, m.size, m.attrs)
	if err != nil {
		return nil, errors.Wrapf(ErrScatterConversion, "coherent region of %d bytes: %v", m.size, err)
	}

	m.scatter = list
	return list, nil
}

func (m *coherentMemory) MapUser(area *dma.MemoryArea) error {
	err := m.device.Driver().MapCoherentUser(area, m.mem, m.size, m.attrs)
	if err != nil {
		return errors.Wrapf(ErrMappingFailed, "mapping %d coherent bytes to user space: %v", m.size, err)
	}

	return nil
}

func (m *coherentMemory) Release() {
	m.device.Driver().FreeCoherent(m.mem, m.size, m.attrs)
}

func (m *coherentMemory) syncScatterList() *dma.ScatterList {
	return m.scatter
}

func (m *coherentMemory) mappedBytes() []byte {
	return m.mem.Bytes
}
