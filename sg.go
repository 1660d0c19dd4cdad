package vbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/mediakit/vbuf/dma"
)

// scatterMemory is the non-contiguous, non-coherent allocation variant. The
// kernel view is deferred to the first Bytes call: mapping discontiguous
// pages into one virtual range is not free and not every buffer needs it.
type scatterMemory struct {
	device *Device
	size   int
	dir    dma.Direction
	list   *dma.ScatterList

	// view is the lazily established kernel mapping. First access wins;
	// failures are not cached, the next Bytes call retries.
	view []byte
}

func allocScatter(device *Device, size int, dir dma.Direction, attrs dma.AttrFlags) (*scatterMemory, error) {
	list, err := device.Driver().AllocScatter(size, dir, attrs)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "allocating %d non-coherent bytes: %v", size, err)
	}

	return &scatterMemory{
		device: device,
		size:   size,
		dir:    dir,
		list:   list,
	}, nil
}

func (m *scatterMemory) Size() int {
	return m.size
}

func (m *scatterMemory) Coherent() bool {
	return false
}

func (m *scatterMemory) Bytes() []byte {
	if m.view != nil {
		return m.view
	}

	view, err := m.device.Driver().MapScatterKernel(m.list)
	if err != nil {
		return nil
	}

	m.view = view
	return view
}

func (m *scatterMemory) BaseScatterList() (*dma.ScatterList, error) {
	return m.list, nil
}

func (m *scatterMemory) MapUser(area *dma.MemoryArea) error {
	err := m.device.Driver().MapScatterUser(area, m.list)
	if err != nil {
		return errors.Wrapf(ErrMappingFailed, "mapping %d non-coherent bytes to user space: %v", m.size, err)
	}

	return nil
}

func (m *scatterMemory) Release() {
	if m.view != nil {
		m.device.Driver().UnmapScatterKernel(m.list, m.view)
		m.view = nil
	}
	m.device.Driver().FreeScatter(m.list, m.dir)
}

func (m *scatterMemory) syncScatterList() *dma.ScatterList {
	return m.list
}

func (m *scatterMemory) mappedBytes() []byte {
	return m.view
}
