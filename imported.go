package vbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/mediakit/vbuf/dma"
)

// importedMemory wraps an externally-owned buffer. The exporter owns cache
// synchronization, so the sync engine is bypassed entirely for this variant.
type importedMemory struct {
	device *Device
	imp    ImportedBuffer

	// view caches the import-specific kernel mapping established on first use.
	view []byte
}

func attachImported(device *Device, imp ImportedBuffer) (*importedMemory, error) {
	if imp == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil imported buffer")
	}
	if imp.Size() <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "imported buffer has invalid size %d", imp.Size())
	}

	return &importedMemory{
		device: device,
		imp:    imp,
	}, nil
}

func (m *importedMemory) Size() int {
	return m.imp.Size()
}

func (m *importedMemory) Coherent() bool {
	return true
}

func (m *importedMemory) Bytes() []byte {
	if m.view != nil {
		return m.view
	}

	view, err := m.imp.MapKernel()
	if err != nil {
		return nil
	}

	m.view = view
	return view
}

func (m *importedMemory) BaseScatterList() (*dma.ScatterList, error) {
	list, err := m.imp.ScatterList()
	if err != nil {
		return nil, errors.Wrapf(ErrScatterConversion, "imported buffer of %d bytes: %v", m.imp.Size(), err)
	}

	return list, nil
}

func (m *importedMemory) MapUser(area *dma.MemoryArea) error {
	return errors.Wrap(ErrInvalidArgument, "the exporter owns user-space mappings of an imported buffer")
}

func (m *importedMemory) Release() {
	if m.view != nil {
		m.imp.UnmapKernel(m.view)
		m.view = nil
	}
	m.imp.Release()
}

func (m *importedMemory) syncScatterList() *dma.ScatterList {
	// Exporter-owned; the sync engine never touches it.
	return nil
}

func (m *importedMemory) mappedBytes() []byte {
	return m.view
}
