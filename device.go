package vbuf

import (
	"sync/atomic"

	"github.com/mediakit/vbuf/dma"
)

// Device is a shared, reference-counted handle to one DMA-capable device.
// Every allocated buffer holds a reference; the count returns to its prior
// value once a buffer set has been fully released.
type Device struct {
	driver dma.Driver
	refs   atomic.Int64
}

// NewDevice wraps a platform driver in a refcounted handle.
func NewDevice(driver dma.Driver) *Device {
	if driver == nil {
		panic("attempted to create a device around a nil driver")
	}

	return &Device{driver: driver}
}

// Driver returns the platform driver this device wraps.
func (d *Device) Driver() dma.Driver {
	return d.driver
}

// References returns the number of buffers currently holding this device.
func (d *Device) References() int {
	return int(d.refs.Load())
}

func (d *Device) acquire() {
	d.refs.Add(1)
}

func (d *Device) release() {
	if d.refs.Add(-1) < 0 {
		panic("device reference released more times than it was acquired")
	}
}
