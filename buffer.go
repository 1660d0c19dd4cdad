package vbuf

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/mediakit/vbuf/dma"
)

// BufferState tracks one buffer through its queueing lifecycle.
type BufferState byte

const (
	// BufferDequeued buffers are owned by the CPU side and may be mapped,
	// exported, or handed to the device via Queue.QueueBuffer.
	BufferDequeued BufferState = iota
	// BufferQueued buffers are inside a device-transfer cycle.
	BufferQueued
	// BufferReleased buffers have had their storage freed. Terminal.
	BufferReleased
)

var bufferStateMapping = make(map[BufferState]string)

func (s BufferState) String() string {
	return bufferStateMapping[s]
}

func init() {
	bufferStateMapping[BufferDequeued] = "BufferDequeued"
	bufferStateMapping[BufferQueued] = "BufferQueued"
	bufferStateMapping[BufferReleased] = "BufferReleased"
}

// Buffer is the in-kernel representation of one buffer on a queue.
//
// The owning queue's external lock serializes every state mutation except the
// reference count, which is atomic because export paths may race teardown
// from an asynchronous release callback.
type Buffer struct {
	queue *Queue
	index int
	mode  MemoryMode

	// coherent is copied from the queue's coherency policy at allocation and
	// never changes afterward.
	coherent bool

	mem   Memory
	state BufferState

	// synced is true while the CPU owns the buffer with caches consistent.
	// Only prepareBuffer sets it; only finishBuffer clears it.
	synced bool

	// Per-cycle sync overrides, recomputed on every dequeued-to-queued
	// transition. Zero values mean "do sync": skipping is opt-in.
	skipPrepare bool
	skipFinish  bool

	refs atomic.Int32
}

func newBuffer(queue *Queue, index int, mode MemoryMode, coherent bool, mem Memory) *Buffer {
	queue.device.acquire()

	b := &Buffer{
		queue:    queue,
		index:    index,
		mode:     mode,
		coherent: coherent,
		mem:      mem,
		state:    BufferDequeued,
	}
	b.refs.Store(1)
	return b
}

// Index returns the buffer's index within its queue.
func (b *Buffer) Index() int {
	return b.index
}

// Mode returns the buffer's memory-acquisition mode.
func (b *Buffer) Mode() MemoryMode {
	return b.mode
}

// Coherent reports the coherency fixed for this buffer at allocation time.
func (b *Buffer) Coherent() bool {
	return b.coherent
}

// State returns the buffer's lifecycle state.
func (b *Buffer) State() BufferState {
	return b.state
}

// Synced reports whether the CPU currently owns the buffer with caches in a
// consistent state.
func (b *Buffer) Synced() bool {
	return b.synced
}

// SyncOverrides returns the skip decisions computed for the current queueing
// cycle.
func (b *Buffer) SyncOverrides() (skipPrepare, skipFinish bool) {
	return b.skipPrepare, b.skipFinish
}

// Size returns the length of the attached backing storage, or 0 if none is
// attached yet.
func (b *Buffer) Size() int {
	if b.mem == nil {
		return 0
	}
	return b.mem.Size()
}

// Bytes returns a kernel-addressable view of the buffer, establishing the
// mapping lazily for variants that defer it. A nil return means the CPU
// cannot currently address the buffer.
func (b *Buffer) Bytes() []byte {
	b.assertLive()

	if b.mem == nil {
		return nil
	}

	view := b.mem.Bytes()
	if view == nil {
		b.queue.logger.Warn("Buffer::Bytes: no kernel view available", "index", b.index)
	}
	return view
}

// BaseScatterList returns the buffer described as a scatter list for export
// and sharing paths. Failure leaves the buffer valid for direct use.
func (b *Buffer) BaseScatterList() (*dma.ScatterList, error) {
	b.assertLive()

	if b.mem == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "buffer %d has no memory attached", b.index)
	}

	return b.mem.BaseScatterList()
}

// MapUser maps the buffer into the user address space described by area. On
// success the mapping holds a buffer reference that is dropped by
// area.Release; on failure area is left unmodified.
func (b *Buffer) MapUser(area *dma.MemoryArea) error {
	b.queue.logger.Debug("Buffer::MapUser", "index", b.index)
	b.assertLive()

	if b.mem == nil {
		return errors.Wrapf(ErrInvalidArgument, "buffer %d has no memory attached", b.index)
	}

	err := b.mem.MapUser(area)
	if err != nil {
		b.queue.logger.Error("Buffer::MapUser failed", "index", b.index, "error", err)
		return err
	}

	b.Acquire()
	area.OnRelease = b.Release
	return nil
}

// Acquire takes a buffer reference on behalf of an export path.
func (b *Buffer) Acquire() {
	b.assertLive()
	b.refs.Add(1)
}

// Release drops one buffer reference. The final release frees the backing
// storage and drops the device reference; it must not happen while the buffer
// is queued.
func (b *Buffer) Release() {
	remaining := b.refs.Add(-1)
	if remaining < 0 {
		panic("buffer reference released more times than it was acquired")
	}
	if remaining == 0 {
		b.destroy()
	}
}

func (b *Buffer) destroy() {
	if b.state == BufferQueued {
		panic("last buffer reference dropped while the buffer is queued")
	}

	b.state = BufferReleased
	if b.mem != nil {
		b.mem.Release()
		b.mem = nil
	}
	// The device reference goes last.
	b.queue.device.release()
}

func (b *Buffer) assertLive() {
	if b.state == BufferReleased {
		panic("operation on a released buffer")
	}
}
