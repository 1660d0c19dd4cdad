package vbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/mediakit/vbuf/dma"
	"github.com/mediakit/vbuf/memutil"
	"golang.org/x/exp/slog"
)

// QueueOptions contains settings fixed at queue creation. The zero value is
// usable for a bidirectional queue without cache hints, though kernel-mode
// RequestBuffers additionally needs BufferSize.
type QueueOptions struct {
	// Direction is the device transfer direction for every buffer on this
	// queue.
	Direction dma.Direction

	// AllowCacheHints advertises that the device's DMA architecture tolerates
	// per-buffer cache-maintenance hints and non-coherent allocations. When
	// false, every hint is ignored and synchronization always runs.
	AllowCacheHints bool

	// AllocAttrs are passed through to the allocator backend.
	AllocAttrs dma.AttrFlags

	// BufferSize is the per-buffer allocation size used by RequestBuffers
	// for kernel-allocated memory. CreateBuffers carries explicit sizes and
	// does not consult it.
	BufferSize int

	// Logger receives debug and failure logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Queue owns one device's buffer set and drives it through the allocate,
// queue, synchronize, and release lifecycle.
//
// The core performs no internal locking: the caller's queue lock must
// serialize every method. Buffer reference counts are the one exception and
// are atomic (see Buffer).
type Queue struct {
	logger *slog.Logger
	device *Device

	dir             dma.Direction
	allowCacheHints bool
	allocAttrs      dma.AttrFlags
	bufferSize      int

	memoryMode  MemoryMode
	coherency   coherencyPolicy
	buffers     *swiss.Map[int, *Buffer]
	bufferCount int
	queuedCount int
}

// NewQueue creates a queue over the given device.
func NewQueue(device *Device, options QueueOptions) (*Queue, error) {
	if device == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "attempted to create a queue around a nil device")
	}
	if !options.Direction.Valid() || options.Direction == dma.DirNone {
		return nil, errors.Wrapf(ErrInvalidArgument, "queue direction %s does not name a device transfer direction", options.Direction)
	}
	if options.BufferSize < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "negative buffer size %d", options.BufferSize)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Queue{
		logger:          logger,
		device:          device,
		dir:             options.Direction,
		allowCacheHints: options.AllowCacheHints,
		allocAttrs:      options.AllocAttrs,
		bufferSize:      options.BufferSize,
		buffers:         swiss.NewMap[int, *Buffer](8),
	}, nil
}

// Device returns the queue's device handle.
func (q *Queue) Device() *Device { return q.device }

// Direction returns the queue's transfer direction.
func (q *Queue) Direction() dma.Direction { return q.dir }

// AllowsCacheHints reports whether per-buffer cache hints are honored.
func (q *Queue) AllowsCacheHints() bool { return q.allowCacheHints }

// MemoryMode returns the memory mode of the current buffer set, or
// MemoryModeNone while the queue holds no buffers.
func (q *Queue) MemoryMode() MemoryMode { return q.memoryMode }

// NumBuffers returns the number of buffers in the current set.
func (q *Queue) NumBuffers() int { return q.bufferCount }

// QueuedCount returns the number of buffers currently queued to the device.
func (q *Queue) QueuedCount() int { return q.queuedCount }

// Coherent returns the coherency fixed for the current buffer-set generation.
// established is false while the queue holds no buffers, in which case the
// next buffer-set request may pick either value.
func (q *Queue) Coherent() (coherent bool, established bool) {
	return q.coherency.value()
}

// Buffer returns the buffer at index, or nil if no such buffer exists.
func (q *Queue) Buffer(index int) *Buffer {
	b, ok := q.buffers.Get(index)
	if !ok {
		return nil
	}
	return b
}

// RequestBuffers (re)configures the queue's buffer set: count buffers of the
// given memory mode replace whatever set existed before. A count of zero
// releases the set. For kernel-allocated memory each buffer is BufferSize
// bytes; user-pointer and imported buffers get their storage attached later.
//
// Unknown flag bits are reserved and ignored. The request's resolved
// coherency must match the queue's fixed value while buffers exist.
func (q *Queue) RequestBuffers(mode MemoryMode, flags RequestFlags, count int) (coherent bool, allocated int, err error) {
	q.logger.Debug("Queue::RequestBuffers", "mode", mode, "flags", flags, "count", count)

	if count < 0 {
		return false, 0, errors.Wrapf(ErrInvalidArgument, "negative buffer count %d", count)
	}

	if count == 0 {
		if q.bufferCount == 0 {
			return false, 0, nil
		}
		if err := q.checkIdle(); err != nil {
			return false, 0, err
		}
		q.freeAll()
		return false, 0, nil
	}

	if err := q.checkMode(mode); err != nil {
		return false, 0, err
	}
	if mode == MemoryModeKernel && q.bufferSize <= 0 {
		return false, 0, errors.Wrap(ErrInvalidArgument, "queue has no buffer size configured for kernel-allocated memory")
	}

	flags = flags.sanitized()
	requestNonCoherent := flags&RequestNonCoherent != 0

	coherent, err = q.coherency.configure(requestNonCoherent, q.allowCacheHints, mode, q.bufferCount)
	if err != nil {
		return false, 0, err
	}

	if q.bufferCount > 0 {
		if err := q.checkIdle(); err != nil {
			return false, 0, err
		}
		q.freeAll()
		// freeAll cleared the policy; fix it again for the new generation.
		coherent, _ = q.coherency.configure(requestNonCoherent, q.allowCacheHints, mode, 0)
	}

	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = q.bufferSize
	}

	if err := q.allocateBuffers(mode, coherent, 0, sizes); err != nil {
		return false, 0, err
	}

	q.memoryMode = mode
	memutil.DebugValidate(q)
	return coherent, count, nil
}

// CreateBuffers adds count buffers to the queue's set without disturbing the
// buffers that already exist, establishing the set if none does. Kernel-mode
// buffers are sized by planeSizes, all planes backed by one allocation;
// user-pointer and imported modes take no sizes.
//
// A coherency-incompatible flag value on a non-empty set is an invalid
// argument as well as a coherency mismatch.
func (q *Queue) CreateBuffers(mode MemoryMode, flags RequestFlags, count int, planeSizes []int) (firstIndex int, err error) {
	q.logger.Debug("Queue::CreateBuffers", "mode", mode, "flags", flags, "count", count)

	if count <= 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "buffer count %d must be positive", count)
	}
	if err := q.checkMode(mode); err != nil {
		return 0, err
	}

	bufferBytes := 0
	if mode == MemoryModeKernel {
		if len(planeSizes) == 0 {
			return 0, errors.Wrap(ErrInvalidArgument, "kernel-allocated buffers need at least one plane size")
		}
		for i, size := range planeSizes {
			if size <= 0 {
				return 0, errors.Wrapf(ErrInvalidArgument, "plane %d has invalid size %d", i, size)
			}
			bufferBytes += size
		}
	} else if len(planeSizes) != 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "plane sizes cannot be specified for %s buffers", mode)
	}

	flags = flags.sanitized()
	requestNonCoherent := flags&RequestNonCoherent != 0

	coherent, err := q.coherency.configure(requestNonCoherent, q.allowCacheHints, mode, q.bufferCount)
	if err != nil {
		// Adding buffers with an incompatible flag value is a malformed
		// request on top of being a coherency conflict.
		return 0, errors.Mark(err, ErrInvalidArgument)
	}

	firstIndex = q.bufferCount
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = bufferBytes
	}

	if err := q.allocateBuffers(mode, coherent, firstIndex, sizes); err != nil {
		return 0, err
	}

	q.memoryMode = mode
	memutil.DebugValidate(q)
	return firstIndex, nil
}

// allocateBuffers produces len(sizes) buffers at consecutive indices starting
// at firstIndex. Any failure rolls the new buffers back; no partial buffer
// escapes into the set.
func (q *Queue) allocateBuffers(mode MemoryMode, coherent bool, firstIndex int, sizes []int) error {
	created := 0
	for i := range sizes {
		var mem Memory
		if mode == MemoryModeKernel {
			var err error
			mem, err = q.allocBufferMemory(coherent, sizes[i])
			if err != nil {
				q.rollbackBuffers(firstIndex, created)
				return err
			}
		}

		index := firstIndex + i
		q.buffers.Put(index, newBuffer(q, index, mode, coherent, mem))
		created++
	}

	q.bufferCount = firstIndex + created
	return nil
}

func (q *Queue) allocBufferMemory(coherent bool, size int) (Memory, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid buffer size %d", size)
	}

	if coherent {
		return allocCoherent(q.device, size, q.allocAttrs)
	}
	return allocScatter(q.device, size, q.dir, q.allocAttrs)
}

func (q *Queue) rollbackBuffers(firstIndex, created int) {
	for i := firstIndex; i < firstIndex+created; i++ {
		b, ok := q.buffers.Get(i)
		if !ok {
			continue
		}
		q.buffers.Delete(i)
		b.Release()
	}

	if firstIndex == 0 {
		// The set never came into being; the next request chooses freely.
		q.coherency.reset()
		q.memoryMode = MemoryModeNone
	}
}

// FreeBuffers releases the whole buffer set. Buffers with outstanding
// user-space mappings stay alive until those mappings are released, but the
// queue forgets them immediately: the count drops to zero and the coherency
// model resets.
func (q *Queue) FreeBuffers() error {
	q.logger.Debug("Queue::FreeBuffers")

	if q.queuedCount > 0 {
		return errors.Wrapf(ErrInvalidArgument, "%d buffers are still queued to the device", q.queuedCount)
	}

	q.freeAll()
	return nil
}

func (q *Queue) freeAll() {
	for i := 0; i < q.bufferCount; i++ {
		b, ok := q.buffers.Get(i)
		if !ok {
			continue
		}
		b.Release()
	}

	q.buffers = swiss.NewMap[int, *Buffer](8)
	q.bufferCount = 0
	q.queuedCount = 0
	q.memoryMode = MemoryModeNone
	q.coherency.reset()
}

// AttachUserPointer pins size bytes of user memory at addr as buffer index's
// backing storage, replacing any previously pinned range. Only valid on
// user-pointer queues with the buffer dequeued.
func (q *Queue) AttachUserPointer(index int, addr uintptr, size int) error {
	q.logger.Debug("Queue::AttachUserPointer", "index", index, "size", size)

	b, err := q.dequeuedBuffer(index)
	if err != nil {
		return err
	}
	if q.memoryMode != MemoryModeUserPtr {
		return errors.Wrapf(ErrInvalidArgument, "cannot attach a user pointer to a %s queue", q.memoryMode)
	}

	mem, err := pinUserMemory(q.device, addr, size, q.dir)
	if err != nil {
		return err
	}

	if b.mem != nil {
		b.mem.Release()
	}
	b.mem = mem
	return nil
}

// AttachImported adopts an externally-owned buffer as buffer index's backing
// storage. Only valid on imported-mode queues with the buffer dequeued.
func (q *Queue) AttachImported(index int, imp ImportedBuffer) error {
	q.logger.Debug("Queue::AttachImported", "index", index)

	b, err := q.dequeuedBuffer(index)
	if err != nil {
		return err
	}
	if q.memoryMode != MemoryModeImported {
		return errors.Wrapf(ErrInvalidArgument, "cannot attach an imported buffer to a %s queue", q.memoryMode)
	}

	mem, err := attachImported(q.device, imp)
	if err != nil {
		return err
	}

	if b.mem != nil {
		b.mem.Release()
	}
	b.mem = mem
	return nil
}

// QueueBuffer hands buffer index to the device for one transfer cycle. The
// cycle's cache-sync overrides are computed fresh from hints, then the
// prepare-side synchronization runs.
func (q *Queue) QueueBuffer(index int, hints SyncHints) error {
	q.logger.Debug("Queue::QueueBuffer", "index", index)

	b, err := q.dequeuedBuffer(index)
	if err != nil {
		return err
	}
	if b.mem == nil {
		return errors.Wrapf(ErrInvalidArgument, "buffer %d has no memory attached", index)
	}

	q.computeSyncOverrides(b, hints)
	q.prepareBuffer(b)

	b.state = BufferQueued
	q.queuedCount++
	memutil.DebugValidate(q)
	return nil
}

// FinishBuffer completes buffer index's transfer cycle. The surrounding
// system calls this from its device-completion context; the finish-side
// synchronization runs and the buffer returns to the dequeued state.
func (q *Queue) FinishBuffer(index int) error {
	q.logger.Debug("Queue::FinishBuffer", "index", index)

	b, ok := q.buffers.Get(index)
	if !ok {
		return errors.Wrapf(ErrInvalidArgument, "no buffer at index %d", index)
	}
	if b.state != BufferQueued {
		return errors.Wrapf(ErrInvalidArgument, "buffer %d is %s, not queued", index, b.state)
	}

	q.finishBuffer(b)

	b.state = BufferDequeued
	q.queuedCount--
	memutil.DebugValidate(q)
	return nil
}

func (q *Queue) dequeuedBuffer(index int) (*Buffer, error) {
	b, ok := q.buffers.Get(index)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "no buffer at index %d", index)
	}
	if b.state != BufferDequeued {
		return nil, errors.Wrapf(ErrInvalidArgument, "buffer %d is %s", index, b.state)
	}
	return b, nil
}

func (q *Queue) checkMode(mode MemoryMode) error {
	switch mode {
	case MemoryModeKernel, MemoryModeUserPtr, MemoryModeImported:
	default:
		return errors.Wrapf(ErrInvalidArgument, "unknown memory mode %d", mode)
	}

	if q.bufferCount > 0 && mode != q.memoryMode {
		return errors.Wrapf(ErrInvalidArgument, "queue already holds %s buffers", q.memoryMode)
	}
	return nil
}

// checkIdle rejects buffer-set reconfiguration while any buffer is queued or
// has outstanding mappings.
func (q *Queue) checkIdle() error {
	if q.queuedCount > 0 {
		return errors.Wrapf(ErrInvalidArgument, "%d buffers are still queued to the device", q.queuedCount)
	}

	for i := 0; i < q.bufferCount; i++ {
		b, ok := q.buffers.Get(i)
		if !ok {
			continue
		}
		if b.refs.Load() > 1 {
			return errors.Wrapf(ErrInvalidArgument, "buffer %d still has outstanding mappings", i)
		}
	}
	return nil
}

// Validate checks the queue's internal invariants. It is wired into mutating
// operations through memutil.DebugValidate under the debug_vbuf build tag.
func (q *Queue) Validate() error {
	if q.buffers.Count() != q.bufferCount {
		return errors.Newf("buffer table holds %d entries but the queue counts %d", q.buffers.Count(), q.bufferCount)
	}

	coherent, established := q.coherency.value()
	if q.bufferCount > 0 && !established {
		return errors.New("queue holds buffers but has no established coherency")
	}

	queued := 0
	var err error
	q.buffers.Iter(func(index int, b *Buffer) bool {
		if b.state == BufferReleased {
			err = errors.Newf("released buffer %d is still in the table", index)
			return true
		}
		if b.state == BufferQueued {
			queued++
		}
		if established && b.mode == MemoryModeKernel && b.coherent != coherent {
			err = errors.Newf("buffer %d has coherent=%t but the queue fixed coherent=%t", index, b.coherent, coherent)
			return true
		}
		return false
	})
	if err != nil {
		return err
	}

	if queued != q.queuedCount {
		return errors.Newf("counted %d queued buffers but the queue tracks %d", queued, q.queuedCount)
	}
	return nil
}
