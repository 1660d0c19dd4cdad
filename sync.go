package vbuf

import (
	"github.com/mediakit/vbuf/dma"
)

// SyncHints are the per-cycle cache-maintenance requests carried on a
// queueing call. Zero values request full synchronization; skipping is always
// opt-in so that consumers who never set a hint cannot see stale data.
type SyncHints struct {
	// SkipCacheInvalidate suppresses the sync that runs after device access
	// (the dequeue-side invalidate).
	SkipCacheInvalidate bool
	// SkipCacheClean suppresses the sync that runs before device access
	// (the enqueue-side clean).
	SkipCacheClean bool
}

// computeSyncOverrides resolves the buffer's skip flags for one queueing
// cycle. Recomputed fresh on every dequeued-to-queued transition; nothing
// sticks from the previous cycle.
func (q *Queue) computeSyncOverrides(b *Buffer, hints SyncHints) {
	if b.mode == MemoryModeImported {
		// The exporter owns synchronization.
		b.skipPrepare = true
		b.skipFinish = true
		return
	}

	if !q.allowCacheHints {
		b.skipPrepare = false
		b.skipFinish = false
		return
	}

	// A device-to-CPU-only queue has nothing for the prepare-side clean to
	// preserve; the mirror holds for a device-bound-only queue's finish-side
	// invalidate.
	b.skipPrepare = q.dir == dma.DirFromDevice || hints.SkipCacheClean
	b.skipFinish = q.dir == dma.DirToDevice || hints.SkipCacheInvalidate
}

// prepareBuffer hands the buffer from the CPU to the device, performing
// whatever cache maintenance that handoff requires.
//
// synced flips first and unconditionally: it tracks the ownership transition,
// not whether maintenance instructions actually executed.
func (q *Queue) prepareBuffer(b *Buffer) {
	b.synced = true

	if b.skipPrepare {
		return
	}
	if b.coherent && b.mode == MemoryModeKernel {
		// Coherent kernel memory needs no maintenance.
		return
	}

	list := b.mem.syncScatterList()
	if list == nil {
		return
	}
	q.device.Driver().SyncScatter(list, q.dir, dma.CacheOperationFlush)

	if !b.coherent {
		if view := b.mem.mappedBytes(); view != nil {
			// CPU writes through the kernel view must reach memory
			// consistently with the scatter-list sync.
			q.device.Driver().SyncKernel(view, dma.CacheOperationFlush)
		}
	}
}

// finishBuffer hands the buffer back from the device to the CPU. Mirror of
// prepareBuffer.
func (q *Queue) finishBuffer(b *Buffer) {
	b.synced = false

	if b.skipFinish {
		return
	}
	if b.coherent && b.mode == MemoryModeKernel {
		return
	}

	list := b.mem.syncScatterList()
	if list == nil {
		return
	}
	q.device.Driver().SyncScatter(list, q.dir, dma.CacheOperationInvalidate)

	if !b.coherent {
		if view := b.mem.mappedBytes(); view != nil {
			q.device.Driver().SyncKernel(view, dma.CacheOperationInvalidate)
		}
	}
}
