package vbuf

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/mediakit/vbuf/memutil"
)

// Statistics summarizes the queue's current buffer population.
func (q *Queue) Statistics() memutil.Statistics {
	var stats memutil.Statistics
	for i := 0; i < q.bufferCount; i++ {
		b, ok := q.buffers.Get(i)
		if !ok {
			continue
		}

		stats.AddBuffer(b.Size())
		if b.state == BufferQueued {
			stats.QueuedCount++
		}
		if b.mem != nil && b.mem.mappedBytes() != nil {
			stats.MappedCount++
		}
	}

	return stats
}

// BuildStatsString writes a JSON description of the queue and its buffers,
// for diagnostics.
func (q *Queue) BuildStatsString(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("MemoryMode").String(q.memoryMode.String())
	objState.Name("Direction").String(q.dir.String())
	objState.Name("AllowCacheHints").Bool(q.allowCacheHints)

	coherent, established := q.coherency.value()
	objState.Name("CoherencyEstablished").Bool(established)
	if established {
		objState.Name("Coherent").Bool(coherent)
	}

	objState.Name("BufferCount").Int(q.bufferCount)
	objState.Name("QueuedCount").Int(q.queuedCount)

	arrayState := objState.Name("Buffers").Array()
	defer arrayState.End()

	for i := 0; i < q.bufferCount; i++ {
		b, ok := q.buffers.Get(i)
		if !ok {
			continue
		}

		bufObj := arrayState.Object()
		bufObj.Name("Index").Int(b.index)
		bufObj.Name("State").String(b.state.String())
		bufObj.Name("Size").Int(b.Size())
		bufObj.Name("Coherent").Bool(b.coherent)
		bufObj.Name("Synced").Bool(b.synced)
		bufObj.End()
	}
}
