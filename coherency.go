package vbuf

import (
	"github.com/cockroachdb/errors"
)

// coherencyPolicy fixes a queue's allocation coherency for the lifetime of
// one buffer-set generation. The value is undefined while the queue holds no
// buffers, fixed the instant a set is allocated, and forgotten when the
// buffer count returns to zero.
type coherencyPolicy struct {
	established bool
	coherent    bool
}

// configure resolves the coherency for a buffer-set request. Non-coherent
// allocations can only be requested on queues that allow cache hints and only
// for kernel-allocated memory; in every other case the request bit is ignored
// and the queue is forced coherent, because the cache behavior of user or
// imported memory is owned elsewhere.
//
// With buffers outstanding the resolved value must match the fixed one;
// a conflict rejects the request without mutating anything.
func (p *coherencyPolicy) configure(requestNonCoherent bool, allowCacheHints bool, mode MemoryMode, bufferCount int) (bool, error) {
	coherent := true
	if allowCacheHints && mode == MemoryModeKernel {
		coherent = !requestNonCoherent
	}

	if bufferCount > 0 {
		if !p.established {
			panic("queue holds buffers but has no established coherency")
		}
		if coherent != p.coherent {
			return false, errors.Wrapf(ErrCoherencyMismatch,
				"requested coherent=%t but the queue's existing buffers were allocated with coherent=%t",
				coherent, p.coherent)
		}
		return coherent, nil
	}

	p.established = true
	p.coherent = coherent
	return coherent, nil
}

// reset forgets the fixed value. Called exactly when the buffer count
// returns to zero.
func (p *coherencyPolicy) reset() {
	p.established = false
	p.coherent = false
}

func (p *coherencyPolicy) value() (coherent bool, established bool) {
	return p.coherent, p.established
}
