package vbuf

import (
	"github.com/mediakit/vbuf/dma"
)

// RequestFlags travels in a 32-bit word of the buffer-set request structures.
// Exactly one bit is defined; all higher bits are reserved-must-be-zero and
// are never interpreted by this core. The dispatch layer masks them too, but
// both layers enforce it.
type RequestFlags uint32

const (
	// RequestNonCoherent asks for non-cache-coherent backing storage. Honored
	// only on queues that allow cache hints and only for kernel-allocated
	// memory; ignored everywhere else.
	RequestNonCoherent RequestFlags = 1 << iota
)

const knownRequestFlags = RequestNonCoherent

var requestFlagsMapping = dma.NewFlagStringMapping[RequestFlags]()

func (f RequestFlags) String() string {
	return requestFlagsMapping.FlagsToString(f)
}

func init() {
	requestFlagsMapping.Register(RequestNonCoherent, "RequestNonCoherent")
}

func (f RequestFlags) sanitized() RequestFlags {
	return f & knownRequestFlags
}
