package vbuf

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory indicates that backing storage or scatter-list metadata
	// could not be allocated. The buffer set is left in its prior state.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrCoherencyMismatch indicates that a buffer-set request's resolved
	// coherency conflicts with the value already fixed for the queue.
	ErrCoherencyMismatch = errors.New("coherency model mismatch")
	// ErrInvalidArgument indicates a malformed request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMappingFailed indicates that a user-space mapping could not be
	// established.
	ErrMappingFailed = errors.New("mapping failed")
	// ErrScatterConversion indicates that a coherent allocation could not be
	// described as a scatter list. The buffer itself remains usable.
	ErrScatterConversion = errors.New("cannot describe buffer as a scatter list")
)
