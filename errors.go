package canard

import "errors"

// Sentinel errors returned by the TX pipeline. They are stable across
// versions, mirroring the negative error codes of the C reference
// implementation (CANARD_ERROR_INVALID_ARGUMENT, CANARD_ERROR_OUT_OF_MEMORY).
var (
	// ErrInvalidArgument is returned when a caller contract is violated: a
	// required pointer/slice is nil, or transfer metadata is
	// self-contradictory (e.g. a message with a remote node set). No state
	// is changed before this error is returned.
	ErrInvalidArgument = errors.New("canard: invalid argument")

	// ErrOutOfMemory is returned when the allocator returns nil, or when the
	// queue capacity would be exceeded even after the lazy expiry sweep. Any
	// frames already allocated for the current Push are freed before this
	// error is returned; frames removed by the expiry sweep stay removed.
	ErrOutOfMemory = errors.New("canard: out of memory")
)
