package alloc

import "errors"

// ErrOutOfMemory is the only failure mode Allocate/Resize can report: the
// OS mapping primitive declined to hand back pages. The pool is left
// exactly as it was before the call.
var ErrOutOfMemory = errors.New("alloc: out of memory")

// Release silently ignores pointers that don't resolve to a live, used
// block — this also absorbs a double-free once the first release has
// already unmapped the owning region. There is no exported error for
// this; it is documented behavior, not a reported condition.
