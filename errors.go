package tempo

import "errors"

// Structural errors returned by the timeline and setter APIs. Callers check
// them with errors.Is; wrapped variants carry the offending name or value.
var (
	ErrNilChild          = errors.New("tempo: cannot add nil child")
	ErrCycle             = errors.New("tempo: adding child would create a cycle")
	ErrKilled            = errors.New("tempo: animation has been killed")
	ErrUnsupportedTarget = errors.New("tempo: unsupported target")
	ErrUnknownProperty   = errors.New("tempo: unknown property")
	ErrNotAddressable    = errors.New("tempo: property is not settable")
	ErrUnknownLabel      = errors.New("tempo: unknown label")
	ErrInvalidPosition   = errors.New("tempo: invalid position")
	ErrNotNumeric        = errors.New("tempo: property is not numeric")
)
