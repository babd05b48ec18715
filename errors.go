package flexbatch

import "errors"

// Contract-violation errors. These surface immediately at the call site
// that violated the contract, never deferred to a later sort or draw pass.
var (
	// ErrNoGeometry is returned when a vertex or index write is attempted
	// on a batchable whose geometry source has not been assigned.
	ErrNoGeometry = errors.New("flexbatch: geometry source not assigned")

	// ErrShortBuffer is returned when the destination slice cannot hold the
	// batchable's vertex or index data at the requested offset.
	ErrShortBuffer = errors.New("flexbatch: destination buffer too small")
)
