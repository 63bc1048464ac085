// Package store implements a content-addressed chunk store (put/get,
// idempotent by id) plus a filesystem-backed implementation used both as
// the writable primary and as a read-only seed store.
package store

import (
	"code.vellumsync.dev/vellum/go/src/_/interfaces"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
)

// ObjectStore is a content-addressed chunk store: put(id, bytes) stores
// bytes idempotently under id, get(id) returns bytes or a NOT-FOUND error.
// A seed store only ever has Get called on it; Put is still part of the
// interface so callers don't need two interfaces for the same shape minus
// one method.
type ObjectStore interface {
	// Put stores bytes under id. Idempotent: putting the same id twice
	// with the same bytes succeeds both times without error.
	Put(id markl.Id, data []byte) error

	// Get returns the bytes stored under id, or an error satisfying
	// errors.IsErrNotFound if id is absent from this store.
	Get(id markl.Id) ([]byte, error)

	// Has reports whether id is present, without materializing its bytes.
	Has(id markl.Id) bool

	// AllObjects enumerates every id present in the store. Used by
	// maintenance/packing tooling, not by the Synchronizer's hot path.
	AllObjects() interfaces.SeqError[markl.Id]
}

// Cascade resolves Get across a writable store and an ordered list of
// read-only seed stores: it consults the writable store first, then seed
// stores in registration order. The first result that is not NOT-FOUND is
// returned verbatim, even errors.
type Cascade struct {
	Writable ObjectStore
	Seeds    []ObjectStore
}

func (c Cascade) Get(id markl.Id) ([]byte, error) {
	if c.Writable != nil {
		data, err := c.Writable.Get(id)
		if err == nil || !isNotFound(err) {
			return data, err
		}
	}

	for _, seed := range c.Seeds {
		data, err := seed.Get(id)
		if err == nil || !isNotFound(err) {
			return data, err
		}
	}

	return nil, notFoundError(id)
}
