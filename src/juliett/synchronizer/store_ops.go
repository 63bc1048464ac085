package synchronizer

import (
	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
	"code.vellumsync.dev/vellum/go/src/india/store"
)

// get consults the writable store first, then each seed store in
// registration order, via the same Cascade the store package exposes to
// any other caller that needs the same fallback order.
func (s *Synchronizer) get(id markl.Id) ([]byte, error) {
	cascade := store.Cascade{Writable: s.wstore, Seeds: s.rstores}
	return cascade.Get(id)
}

// Get exposes the store fallback cascade for callers outside the Step loop
// (e.g. maintenance tooling inspecting a partially synced tree).
func (s *Synchronizer) Get(id markl.Id) ([]byte, error) {
	return s.get(id)
}

// Put forwards to the writable store. Fails NOT-READY if none is configured.
func (s *Synchronizer) Put(id markl.Id, data []byte) error {
	if s.wstore == nil {
		return errors.Wrap(errors.ErrNotReady)
	}

	return errors.Wrap(s.wstore.Put(id, data))
}

// MakeObjectId returns the hash of data under the session's hash format
// (SHA-256 unless SetHashFormat chose another), using the Synchronizer's
// own pooled digest context, the same one chunk emission uses.
func (s *Synchronizer) MakeObjectId(data []byte) (markl.Id, error) {
	if err := s.start(); err != nil {
		return markl.Id{}, err
	}

	return s.makeObjectIdLocked(data), nil
}

// GetDigest returns the archive-level digest. It fails BUSY until eof,
// guaranteeing the digest returned always covers the complete archive.
func (s *Synchronizer) GetDigest() (markl.Id, error) {
	if !s.eof {
		return markl.Id{}, errors.Wrap(errors.ErrBusy)
	}

	return s.getDigestUnchecked(), nil
}

// Stats reports the number of chunks emitted and their total byte count.
// Only chunks this session itself put to the writable store are counted,
// so in DECODE, and in ENCODE without a writable store, these both stay
// zero. Intended for
// the FINISHED hook report, not for progress during Step.
func (s *Synchronizer) Stats() (chunkCount int, bytesTotal int64) {
	return s.chunkCount, s.bytesTotal
}
