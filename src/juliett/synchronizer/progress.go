package synchronizer

import (
	"io/fs"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
)

// CurrentPath delegates to whichever of encoder/decoder is active.
// Intended for progress reporting between Step calls.
func (s *Synchronizer) CurrentPath() (string, error) {
	switch {
	case s.encoder != nil:
		return s.encoder.CurrentPath(), nil
	case s.decoder != nil:
		return s.decoder.CurrentPath(), nil
	default:
		return "", errors.Wrap(errors.ErrDirectionMismatch)
	}
}

// CurrentMode delegates to whichever of encoder/decoder is active.
func (s *Synchronizer) CurrentMode() (fs.FileMode, error) {
	switch {
	case s.encoder != nil:
		return s.encoder.CurrentMode(), nil
	case s.decoder != nil:
		return s.decoder.CurrentMode(), nil
	default:
		return 0, errors.Wrap(errors.ErrDirectionMismatch)
	}
}
