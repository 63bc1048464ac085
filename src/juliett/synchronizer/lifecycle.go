package synchronizer

import (
	"crypto/rand"
	"encoding/hex"
	"io/fs"
	"os"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/foxtrot/index"
	"code.vellumsync.dev/vellum/go/src/hotel/archive"
)

func randomSuffix() (string, error) {
	var b [8]byte

	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}

	return hex.EncodeToString(b[:]), nil
}

func temporarySiblingPath(finalPath string) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", err
	}

	return finalPath + ".tmp-" + suffix, nil
}

// Start materializes whatever resources the configured direction needs
// before Step can be called: an Encoder or Decoder, an opened archive
// descriptor, and an opened index. It is internal — called lazily by the
// first Step — and idempotent on success.
func (s *Synchronizer) start() error {
	if s.started {
		return nil
	}

	if s.direction == DirectionEncode {
		if err := s.startEncode(); err != nil {
			s.teardownPartial()
			return err
		}
	} else {
		if err := s.startDecode(); err != nil {
			s.teardownPartial()
			return err
		}
	}

	if err := s.startHashContexts(); err != nil {
		s.teardownPartial()
		return err
	}

	if err := s.startIndex(); err != nil {
		s.teardownPartial()
		return err
	}

	if s.direction == DirectionEncode && s.wstore != nil {
		s.chunker = newChunkerState()
	}

	s.started = true

	return nil
}

func (s *Synchronizer) startHashContexts() error {
	if s.objectDigest == nil {
		h, repool := s.hashFormat.GetHash()
		s.objectDigest = h
		s.objectDigestRepool = repool
	}

	if s.archiveDigest == nil {
		h, repool := s.hashFormat.GetHash()
		s.archiveDigest = h
		s.archiveDigestRepool = repool
	}

	return nil
}

func (s *Synchronizer) startEncode() error {
	if s.archivePath != "" && s.archiveFd == nil {
		tmp, err := temporarySiblingPath(s.archivePath)
		if err != nil {
			return errors.Wrap(err)
		}

		perm := s.makePermMode
		if perm == 0 {
			perm = 0o666
		}

		fd, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err != nil {
			return errors.Wrap(err)
		}

		s.temporaryArchivePath = tmp
		s.archiveFd = fd
	}

	if s.encoder == nil {
		if s.baseFd == nil {
			return errors.Wrap(errors.ErrNotReady)
		}

		s.encoder = archive.NewEncoder()

		if err := s.encoder.SetBaseFd(s.baseFd); err != nil {
			return errors.Wrap(err)
		}

		s.baseFd = nil
	}

	return nil
}

func (s *Synchronizer) startDecode() error {
	if s.decoder == nil && s.baseFd == nil && s.basePath != "" {
		if s.baseMode == BaseModeUnset {
			return errors.Wrap(errors.ErrNotReady)
		}

		switch s.baseMode {
		case BaseModeDir:
			if err := os.MkdirAll(s.basePath, 0o777); err != nil && !os.IsExist(err) {
				return errors.Wrap(err)
			}

			fd, err := os.OpenFile(s.basePath, os.O_RDONLY, 0)
			if err != nil {
				return errors.Wrap(err)
			}

			s.baseFd = fd

		case BaseModeFile:
			tmp, err := temporarySiblingPath(s.basePath)
			if err != nil {
				return errors.Wrap(err)
			}

			fd, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
			if err != nil {
				return errors.Wrap(err)
			}

			s.temporaryBasePath = tmp
			s.baseFd = fd

		case BaseModeBlk:
			fd, err := os.OpenFile(s.basePath, os.O_WRONLY, 0)
			if err != nil {
				return errors.Wrap(err)
			}

			s.baseFd = fd

		default:
			return errors.Wrap(errors.ErrInvalidArgument)
		}
	}

	if s.decoder == nil {
		s.decoder = archive.NewDecoder()

		if s.baseFd != nil {
			if err := s.decoder.SetBaseFd(s.baseFd); err != nil {
				return errors.Wrap(err)
			}

			s.baseFd = nil
		} else {
			if err := s.decoder.SetBaseMode(decoderModeFor(s.baseMode)); err != nil {
				return errors.Wrap(err)
			}
		}
	}

	return nil
}

func decoderModeFor(m BaseMode) fs.FileMode {
	switch m {
	case BaseModeDir:
		return fs.ModeDir
	case BaseModeBlk:
		return fs.ModeDevice
	default:
		return 0
	}
}

func (s *Synchronizer) startIndex() error {
	if s.indexPath == "" && s.indexFd == nil {
		return nil
	}

	if s.direction == DirectionEncode && s.wstore == nil {
		return errors.Wrap(errors.ErrNotReady)
	}

	fd := s.indexFd

	if fd == nil {
		var err error

		flags := os.O_RDONLY
		if s.direction == DirectionEncode {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}

		fd, err = os.OpenFile(s.indexPath, flags, 0o644)
		if err != nil {
			return errors.Wrap(err)
		}
	}

	if s.direction == DirectionEncode {
		w, err := index.NewWriter(fd, s.hashFormat)
		if err != nil {
			return errors.Wrap(err)
		}

		s.indexWriter = w

		return nil
	}

	r, err := index.NewReader(fd)
	if err != nil {
		return errors.Wrap(err)
	}

	s.indexReader = r

	return nil
}

// teardownPartial releases anything Start allocated before a failure,
// restoring the instance to a state where dropping it does no further harm.
func (s *Synchronizer) teardownPartial() {
	if s.temporaryArchivePath != "" {
		os.Remove(s.temporaryArchivePath)
		s.temporaryArchivePath = ""
	}

	if s.temporaryBasePath != "" {
		os.Remove(s.temporaryBasePath)
		s.temporaryBasePath = ""
	}
}

// Close releases every resource the Synchronizer owns. Any temporary
// artifact not yet committed by a FINISHED rename is unlinked. Safe to
// call at any point in the session's lifetime, including before Start.
// Reports the first close failure encountered, if any, without masking it
// by continuing to release everything else.
func (s *Synchronizer) Close() (err error) {
	if s.objectDigestRepool != nil {
		s.objectDigestRepool()
		s.objectDigestRepool = nil
	}

	if s.archiveDigestRepool != nil {
		s.archiveDigestRepool()
		s.archiveDigestRepool = nil
	}

	if s.indexWriter != nil {
		errors.DeferredCloser(&err, s.indexWriter)
		s.indexWriter = nil
	}

	if s.indexReader != nil {
		errors.DeferredCloser(&err, s.indexReader)
		s.indexReader = nil
	}

	if s.baseFd != nil {
		errors.DeferredCloser(&err, s.baseFd)
		s.baseFd = nil
	}

	if s.archiveFd != nil {
		errors.DeferredCloser(&err, s.archiveFd)
		s.archiveFd = nil
	}

	if !s.eof {
		if s.temporaryArchivePath != "" {
			os.Remove(s.temporaryArchivePath)
		}

		if s.temporaryBasePath != "" {
			os.Remove(s.temporaryBasePath)
		}
	}

	return err
}
