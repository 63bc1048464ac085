package synchronizer

import (
	"io/fs"
	"os"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
	"code.vellumsync.dev/vellum/go/src/india/store"
)

// New creates a Synchronizer bound to direction. All configuration is
// supplied afterward through the Set* methods, each of which may be called
// at most once, except SetHashFormat.
func New(direction Direction) *Synchronizer {
	return &Synchronizer{
		direction:  direction,
		hashFormat: markl.Default(),
	}
}

func (s *Synchronizer) checkNotBusy(alreadySet bool) error {
	if alreadySet {
		return errors.Wrap(errors.ErrBusy)
	}

	return nil
}

func (s *Synchronizer) checkStarted() error {
	if s.started {
		return errors.Wrap(errors.ErrBusy)
	}

	return nil
}

// SetBaseFd configures the base tree endpoint by descriptor. At most one of
// SetBaseFd / SetBasePath may be called, and only once.
func (s *Synchronizer) SetBaseFd(fd *os.File) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if err := s.checkNotBusy(s.baseFd != nil || s.basePath != ""); err != nil {
		return err
	}

	if fd == nil {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	s.baseFd = fd

	return nil
}

// SetBasePath configures the base tree endpoint by path. In ENCODE this
// tries to open path as a directory first; if that fails because it is not
// a directory, it retries as a regular file. In DECODE the path is only
// remembered — materialization is deferred to Start, since the base kind
// depends on SetBaseMode.
func (s *Synchronizer) SetBasePath(path string) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if err := s.checkNotBusy(s.baseFd != nil || s.basePath != ""); err != nil {
		return err
	}

	if path == "" {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	if s.direction == DirectionEncode {
		fd, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err)
		}

		info, err := fd.Stat()
		if err != nil {
			fd.Close()
			return errors.Wrap(err)
		}

		if !info.IsDir() {
			fd.Close()

			fd, err = os.Open(path)
			if err != nil {
				return errors.Wrap(err)
			}
		}

		s.baseFd = fd

		return nil
	}

	s.basePath = path

	return nil
}

// SetBaseMode records the expected kind of the base tree when DECODE must
// create it from scratch.
func (s *Synchronizer) SetBaseMode(mode BaseMode) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if s.direction != DirectionDecode {
		return errors.Wrap(errors.ErrDirectionMismatch)
	}

	if err := s.checkNotBusy(s.baseMode != BaseModeUnset); err != nil {
		return err
	}

	if mode == BaseModeUnset {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	s.baseMode = mode

	return nil
}

// SetArchiveFd configures the archive endpoint by descriptor.
func (s *Synchronizer) SetArchiveFd(fd *os.File) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if err := s.checkNotBusy(s.archiveFd != nil || s.archivePath != ""); err != nil {
		return err
	}

	if fd == nil {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	s.archiveFd = fd

	return nil
}

// SetArchivePath configures the archive endpoint by path. In ENCODE the
// real file is created lazily at Start as a sibling temp path and renamed
// onto path on a successful FINISHED. In DECODE the path is opened
// read-only immediately.
func (s *Synchronizer) SetArchivePath(path string) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if err := s.checkNotBusy(s.archiveFd != nil || s.archivePath != ""); err != nil {
		return err
	}

	if path == "" {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	if s.direction == DirectionDecode {
		fd, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err)
		}

		s.archiveFd = fd
		s.archivePath = path

		return nil
	}

	s.archivePath = path

	return nil
}

// SetMakePermMode constrains the permission bits used when creating the
// archive output in ENCODE. No execute, setuid, or sticky bits allowed.
func (s *Synchronizer) SetMakePermMode(mode fs.FileMode) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if s.direction != DirectionEncode {
		return errors.Wrap(errors.ErrDirectionMismatch)
	}

	if err := s.checkNotBusy(s.makePermMode != 0); err != nil {
		return err
	}

	if mode&^fs.ModePerm != 0 || mode&0o111 != 0 {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	s.makePermMode = mode

	return nil
}

// SetHashFormat overrides the default SHA-256 hash format used for both
// the object and archive digests. Allowed only before Start has pooled a
// digest context under the previous format. It is not write-once: a second
// call before Start replaces the format chosen by the first.
func (s *Synchronizer) SetHashFormat(id markl.FormatId) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	format, err := markl.GetFormat(id)
	if err != nil {
		return err
	}

	s.hashFormat = format

	return nil
}

// SetWritableStore configures the single writable content-addressed store.
func (s *Synchronizer) SetWritableStore(basePath string) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if err := s.checkNotBusy(s.wstore != nil); err != nil {
		return err
	}

	fsStore, err := store.NewFS(basePath)
	if err != nil {
		return errors.Wrap(err)
	}

	s.wstore = fsStore

	return nil
}

// AddSeedStore appends a read-only store consulted, in registration order,
// after the writable store misses. May be called any number of times
// before Start.
func (s *Synchronizer) AddSeedStore(basePath string) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	fsStore, err := store.NewFS(basePath)
	if err != nil {
		return errors.Wrap(err)
	}

	s.rstores = append(s.rstores, fsStore)

	return nil
}

// SetIndexPath configures the index by path: for writing in ENCODE, for
// reading in DECODE.
func (s *Synchronizer) SetIndexPath(path string) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if err := s.checkNotBusy(s.indexPath != "" || s.indexFd != nil); err != nil {
		return err
	}

	if path == "" {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	s.indexPath = path

	return nil
}

// SetIndexFd configures the index by descriptor.
func (s *Synchronizer) SetIndexFd(fd *os.File) error {
	if err := s.checkStarted(); err != nil {
		return err
	}

	if err := s.checkNotBusy(s.indexPath != "" || s.indexFd != nil); err != nil {
		return err
	}

	if fd == nil {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	s.indexFd = fd

	return nil
}
