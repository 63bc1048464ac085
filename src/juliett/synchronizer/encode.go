package synchronizer

import (
	"os"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/hotel/archive"
)

// stepEncode pulls one advance from the Encoder and fans its bytes out to
// the archive sink, the running archive digest, and the chunker, in that
// exact order: the sink write must short-circuit before any other state is
// published, the digest must see exactly what the sink saw, and the
// chunker must see exactly what the digest saw.
func (s *Synchronizer) stepEncode() (Code, error) {
	code, err := s.encoder.Step()
	if err != nil {
		return CodeFinished, errors.Wrap(err)
	}

	switch code {
	case archive.CodeFinished:
		if err := s.flushFinalChunk(); err != nil {
			return CodeFinished, err
		}

		if s.temporaryArchivePath != "" {
			if err := s.archiveFd.Close(); err != nil {
				return CodeFinished, errors.Wrap(err)
			}

			if err := os.Rename(s.temporaryArchivePath, s.archivePath); err != nil {
				return CodeFinished, errors.Wrap(err)
			}

			s.temporaryArchivePath = ""
		}

		s.eof = true

		return CodeFinished, nil

	case archive.CodeNextFile, archive.CodeData:
		data := s.encoder.GetData()

		if s.archiveFd != nil {
			if _, err := s.archiveFd.Write(data); err != nil {
				return CodeFinished, errors.Wrap(err)
			}
		}

		if _, err := s.archiveDigest.Write(data); err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		if err := s.feedChunker(data); err != nil {
			return CodeFinished, err
		}

		if code == archive.CodeNextFile {
			return CodeNextFile, nil
		}

		return CodeStep, nil

	default:
		return CodeFinished, errors.Wrapf(errors.ErrBadMessage, "unexpected encoder code %v", code)
	}
}
