package synchronizer

import (
	"io"
	"os"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/hotel/archive"
)

// stepDecode calls the Decoder once, servicing any number of internal
// REQUEST cycles (the decoder asking for more input bytes) before
// returning a code visible to the caller.
func (s *Synchronizer) stepDecode() (Code, error) {
	for {
		code, err := s.decoder.Step()
		if err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		switch code {
		case archive.CodeFinished:
			if s.temporaryBasePath != "" {
				if err := os.Rename(s.temporaryBasePath, s.basePath); err != nil {
					return CodeFinished, errors.Wrap(err)
				}

				s.temporaryBasePath = ""
			}

			s.eof = true

			return CodeFinished, nil

		case archive.CodeNextFile:
			return CodeNextFile, nil

		case archive.CodeStep, archive.CodePayload:
			return CodeStep, nil

		case archive.CodeRequest:
			if err := s.serviceDecodeRequest(); err != nil {
				return CodeFinished, err
			}

			continue

		default:
			return CodeFinished, errors.Wrapf(errors.ErrBadMessage, "unexpected decoder code %v", code)
		}
	}
}

// serviceDecodeRequest supplies the decoder with its next span of bytes,
// either resolved through the index + store hierarchy or, if no index is
// configured, streamed directly from the archive descriptor.
func (s *Synchronizer) serviceDecodeRequest() error {
	if s.indexReader != nil {
		entry, err := s.indexReader.ReadObject()
		if err == io.EOF {
			s.decoder.PutEOF()
			return nil
		}

		if err != nil {
			return errors.Wrap(err)
		}

		data, err := s.get(entry.Id)
		if err != nil {
			return errors.Wrap(err)
		}

		if uint64(len(data)) != entry.Size {
			return errors.Wrapf(
				errors.ErrBadMessage,
				"chunk %s size %d disagrees with index record size %d",
				entry.Id, len(data), entry.Size,
			)
		}

		if err := s.decoder.PutData(data); err != nil {
			return errors.Wrap(err)
		}

		if _, err := s.archiveDigest.Write(data); err != nil {
			return errors.Wrap(err)
		}

		return nil
	}

	if s.archiveFd != nil {
		// No index means no per-chunk Get through s.get, so there is no
		// natural point to feed s.archiveDigest here the way the index
		// branch above does. GetDigest after a direct-fd decode returns
		// the digest of empty input, since nothing was ever written to
		// s.archiveDigest; callers that need the archive digest on decode
		// must configure an index.
		return errors.Wrap(s.decoder.PutDataFd(s.archiveFd))
	}

	return errors.Wrap(errors.ErrDirectionMismatch)
}
