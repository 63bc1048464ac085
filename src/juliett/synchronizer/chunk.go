package synchronizer

import (
	"bytes"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/charlie/chunker"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
)

// chunkerState is the rolling-hash splitter plus the buffer accumulating
// bytes of the in-progress chunk across Step calls.
type chunkerState struct {
	c   *chunker.Chunker
	buf bytes.Buffer
}

func newChunkerState() *chunkerState {
	return &chunkerState{c: chunker.New(
		chunker.DefaultMinSize,
		chunker.DefaultAvgSize,
		chunker.DefaultMaxSize,
	)}
}

// feedChunker pushes one slice of freshly produced archive bytes through
// the chunker, emitting and publishing every chunk boundary it finds. One
// input slice may produce zero, one, or several chunks.
func (s *Synchronizer) feedChunker(p []byte) error {
	if s.chunker == nil {
		return nil
	}

	for len(p) > 0 {
		offset, ok := s.chunker.c.Scan(p)
		if !ok {
			s.chunker.buf.Write(p)
			return nil
		}

		var chunkBytes []byte

		if s.chunker.buf.Len() == 0 {
			chunkBytes = p[:offset]
		} else {
			s.chunker.buf.Write(p[:offset])
			chunkBytes = s.chunker.buf.Bytes()
		}

		if err := s.emitChunk(chunkBytes); err != nil {
			return err
		}

		s.chunker.buf.Reset()
		p = p[offset:]
	}

	return nil
}

// emitChunk hashes, stores, and indexes one chunk, in the order the
// drivers depend on: store put strictly precedes the index record append.
func (s *Synchronizer) emitChunk(chunkBytes []byte) error {
	id := s.makeObjectIdLocked(chunkBytes)

	if s.wstore == nil {
		return nil
	}

	// chunkBytes may alias a buffer the caller reuses; copy before the
	// store retains it past this call.
	owned := make([]byte, len(chunkBytes))
	copy(owned, chunkBytes)

	if err := s.wstore.Put(id, owned); err != nil {
		return errors.Wrap(err)
	}

	if s.indexWriter != nil {
		if err := s.indexWriter.WriteObject(id, uint64(len(owned))); err != nil {
			return errors.Wrap(err)
		}
	}

	s.chunkCount++
	s.bytesTotal += int64(len(owned))

	return nil
}

func (s *Synchronizer) makeObjectIdLocked(b []byte) markl.Id {
	s.objectDigest.Reset()

	_, err := s.objectDigest.Write(b)
	errors.PanicIfError(err)

	var id markl.Id
	copy(id[:], s.objectDigest.Sum(nil))

	return id
}

// flushFinalChunk emits whatever is left in the buffer at ENCODE FINISH,
// then finalizes the index if one is configured.
func (s *Synchronizer) flushFinalChunk() error {
	if s.chunker != nil && s.chunker.buf.Len() > 0 {
		if err := s.emitChunk(s.chunker.buf.Bytes()); err != nil {
			return err
		}

		s.chunker.buf.Reset()
	}

	if s.indexWriter == nil {
		return nil
	}

	digestId := s.getDigestUnchecked()

	if err := s.indexWriter.SetDigest(digestId); err != nil {
		return errors.Wrap(err)
	}

	if err := s.indexWriter.WriteEOF(); err != nil {
		return errors.Wrap(err)
	}

	return errors.Wrap(s.indexWriter.Close())
}

func (s *Synchronizer) getDigestUnchecked() markl.Id {
	var id markl.Id
	copy(id[:], s.archiveDigest.Sum(nil))

	return id
}
