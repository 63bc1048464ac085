package index

import (
	"encoding/binary"
	"io"

	"code.vellumsync.dev/vellum/go/src/_/interfaces"
	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/alfa/pool"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
)

// Reader reads Entry records sequentially: each call returns the next
// (id, expected_size) record, and end-of-index surfaces as io.EOF. Records
// are a long run of small fixed-width reads, so the source is wrapped in a
// pooled bufio.Reader rather than taking one read syscall per field.
type Reader struct {
	src        io.Reader
	r          io.Reader
	repoolBufR interfaces.FuncRepool

	hashFormatId markl.FormatId
	hashSize     int
	digest       markl.Id
	done         bool
}

// NewReader opens an index for reading and parses its header.
func NewReader(r io.Reader) (*Reader, error) {
	bufR, repoolBufR := pool.GetBufferedReader(r)

	rd := &Reader{src: r, r: bufR, repoolBufR: repoolBufR}

	if err := rd.readHeader(); err != nil {
		rd.Close()
		return nil, errors.Wrap(err)
	}

	return rd, nil
}

// Close returns the pooled bufio.Reader and closes the underlying source if
// it is an io.Closer. Safe to call more than once.
func (rd *Reader) Close() error {
	if rd.repoolBufR != nil {
		rd.repoolBufR()
		rd.repoolBufR = nil
	}

	if closer, ok := rd.src.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

func (rd *Reader) readHeader() error {
	magicBuf := make([]byte, len(magic))
	if _, err := io.ReadFull(rd.r, magicBuf); err != nil {
		return errors.Wrapf(err, "reading index magic")
	}

	if string(magicBuf) != magic {
		return errors.Errorf("invalid index magic: got %q, want %q", magicBuf, magic)
	}

	var gotVersion uint16
	if err := binary.Read(rd.r, binary.BigEndian, &gotVersion); err != nil {
		return errors.Wrapf(err, "reading index version")
	}

	if gotVersion != version {
		return errors.Errorf("unsupported index version: got %d, want %d", gotVersion, version)
	}

	var idLen [1]byte
	if _, err := io.ReadFull(rd.r, idLen[:]); err != nil {
		return errors.Wrapf(err, "reading hash format id length")
	}

	idBuf := make([]byte, idLen[0])
	if _, err := io.ReadFull(rd.r, idBuf); err != nil {
		return errors.Wrapf(err, "reading hash format id")
	}

	rd.hashFormatId = markl.FormatId(idBuf)

	var sizeBuf [1]byte
	if _, err := io.ReadFull(rd.r, sizeBuf[:]); err != nil {
		return errors.Wrapf(err, "reading hash size")
	}

	rd.hashSize = int(sizeBuf[0])

	return nil
}

// HashFormatId reports which hash format the index was written with, so
// the caller can resolve object ids through the matching store.
func (rd *Reader) HashFormatId() markl.FormatId {
	return rd.hashFormatId
}

// ReadObject returns the next (id, size) record, or io.EOF once the
// end-of-stream marker has been consumed. Calling ReadObject again after
// io.EOF continues to return io.EOF.
func (rd *Reader) ReadObject() (entry Entry, err error) {
	if rd.done {
		return entry, io.EOF
	}

	var recordType [1]byte
	if _, err = io.ReadFull(rd.r, recordType[:]); err != nil {
		return entry, errors.Wrapf(err, "reading record type")
	}

	switch recordType[0] {
	case recordObject:
		idBuf := make([]byte, rd.hashSize)
		if _, err = io.ReadFull(rd.r, idBuf); err != nil {
			return entry, errors.Wrapf(err, "reading object id")
		}

		if entry.Id, err = markl.IdFromBytes(idBuf); err != nil {
			return entry, errors.Wrap(err)
		}

		if err = binary.Read(rd.r, binary.BigEndian, &entry.Size); err != nil {
			return entry, errors.Wrapf(err, "reading object size")
		}

		return entry, nil

	case recordEOF:
		digestBuf := make([]byte, rd.hashSize)
		if _, err = io.ReadFull(rd.r, digestBuf); err != nil {
			return entry, errors.Wrapf(err, "reading archive digest")
		}

		if rd.digest, err = markl.IdFromBytes(digestBuf); err != nil {
			return entry, errors.Wrap(err)
		}

		rd.done = true

		return entry, io.EOF

	default:
		return entry, errors.Errorf("unknown index record type %#x", recordType[0])
	}
}

// Digest returns the archive-level digest recorded by the end-of-stream
// marker. Only meaningful once ReadObject has returned io.EOF.
func (rd *Reader) Digest() (markl.Id, bool) {
	return rd.digest, rd.done
}
