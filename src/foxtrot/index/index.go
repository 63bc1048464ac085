// Package index implements a sequential chunk index:
//
//	Writer: open; write_object(id, size); set_digest(id); write_eof; close.
//	Reader: open; read_object() -> (id, size) or EOF.
//
// Framed the way a fan-out binary-search index writer/reader frame
// their own files — magic, version, big-endian fixed-width fields — but
// sequential rather than fan-out/binary-search indexed, since the
// Synchronizer only ever reads an index front-to-back.
package index

import (
	"bufio"
	"encoding/binary"
	"hash"
	"io"

	"code.vellumsync.dev/vellum/go/src/_/interfaces"
	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/alfa/pool"
	"code.vellumsync.dev/vellum/go/src/bravo/ohio"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
)

const (
	magic   = "VLIX"
	version = uint16(1)

	recordObject = byte(0x01)
	recordEOF    = byte(0x02)
)

// Entry is one (object id, size) record, part of the "ordered list of
// chunk identifiers plus their sizes".
type Entry struct {
	Id   markl.Id
	Size uint64
}

// Writer appends Entry records and a single trailing archive digest to an
// underlying io.Writer. Records are framed as a long run of small
// fixed-width writes, so the destination is wrapped in a pooled
// bufio.Writer rather than taking one write syscall per field.
type Writer struct {
	dest       io.Writer
	bufW       *bufio.Writer
	repoolBufW interfaces.FuncRepool
	hasher     hash.Hash
	repool     func()
	teed       io.Writer
	hashFormat *markl.Format
	digestSet  bool
	digest     markl.Id
	closed     bool
}

// NewWriter opens an index for writing and immediately writes the header.
func NewWriter(w io.Writer, hashFormat *markl.Format) (*Writer, error) {
	if hashFormat == nil {
		hashFormat = markl.Default()
	}

	h, repool := hashFormat.GetHash()
	bufW, repoolBufW := pool.GetBufferedWriterFor(w)

	wr := &Writer{
		dest:       w,
		bufW:       bufW,
		repoolBufW: repoolBufW,
		hasher:     h,
		repool:     repool,
		hashFormat: hashFormat,
		teed:       ohio.TeeHash{Dest: bufW, Hash: h},
	}

	if err := wr.writeHeader(); err != nil {
		return nil, errors.Wrap(err)
	}

	return wr, nil
}

func (wr *Writer) writeHeader() error {
	if _, err := wr.teed.Write([]byte(magic)); err != nil {
		return errors.Wrap(err)
	}

	if err := binary.Write(wr.teed, binary.BigEndian, version); err != nil {
		return errors.Wrap(err)
	}

	id := []byte(wr.hashFormat.Id())
	if len(id) > 255 {
		return errors.Errorf("hash format id too long: %d bytes", len(id))
	}

	if _, err := wr.teed.Write([]byte{byte(len(id))}); err != nil {
		return errors.Wrap(err)
	}

	if _, err := wr.teed.Write(id); err != nil {
		return errors.Wrap(err)
	}

	if _, err := wr.teed.Write([]byte{byte(wr.hashFormat.Size())}); err != nil {
		return errors.Wrap(err)
	}

	return nil
}

// WriteObject appends one (id, size) record. The chunk store put must
// strictly precede the index record append for the same chunk; enforcing
// that order is the caller's (Synchronizer's) job, not this writer's.
func (wr *Writer) WriteObject(id markl.Id, size uint64) error {
	if wr.closed {
		return errors.Wrap(errors.ErrPipelineClosed)
	}

	if _, err := wr.teed.Write([]byte{recordObject}); err != nil {
		return errors.Wrap(err)
	}

	if _, err := wr.teed.Write(id.GetBytes()); err != nil {
		return errors.Wrap(err)
	}

	if err := binary.Write(wr.teed, binary.BigEndian, size); err != nil {
		return errors.Wrap(err)
	}

	return nil
}

// SetDigest records the archive-level digest to be written alongside the
// end-of-stream marker. Write-once: a second call fails BUSY.
func (wr *Writer) SetDigest(digest markl.Id) error {
	if wr.digestSet {
		return errors.Wrap(errors.ErrBusy)
	}

	wr.digestSet = true
	wr.digest = digest

	return nil
}

// WriteEOF writes the end-of-stream marker plus the archive digest set by
// SetDigest. Requires SetDigest to have been called first.
func (wr *Writer) WriteEOF() error {
	if wr.closed {
		return errors.Wrap(errors.ErrPipelineClosed)
	}

	if !wr.digestSet {
		return errors.Wrap(errors.ErrNotReady)
	}

	if _, err := wr.teed.Write([]byte{recordEOF}); err != nil {
		return errors.Wrap(err)
	}

	if _, err := wr.teed.Write(wr.digest.GetBytes()); err != nil {
		return errors.Wrap(err)
	}

	checksum := wr.hasher.Sum(nil)

	if _, err := wr.bufW.Write(checksum); err != nil {
		return errors.Wrap(err)
	}

	wr.closed = true

	return nil
}

// Close flushes the buffered writer and closes the underlying destination
// if it is an io.Closer. WriteEOF must have already been called; Close does
// not call it implicitly.
func (wr *Writer) Close() (err error) {
	if wr.repool != nil {
		wr.repool()
		wr.repool = nil
	}

	if wr.bufW != nil {
		if flushErr := wr.bufW.Flush(); flushErr != nil {
			err = errors.Wrap(flushErr)
		}
	}

	if wr.repoolBufW != nil {
		wr.repoolBufW()
		wr.repoolBufW = nil
	}

	if err != nil {
		return err
	}

	if closer, ok := wr.dest.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
