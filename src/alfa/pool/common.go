package pool

import (
	"bufio"
	"bytes"

	"code.vellumsync.dev/vellum/go/src/_/interfaces"
)

var (
	bufioReaders     = Make[bufio.Reader](nil, nil)
	bufioWriters     = Make[bufio.Writer](nil, nil)
	resetableBuffers = MakeWithResetable[bytes.Buffer, *bytes.Buffer]()
)

// GetBufferedReader hands out a pooled bufio.Reader reset over r. Used to
// cut down on the small-read syscall count when a caller (e.g. the index
// reader) otherwise issues one io.Reader.Read per fixed-width field.
func GetBufferedReader(r interface {
	Read([]byte) (int, error)
}) (reader *bufio.Reader, repool interfaces.FuncRepool) {
	reader, repool = bufioReaders.GetWithRepool()
	reader.Reset(r)
	return reader, repool
}

// GetBufferedWriterFor hands out a pooled bufio.Writer reset over w. The
// caller must Flush before relying on w having seen the bytes.
func GetBufferedWriterFor(w interface {
	Write([]byte) (int, error)
}) (writer *bufio.Writer, repool interfaces.FuncRepool) {
	writer, repool = bufioWriters.GetWithRepool()
	writer.Reset(w)
	return writer, repool
}

// GetScratchBuffer hands out a pooled, empty bytes.Buffer for assembling a
// short-lived byte sequence in one call. Callers must copy out whatever
// they build before calling repool, since the backing array is reused by
// the next checkout.
func GetScratchBuffer() (buf *bytes.Buffer, repool interfaces.FuncRepool) {
	return resetableBuffers.GetWithRepool()
}
