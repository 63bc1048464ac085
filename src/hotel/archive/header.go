package archive

import (
	"encoding/binary"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/alfa/pool"
)

// encodeHeader renders h as its fixed-field wire representation. The
// variable-length content that follows (directory children, file bytes) is
// written separately by the caller. One header is encoded per tree entry,
// so the scratch buffer comes from a pool rather than a fresh allocation
// each time.
func encodeHeader(h entryHeader) []byte {
	buf, repool := pool.GetScratchBuffer()
	defer repool()

	buf.WriteByte(byte(h.Kind))

	ts := encodeTimestamp(h.ModTime)
	buf.Write(ts[:])

	var modeBuf [4]byte
	binary.BigEndian.PutUint32(modeBuf[:], h.Mode)
	buf.Write(modeBuf[:])

	name := []byte(h.Name)

	var nameLenBuf [2]byte
	binary.BigEndian.PutUint16(nameLenBuf[:], uint16(len(name)))
	buf.Write(nameLenBuf[:])
	buf.Write(name)

	switch h.Kind {
	case EntryKindFile:
		var sizeBuf [8]byte
		binary.BigEndian.PutUint64(sizeBuf[:], h.Size)
		buf.Write(sizeBuf[:])

	case EntryKindBlk:
		var devBuf [8]byte
		binary.BigEndian.PutUint64(devBuf[:], h.Dev)
		buf.Write(devBuf[:])
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out
}

// headerPrefixLen is how many bytes must be available before decodeHeader
// can read the name length and so work out the rest of the header's length.
const headerPrefixLen = 1 + 12 + 4 + 2 // kind, mtime, mode, name length

// decodeHeader parses one full header from b, returning the header and how
// many bytes of b it consumed. It returns ok=false if b does not yet hold a
// complete header (the caller should request more bytes and retry).
func decodeHeader(b []byte) (h entryHeader, n int, ok bool, err error) {
	if len(b) < headerPrefixLen {
		return h, 0, false, nil
	}

	h.Kind = EntryKind(b[0])

	var ts [12]byte
	copy(ts[:], b[1:13])
	h.ModTime = decodeTimestamp(ts)

	h.Mode = binary.BigEndian.Uint32(b[13:17])

	nameLen := int(binary.BigEndian.Uint16(b[17:19]))
	n = headerPrefixLen + nameLen

	if len(b) < n {
		return h, 0, false, nil
	}

	h.Name = string(b[19:n])

	switch h.Kind {
	case EntryKindFile:
		if len(b) < n+8 {
			return h, 0, false, nil
		}

		h.Size = binary.BigEndian.Uint64(b[n : n+8])
		n += 8

	case EntryKindBlk:
		if len(b) < n+8 {
			return h, 0, false, nil
		}

		h.Dev = binary.BigEndian.Uint64(b[n : n+8])
		n += 8

	case EntryKindDir:
		// no further fixed fields

	default:
		return h, 0, false, errors.Wrapf(errors.ErrBadMessage, "unknown entry kind %#x", b[0])
	}

	return h, n, true, nil
}
