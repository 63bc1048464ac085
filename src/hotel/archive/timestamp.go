package archive

import (
	"encoding/binary"
	"time"

	"github.com/brandondube/tai"
)

// tai64Offset is the external TAI64 label offset (2^62), per the TAI64
// convention of biasing seconds-since-epoch so that the 8-byte field is
// never negative.
const tai64Offset = uint64(1) << 62

// encodeTimestamp renders t as a 12-byte TAI64N value, the same
// leap-second-free, monotonic timestamp discipline casync's own entry
// format uses: an 8-byte big-endian TAI64 label (seconds since the TAI
// epoch, offset by 2^62) followed by a 4-byte big-endian nanosecond count.
func encodeTimestamp(t time.Time) [12]byte {
	ts := tai.FromTime(t)

	var out [12]byte
	binary.BigEndian.PutUint64(out[0:8], tai64Offset+uint64(ts.Sec))
	binary.BigEndian.PutUint32(out[8:12], uint32(ts.Asec/tai.Nanosecond))

	return out
}

// decodeTimestamp is the inverse of encodeTimestamp.
func decodeTimestamp(b [12]byte) time.Time {
	sec := int64(binary.BigEndian.Uint64(b[0:8]) - tai64Offset)
	nsec := int64(binary.BigEndian.Uint32(b[8:12]))

	ts := tai.TAI{Sec: sec, Asec: nsec * tai.Nanosecond}

	return ts.AsTime()
}
