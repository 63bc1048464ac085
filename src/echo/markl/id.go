package markl

import (
	"encoding/hex"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
)

// Id is a 32-byte SHA-256 object identifier.
// It is a fixed-size value type so it can be used as a map key directly.
type Id [32]byte

func (id Id) String() string {
	return hex.EncodeToString(id[:])
}

func (id Id) GetBytes() []byte {
	return id[:]
}

func (id Id) Equal(other Id) bool {
	return id == other
}

// IdFromBytes copies a hash digest into an Id, failing if the length does
// not match exactly 32 bytes.
func IdFromBytes(b []byte) (id Id, err error) {
	if len(b) != len(id) {
		err = errors.Wrapf(
			errors.ErrInvalidArgument,
			"object id must be %d bytes, got %d",
			len(id),
			len(b),
		)
		return id, err
	}

	copy(id[:], b)
	return id, nil
}

// IdFromHex parses a hex-encoded object id.
func IdFromHex(s string) (id Id, err error) {
	b, decodeErr := hex.DecodeString(s)
	if decodeErr != nil {
		err = errors.Wrapf(errors.ErrInvalidArgument, "decoding object id %q", s)
		return id, err
	}

	return IdFromBytes(b)
}
