// Package markl wraps the content hash primitive: SHA-256, 32-byte digest,
// reusable contexts reset between uses. It keeps a small registry of named
// hash "formats" behind a one-time init(), since a crypto library's global
// initialization belongs to the hash wrapper, not its callers.
package markl

import (
	"crypto/sha256"
	"hash"

	"code.vellumsync.dev/vellum/go/src/_/interfaces"
	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/alfa/pool"
	"golang.org/x/crypto/blake2b"
)

// FormatId names a registered hash algorithm.
type FormatId string

const (
	FormatIdSha256     FormatId = "sha256"
	FormatIdBlake2b256 FormatId = "blake2b-256"
)

// DefaultFormatId is the format the Synchronizer uses for object and
// archive digests unless SetHashFormat selects another registered one:
// SHA-256. blake2b-256 is registered alongside it as that second format;
// Default always returns SHA-256.
const DefaultFormatId = FormatIdSha256

// Format is a registered hash algorithm: a constructor plus a reusable pool
// of hash.Hash values keyed off it.
type Format struct {
	id          FormatId
	constructor func() hash.Hash
	pool        interfaces.Pool[hash.Hash]
	size        int
}

var formats = map[FormatId]*Format{}

func register(id FormatId, constructor func() hash.Hash) *Format {
	if _, exists := formats[id]; exists {
		panic("markl: format already registered: " + string(id))
	}

	f := &Format{
		id:          id,
		constructor: constructor,
		size:        constructor().Size(),
	}

	f.pool = pool.MakeValue(
		func() hash.Hash { return constructor() },
		func(h hash.Hash) { h.Reset() },
	)

	formats[id] = f

	return f
}

var (
	formatSha256     *Format
	formatBlake2b256 *Format
)

func init() {
	formatSha256 = register(FormatIdSha256, sha256.New)

	formatBlake2b256 = register(FormatIdBlake2b256, func() hash.Hash {
		h, err := blake2b.New256(nil)
		errors.PanicIfError(err)
		return h
	})
}

// Default returns the registered format the Synchronizer must use.
func Default() *Format {
	return formatSha256
}

// GetFormat looks up a registered format by id.
func GetFormat(id FormatId) (*Format, error) {
	f, ok := formats[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "unknown hash format %q", id)
	}

	return f, nil
}

func (f *Format) Id() FormatId { return f.id }
func (f *Format) Size() int    { return f.size }

// GetHash hands out a reset hash.Hash from this format's pool, plus the
// repool function to return it.
func (f *Format) GetHash() (hash.Hash, interfaces.FuncRepool) {
	return f.pool.GetWithRepool()
}

// Sum hashes b in one call using a pooled context — the common path for
// MakeObjectId.
func (f *Format) Sum(b []byte) Id {
	h, repool := f.GetHash()
	defer repool()

	_, err := h.Write(b)
	errors.PanicIfError(err)

	var id Id
	copy(id[:], h.Sum(nil))

	return id
}

// MakeObjectId returns SHA-256(bytes).
func MakeObjectId(b []byte) Id {
	return Default().Sum(b)
}
