package store

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/DataDog/zstd"

	"code.vellumsync.dev/vellum/go/src/_/interfaces"
	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
)

// FS is a filesystem-backed ObjectStore using a two-level sharded directory
// layout (first two hex digits of the id, then the remaining id), a common
// loose-object layout that shards by hash prefix. Chunk bytes are stored
// zstd-compressed on disk and decompressed transparently on Get, so
// Get always returns exactly the bytes that were Put — the compression is
// invisible to the content-addressing invariant: SHA-256(bytes) == id.
type FS struct {
	basePath string
}

var _ ObjectStore = &FS{}

// NewFS opens (creating if necessary) a filesystem object store rooted at
// basePath.
func NewFS(basePath string) (*FS, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating object store directory %s", basePath)
	}

	return &FS{basePath: basePath}, nil
}

func (fs *FS) pathFor(id markl.Id) string {
	hexId := id.String()
	return filepath.Join(fs.basePath, hexId[:2], hexId[2:]+".chunk")
}

// Put writes data under id, compressed at rest, atomically via a sibling
// temp file + rename so a concurrent Get never observes a partial write.
// Idempotent: if the destination already exists, Put is a no-op, since the
// store is content-addressed and duplicate puts are always redundant.
func (fs *FS) Put(id markl.Id, data []byte) error {
	dest := fs.pathFor(id)

	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, "creating shard directory for %s", id)
	}

	compressed, err := zstd.Compress(nil, data)
	if err != nil {
		return errors.Wrapf(err, "compressing chunk %s", id)
	}

	tmp, err := tempSiblingFile(filepath.Dir(dest))
	if err != nil {
		return errors.Wrapf(err, "creating temp file for chunk %s", id)
	}

	if _, err = tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "writing chunk %s", id)
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "closing chunk %s", id)
	}

	if err = os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "publishing chunk %s", id)
	}

	return nil
}

// Get returns the decompressed bytes stored under id.
func (fs *FS) Get(id markl.Id) ([]byte, error) {
	compressed, err := os.ReadFile(fs.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFoundError(id)
		}

		return nil, errors.Wrapf(err, "reading chunk %s", id)
	}

	data, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing chunk %s", id)
	}

	return data, nil
}

func (fs *FS) Has(id markl.Id) bool {
	_, err := os.Stat(fs.pathFor(id))
	return err == nil
}

func (fs *FS) AllObjects() interfaces.SeqError[markl.Id] {
	return func(yield func(markl.Id, error) bool) {
		shards, err := os.ReadDir(fs.basePath)
		if err != nil {
			yield(markl.Id{}, errors.Wrapf(err, "listing object store %s", fs.basePath))
			return
		}

		for _, shard := range shards {
			if !shard.IsDir() {
				continue
			}

			shardPath := filepath.Join(fs.basePath, shard.Name())

			entries, readErr := os.ReadDir(shardPath)
			if readErr != nil {
				if !yield(markl.Id{}, errors.Wrapf(readErr, "listing shard %s", shardPath)) {
					return
				}

				continue
			}

			for _, entry := range entries {
				name := entry.Name()
				const suffix = ".chunk"

				if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
					continue
				}

				hexId := shard.Name() + name[:len(name)-len(suffix)]

				id, parseErr := markl.IdFromHex(hexId)
				if parseErr != nil {
					if !yield(markl.Id{}, errors.Wrap(parseErr)) {
						return
					}

					continue
				}

				if !yield(id, nil) {
					return
				}
			}
		}
	}
}

func tempSiblingFile(dir string) (*os.File, error) {
	var suffix [16]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return nil, err
	}

	name := filepath.Join(dir, ".tmp-"+hex.EncodeToString(suffix[:]))

	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}
