// Package ohio holds small io.Writer helpers used while framing the index.
package ohio

import (
	"hash"
	"io"
)

// TeeHash writes p to dest and feeds the same bytes to h in one call,
// failing if either write fails. Used by the index writer so the running
// checksum never drifts from what actually reached disk.
type TeeHash struct {
	Dest io.Writer
	Hash hash.Hash
}

func (t TeeHash) Write(p []byte) (int, error) {
	n, err := t.Dest.Write(p)
	if err != nil {
		return n, err
	}

	if _, hashErr := t.Hash.Write(p[:n]); hashErr != nil {
		return n, hashErr
	}

	return n, nil
}
