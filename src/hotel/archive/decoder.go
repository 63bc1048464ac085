package archive

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
)

type decodeDirFrame struct {
	path string
}

// Decoder consumes the byte stream Encoder produces and materializes it
// back onto disk. Bytes arrive incrementally through PutData; Step parses
// as much as the currently buffered bytes allow and asks for more via
// CodeRequest when it needs to see past the end of the buffer.
type Decoder struct {
	basePath    string // where the tree is materialized; file, directory, or device depending on the root entry's kind
	baseMode    fs.FileMode
	baseModeSet bool

	buf bytes.Buffer
	eof bool

	stack []*decodeDirFrame

	file          *os.File
	fileRemaining uint64

	started  bool
	finished bool

	currentPath string
	currentMode fs.FileMode
}

// NewDecoder creates a Decoder that has not yet been told where to
// materialize the tree.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// SetBaseFd points the Decoder at an already-open base (a directory, a
// regular file, or a device), keyed by its path on disk (the Decoder
// creates or opens the root and any files and subdirectories beneath it by
// path, since there is no portable *at-relative-to-fd API used elsewhere
// in this codebase).
func (d *Decoder) SetBaseFd(root *os.File) error {
	if d.basePath != "" {
		return errors.Wrap(errors.ErrBusy)
	}

	if root == nil {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	d.basePath = root.Name()

	return nil
}

// SetBaseMode records the expected root kind when no base descriptor is
// available yet (the synchronizer resolves the descriptor at Start once it
// knows this).
func (d *Decoder) SetBaseMode(mode fs.FileMode) error {
	if d.baseModeSet {
		return errors.Wrap(errors.ErrBusy)
	}

	d.baseMode = mode
	d.baseModeSet = true

	return nil
}

// PutData feeds more archive bytes into the decoder's buffer.
func (d *Decoder) PutData(p []byte) error {
	d.buf.Write(p)
	return nil
}

// PutDataFd drains fd and buffers everything it yields, for the
// no-index case where the archive descriptor feeds the decoder directly
// rather than through a sequence of per-chunk PutData calls.
func (d *Decoder) PutDataFd(fd *os.File) error {
	var chunk [bufferSize]byte

	for {
		n, err := fd.Read(chunk[:])
		if n > 0 {
			if wErr := d.PutData(chunk[:n]); wErr != nil {
				return wErr
			}
		}

		if err != nil {
			break
		}
	}

	d.PutEOF()

	return nil
}

// PutEOF marks that no further bytes will arrive; any Step call that would
// otherwise return CodeRequest instead fails if there's a genuine
// structural truncation.
func (d *Decoder) PutEOF() {
	d.eof = true
}

func (d *Decoder) CurrentPath() string      { return d.currentPath }
func (d *Decoder) CurrentMode() fs.FileMode { return d.currentMode }

// Step advances materialization by one bounded unit of work.
func (d *Decoder) Step() (Code, error) {
	if d.finished {
		return CodeFinished, nil
	}

	if d.file != nil {
		return d.drainFile()
	}

	if !d.started {
		return d.startRoot()
	}

	if len(d.stack) == 0 {
		d.finished = true

		return CodeFinished, nil
	}

	return d.consumeNext()
}

func (d *Decoder) startRoot() (Code, error) {
	available := d.buf.Bytes()

	h, n, ok, err := decodeHeader(available)
	if err != nil {
		return CodeFinished, errors.Wrap(err)
	}

	if !ok {
		if d.eof {
			return CodeFinished, errors.Wrap(errors.ErrBadMessage)
		}

		return CodeRequest, nil
	}

	d.buf.Next(n)
	d.started = true
	d.currentPath = "."
	d.currentMode = fs.FileMode(h.Mode)

	if err := d.materializeRoot(h); err != nil {
		return CodeFinished, errors.Wrap(err)
	}

	return CodeNextFile, nil
}

func (d *Decoder) materializeRoot(h entryHeader) error {
	switch h.Kind {
	case EntryKindDir:
		if err := os.MkdirAll(d.basePath, 0o777); err != nil && !os.IsExist(err) {
			return err
		}

		d.stack = append(d.stack, &decodeDirFrame{path: ""})

	case EntryKindFile:
		f, err := os.OpenFile(d.basePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(h.Mode)|0o600)
		if err != nil {
			return err
		}

		d.file = f
		d.fileRemaining = h.Size

	case EntryKindBlk:
		if err := syscall.Mknod(d.basePath, uint32(h.Mode)|syscall.S_IFBLK, int(h.Dev)); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder) consumeNext() (Code, error) {
	available := d.buf.Bytes()

	if len(available) > 0 && available[0] == markerEndDir {
		d.buf.Next(1)
		frame := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		d.currentPath = frame.path

		return CodeStep, nil
	}

	h, n, ok, err := decodeHeader(available)
	if err != nil {
		return CodeFinished, errors.Wrap(err)
	}

	if !ok {
		if d.eof {
			return CodeFinished, errors.Wrap(errors.ErrBadMessage)
		}

		return CodeRequest, nil
	}

	d.buf.Next(n)

	frame := d.stack[len(d.stack)-1]

	childPath := h.Name
	if frame.path != "" {
		childPath = frame.path + "/" + h.Name
	}

	fullPath := filepath.Join(d.basePath, childPath)
	d.currentPath = childPath
	d.currentMode = fs.FileMode(h.Mode)

	switch h.Kind {
	case EntryKindDir:
		if err := os.MkdirAll(fullPath, 0o777); err != nil && !os.IsExist(err) {
			return CodeFinished, errors.Wrap(err)
		}

		d.stack = append(d.stack, &decodeDirFrame{path: childPath})

		return CodeNextFile, nil

	case EntryKindFile:
		f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(h.Mode)|0o600)
		if err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		d.file = f
		d.fileRemaining = h.Size

		return CodeNextFile, nil

	case EntryKindBlk:
		if err := syscall.Mknod(fullPath, uint32(h.Mode)|syscall.S_IFBLK, int(h.Dev)); err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		return CodeNextFile, nil

	default:
		return CodeFinished, errors.Wrapf(errors.ErrBadMessage, "unknown entry kind %#x", h.Kind)
	}
}

// drainFile writes as much of the buffered bytes as belong to the file
// currently open, in PAYLOAD-sized increments.
func (d *Decoder) drainFile() (Code, error) {
	if d.fileRemaining == 0 {
		d.file.Close()
		d.file = nil

		return d.Step()
	}

	available := d.buf.Bytes()
	if len(available) == 0 {
		if d.eof {
			d.file.Close()
			d.file = nil

			return CodeFinished, errors.Wrap(errors.ErrBadMessage)
		}

		return CodeRequest, nil
	}

	take := uint64(len(available))
	if take > d.fileRemaining {
		take = d.fileRemaining
	}

	if _, err := d.file.Write(available[:take]); err != nil {
		d.file.Close()
		d.file = nil

		return CodeFinished, errors.Wrap(err)
	}

	d.buf.Next(int(take))
	d.fileRemaining -= take

	if d.fileRemaining == 0 {
		d.file.Close()
		d.file = nil
	}

	return CodePayload, nil
}
