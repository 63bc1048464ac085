package archive

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
)

type dirFrame struct {
	path    string
	entries []os.DirEntry
	idx     int
}

// Encoder walks a filesystem tree and produces the linear byte stream that
// frames it, one bounded Step at a time.
type Encoder struct {
	root *os.File

	stack []*dirFrame

	file          *os.File
	fileRemaining int64
	buf           [bufferSize]byte

	data []byte

	started  bool
	finished bool

	currentPath string
	currentMode fs.FileMode
}

// NewEncoder creates an Encoder that has not yet taken ownership of a base
// file descriptor.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// SetBaseFd transfers ownership of root to the Encoder. root may be a
// directory, a regular file, or a block device.
func (e *Encoder) SetBaseFd(root *os.File) error {
	if e.root != nil {
		return errors.Wrap(errors.ErrBusy)
	}

	if root == nil {
		return errors.Wrap(errors.ErrInvalidArgument)
	}

	e.root = root

	return nil
}

func statKind(info fs.FileInfo) (EntryKind, uint64) {
	mode := info.Mode()

	switch {
	case mode.IsDir():
		return EntryKindDir, 0

	case mode&fs.ModeDevice != 0 && mode&fs.ModeCharDevice == 0:
		var dev uint64

		if sys, ok := info.Sys().(*syscall.Stat_t); ok {
			dev = uint64(sys.Rdev)
		}

		return EntryKindBlk, dev

	default:
		return EntryKindFile, 0
	}
}

func headerFromInfo(name string, info fs.FileInfo) entryHeader {
	kind, dev := statKind(info)

	h := entryHeader{
		Kind:    kind,
		ModTime: info.ModTime(),
		Mode:    uint32(info.Mode().Perm()),
		Name:    name,
	}

	switch kind {
	case EntryKindFile:
		h.Size = uint64(info.Size())
	case EntryKindBlk:
		h.Dev = dev
	}

	return h
}

// Step advances the walk by one bounded unit of work, returning the code
// for the work just performed. GetData retrieves the bytes produced.
func (e *Encoder) Step() (Code, error) {
	if e.finished {
		return CodeFinished, nil
	}

	if !e.started {
		return e.start()
	}

	if e.file != nil {
		return e.streamFile()
	}

	if len(e.stack) == 0 {
		e.finished = true
		e.data = nil

		return CodeFinished, nil
	}

	return e.advanceDir()
}

// start emits the root entry's header and sets up whatever state its kind
// requires (a directory listing to walk, or a file to stream).
func (e *Encoder) start() (Code, error) {
	if e.root == nil {
		return CodeFinished, errors.Wrap(errors.ErrNotReady)
	}

	e.started = true

	info, err := e.root.Stat()
	if err != nil {
		return CodeFinished, errors.Wrap(err)
	}

	h := headerFromInfo("", info)
	e.currentPath = "."
	e.currentMode = info.Mode()
	e.data = encodeHeader(h)

	switch h.Kind {
	case EntryKindDir:
		entries, err := e.root.ReadDir(-1)
		if err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		sortDirEntries(entries)

		e.stack = append(e.stack, &dirFrame{path: "", entries: entries})

	case EntryKindFile:
		e.file = e.root
		e.fileRemaining = int64(h.Size)

	case EntryKindBlk:
		// no further content
	}

	return CodeNextFile, nil
}

// streamFile emits up to bufferSize bytes of the file currently being read.
func (e *Encoder) streamFile() (Code, error) {
	if e.fileRemaining == 0 {
		e.closeCurrentFile()

		return e.Step()
	}

	max := int64(bufferSize)
	if e.fileRemaining < max {
		max = e.fileRemaining
	}

	n, err := e.file.Read(e.buf[:max])
	if n == 0 && err != nil {
		e.closeCurrentFile()

		return CodeFinished, errors.Wrap(err)
	}

	e.data = e.buf[:n]
	e.fileRemaining -= int64(n)

	if e.fileRemaining == 0 {
		e.closeCurrentFile()
	}

	return CodeData, nil
}

func (e *Encoder) closeCurrentFile() {
	if e.file != nil && e.file != e.root {
		e.file.Close()
	}

	e.file = nil
	e.fileRemaining = 0
}

// advanceDir either descends into the next child of the top-of-stack
// directory, or, once exhausted, emits the end-of-directory marker and pops.
func (e *Encoder) advanceDir() (Code, error) {
	frame := e.stack[len(e.stack)-1]

	if frame.idx >= len(frame.entries) {
		e.stack = e.stack[:len(e.stack)-1]
		e.data = []byte{markerEndDir}
		e.currentPath = frame.path
		e.currentMode = fs.ModeDir

		return CodeData, nil
	}

	child := frame.entries[frame.idx]
	frame.idx++

	childPath := child.Name()
	if frame.path != "" {
		childPath = frame.path + "/" + child.Name()
	}

	info, err := child.Info()
	if err != nil {
		return CodeFinished, errors.Wrap(err)
	}

	h := headerFromInfo(child.Name(), info)
	e.currentPath = childPath
	e.currentMode = info.Mode()
	e.data = encodeHeader(h)

	switch h.Kind {
	case EntryKindDir:
		f, err := os.Open(filepath.Join(e.root.Name(), childPath))
		if err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		entries, err := f.ReadDir(-1)
		f.Close()

		if err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		sortDirEntries(entries)

		e.stack = append(e.stack, &dirFrame{path: childPath, entries: entries})

	case EntryKindFile:
		f, err := os.Open(filepath.Join(e.root.Name(), childPath))
		if err != nil {
			return CodeFinished, errors.Wrap(err)
		}

		e.file = f
		e.fileRemaining = int64(h.Size)

	case EntryKindBlk:
		// no further content
	}

	return CodeNextFile, nil
}

func sortDirEntries(entries []os.DirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
}

// GetData returns the bytes produced by the most recent Step call.
func (e *Encoder) GetData() []byte {
	return e.data
}

func (e *Encoder) CurrentPath() string      { return e.currentPath }
func (e *Encoder) CurrentMode() fs.FileMode { return e.currentMode }
