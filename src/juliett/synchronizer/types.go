// Package synchronizer is the orchestration core of the archiver: it
// couples an archive encoder/decoder, a content-defined chunker, a
// content-addressed store hierarchy, an index writer/reader, and a running
// archive digest into one cooperative pipeline advanced a single Step at a
// time.
//
// A Synchronizer is created bound to exactly one Direction and is
// thereafter a one-shot streaming session: every configuration setter other
// than SetHashFormat is write-once, and once eof is reached no further Step
// call is legal.
package synchronizer

import (
	"hash"
	"io/fs"
	"os"

	"code.vellumsync.dev/vellum/go/src/_/interfaces"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
	"code.vellumsync.dev/vellum/go/src/foxtrot/index"
	"code.vellumsync.dev/vellum/go/src/hotel/archive"
	"code.vellumsync.dev/vellum/go/src/india/store"
)

// Direction fixes a Synchronizer to one side of the pipeline for its
// entire lifetime.
type Direction int

const (
	DirectionEncode Direction = iota
	DirectionDecode
)

func (d Direction) String() string {
	if d == DirectionEncode {
		return "ENCODE"
	}

	return "DECODE"
}

// Code is the outcome of one call to Step.
type Code int

const (
	CodeFinished Code = iota
	CodeNextFile
	CodeStep
)

func (c Code) String() string {
	switch c {
	case CodeFinished:
		return "FINISHED"
	case CodeNextFile:
		return "NEXT_FILE"
	case CodeStep:
		return "STEP"
	default:
		return "UNKNOWN"
	}
}

// BaseMode names the shape of the base tree endpoint when it must be
// created from scratch (DECODE with a path that does not yet exist).
type BaseMode int

const (
	BaseModeUnset BaseMode = iota
	BaseModeDir
	BaseModeFile
	BaseModeBlk
)

// Synchronizer is a single-use, single-direction streaming session.
type Synchronizer struct {
	direction Direction

	encoder *archive.Encoder
	decoder *archive.Decoder

	wstore store.ObjectStore
	rstores []store.ObjectStore

	chunker *chunkerState

	baseFd       *os.File
	basePath     string
	baseMode     BaseMode
	archiveFd    *os.File
	archivePath  string
	makePermMode fs.FileMode

	temporaryBasePath    string
	temporaryArchivePath string

	indexWriter *index.Writer
	indexReader *index.Reader
	indexPath   string
	indexFd     *os.File

	hashFormat *markl.Format

	objectDigest       hash.Hash
	objectDigestRepool interfaces.FuncRepool

	archiveDigest       hash.Hash
	archiveDigestRepool interfaces.FuncRepool

	chunkCount int
	bytesTotal int64

	started bool
	eof     bool
}
