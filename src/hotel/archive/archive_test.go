package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// drive runs an Encoder to completion and returns the concatenation of
// every byte it produced (headers and payload alike).
func drive(t *testing.T, e *Encoder) []byte {
	t.Helper()

	var out bytes.Buffer

	for {
		code, err := e.Step()
		if err != nil {
			t.Fatalf("Encoder.Step: %v", err)
		}

		if code == CodeFinished {
			return out.Bytes()
		}

		out.Write(e.GetData())
	}
}

// replay feeds archive bytes into a Decoder in small pieces, servicing
// CodeRequest by handing over the next piece, until FINISHED.
func replay(t *testing.T, d *Decoder, archiveBytes []byte) {
	t.Helper()

	const pieceSize = 17 // deliberately awkward, to exercise partial headers

	offset := 0

	for {
		code, err := d.Step()
		if err != nil {
			t.Fatalf("Decoder.Step: %v", err)
		}

		switch code {
		case CodeFinished:
			return

		case CodeRequest:
			if offset >= len(archiveBytes) {
				d.PutEOF()
				continue
			}

			end := offset + pieceSize
			if end > len(archiveBytes) {
				end = len(archiveBytes)
			}

			if err := d.PutData(archiveBytes[offset:end]); err != nil {
				t.Fatalf("PutData: %v", err)
			}

			offset = end
		}
	}
}

func TestRoundTripDirectoryTree(t *testing.T) {
	srcDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello world"), 0o644); err != nil {
		t.Fatalf("writing a.txt: %v", err)
	}

	if err := os.Mkdir(filepath.Join(srcDir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}

	if err := os.WriteFile(filepath.Join(srcDir, "sub", "b.txt"), bytes.Repeat([]byte("x"), 200_000), 0o644); err != nil {
		t.Fatalf("writing sub/b.txt: %v", err)
	}

	if err := os.WriteFile(filepath.Join(srcDir, "empty.txt"), nil, 0o644); err != nil {
		t.Fatalf("writing empty.txt: %v", err)
	}

	root, err := os.Open(srcDir)
	if err != nil {
		t.Fatalf("opening source dir: %v", err)
	}

	enc := NewEncoder()

	if err := enc.SetBaseFd(root); err != nil {
		t.Fatalf("SetBaseFd: %v", err)
	}

	archiveBytes := drive(t, enc)

	if len(archiveBytes) == 0 {
		t.Fatalf("encoder produced no bytes")
	}

	dstDir := filepath.Join(t.TempDir(), "restored")

	dec := NewDecoder()
	dec.basePath = dstDir

	replay(t, dec, archiveBytes)

	gotA, err := os.ReadFile(filepath.Join(dstDir, "a.txt"))
	if err != nil {
		t.Fatalf("reading restored a.txt: %v", err)
	}

	if string(gotA) != "hello world" {
		t.Fatalf("a.txt = %q, want %q", gotA, "hello world")
	}

	gotB, err := os.ReadFile(filepath.Join(dstDir, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("reading restored sub/b.txt: %v", err)
	}

	if len(gotB) != 200_000 {
		t.Fatalf("sub/b.txt length = %d, want %d", len(gotB), 200_000)
	}

	gotEmpty, err := os.ReadFile(filepath.Join(dstDir, "empty.txt"))
	if err != nil {
		t.Fatalf("reading restored empty.txt: %v", err)
	}

	if len(gotEmpty) != 0 {
		t.Fatalf("empty.txt length = %d, want 0", len(gotEmpty))
	}
}

func TestRoundTripRegularFileBase(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "blob")

	if err := os.WriteFile(srcPath, bytes.Repeat([]byte{0}, 1<<20), 0o644); err != nil {
		t.Fatalf("writing source file: %v", err)
	}

	root, err := os.Open(srcPath)
	if err != nil {
		t.Fatalf("opening source file: %v", err)
	}

	enc := NewEncoder()

	if err := enc.SetBaseFd(root); err != nil {
		t.Fatalf("SetBaseFd: %v", err)
	}

	firstPass := drive(t, enc)

	dstPath := filepath.Join(t.TempDir(), "restored-blob")

	dec := NewDecoder()
	dec.basePath = dstPath

	replay(t, dec, firstPass)

	restoredRoot, err := os.Open(dstPath)
	if err != nil {
		t.Fatalf("opening restored file: %v", err)
	}

	enc2 := NewEncoder()
	if err := enc2.SetBaseFd(restoredRoot); err != nil {
		t.Fatalf("SetBaseFd (re-encode): %v", err)
	}

	secondPass := drive(t, enc2)

	if !bytes.Equal(firstPass, secondPass) {
		t.Fatalf("re-encoding the restored tree produced different archive bytes")
	}
}

func TestSetBaseFdTwiceFails(t *testing.T) {
	dir := t.TempDir()

	f, err := os.Open(dir)
	if err != nil {
		t.Fatalf("opening dir: %v", err)
	}

	enc := NewEncoder()

	if err := enc.SetBaseFd(f); err != nil {
		t.Fatalf("first SetBaseFd: %v", err)
	}

	if err := enc.SetBaseFd(f); err == nil {
		t.Fatalf("expected second SetBaseFd to fail")
	}
}
