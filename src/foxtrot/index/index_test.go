package index

import (
	"bytes"
	"io"
	"testing"

	"code.vellumsync.dev/vellum/go/src/echo/markl"
	"github.com/google/go-cmp/cmp"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, markl.Default())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	entries := []Entry{
		{Id: markl.MakeObjectId([]byte("a")), Size: 1},
		{Id: markl.MakeObjectId([]byte("bb")), Size: 2},
		{Id: markl.MakeObjectId([]byte("ccc")), Size: 3},
	}

	for _, e := range entries {
		if err := w.WriteObject(e.Id, e.Size); err != nil {
			t.Fatalf("WriteObject: %v", err)
		}
	}

	digest := markl.MakeObjectId([]byte("archive contents"))

	if err := w.SetDigest(digest); err != nil {
		t.Fatalf("SetDigest: %v", err)
	}

	if err := w.WriteEOF(); err != nil {
		t.Fatalf("WriteEOF: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	var got []Entry

	for {
		entry, err := r.ReadObject()
		if err == io.EOF {
			break
		}

		if err != nil {
			t.Fatalf("ReadObject: %v", err)
		}

		got = append(got, entry)
	}

	if diff := cmp.Diff(entries, got); diff != "" {
		t.Fatalf("round-tripped entries differ (-want +got):\n%s", diff)
	}

	gotDigest, done := r.Digest()
	if !done {
		t.Fatalf("Digest: not done after io.EOF")
	}

	if gotDigest != digest {
		t.Fatalf("digest = %s, want %s", gotDigest, digest)
	}
}

func TestSetDigestTwiceFails(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, markl.Default())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.SetDigest(markl.MakeObjectId([]byte("x"))); err != nil {
		t.Fatalf("first SetDigest: %v", err)
	}

	if err := w.SetDigest(markl.MakeObjectId([]byte("y"))); err == nil {
		t.Fatalf("expected second SetDigest to fail")
	}
}

func TestWriteEOFWithoutDigestFails(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, markl.Default())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.WriteEOF(); err == nil {
		t.Fatalf("expected WriteEOF without SetDigest to fail")
	}
}

func TestReadObjectAfterEOFStaysEOF(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, markl.Default())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.SetDigest(markl.MakeObjectId([]byte("x"))); err != nil {
		t.Fatalf("SetDigest: %v", err)
	}

	if err := w.WriteEOF(); err != nil {
		t.Fatalf("WriteEOF: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	if _, err := r.ReadObject(); err != io.EOF {
		t.Fatalf("first ReadObject = %v, want io.EOF", err)
	}

	if _, err := r.ReadObject(); err != io.EOF {
		t.Fatalf("second ReadObject = %v, want io.EOF", err)
	}
}
