package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"code.vellumsync.dev/vellum/go/src/echo/markl"
)

func TestFSPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	data := bytes.Repeat([]byte("chunk-bytes"), 64)
	id := markl.MakeObjectId(data)

	if err := s.Put(id, data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !bytes.Equal(got, data) {
		t.Fatalf("Get returned %d bytes, want %d matching bytes", len(got), len(data))
	}
}

func TestFSCompressesAtRest(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	data := bytes.Repeat([]byte{0}, 4096)
	id := markl.MakeObjectId(data)

	if err := s.Put(id, data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	onDisk, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}

	if len(onDisk) >= len(data) {
		t.Fatalf("on-disk size %d not smaller than logical size %d", len(onDisk), len(data))
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !bytes.Equal(got, data) {
		t.Fatalf("Get did not return original logical bytes")
	}
}

func TestFSPutIdempotent(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	data := []byte("repeat me")
	id := markl.MakeObjectId(data)

	if err := s.Put(id, data); err != nil {
		t.Fatalf("first Put: %v", err)
	}

	if err := s.Put(id, data); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !bytes.Equal(got, data) {
		t.Fatalf("Get returned mismatched bytes after duplicate Put")
	}
}

func TestFSGetMissingIsNotFound(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	id := markl.MakeObjectId([]byte("never put"))

	if _, err := s.Get(id); !isNotFound(err) {
		t.Fatalf("Get on missing id = %v, want a not-found error", err)
	}

	if s.Has(id) {
		t.Fatalf("Has reported true for a missing id")
	}
}

func TestFSAllObjects(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	want := map[markl.Id]bool{}

	for _, content := range []string{"one", "two", "three"} {
		data := []byte(content)
		id := markl.MakeObjectId(data)

		if err := s.Put(id, data); err != nil {
			t.Fatalf("Put(%q): %v", content, err)
		}

		want[id] = true
	}

	got := map[markl.Id]bool{}

	for id, err := range s.AllObjects() {
		if err != nil {
			t.Fatalf("AllObjects: %v", err)
		}

		got[id] = true
	}

	if len(got) != len(want) {
		t.Fatalf("AllObjects returned %d ids, want %d", len(got), len(want))
	}

	for id := range want {
		if !got[id] {
			t.Fatalf("AllObjects missing id %s", id)
		}
	}
}

func TestCascadeFallsBackToSeedInOrder(t *testing.T) {
	writableDir := t.TempDir()
	seedDir := t.TempDir()

	writable, err := NewFS(writableDir)
	if err != nil {
		t.Fatalf("NewFS(writable): %v", err)
	}

	seed, err := NewFS(seedDir)
	if err != nil {
		t.Fatalf("NewFS(seed): %v", err)
	}

	onlyInWritable := []byte("writable chunk")
	onlyInSeed := []byte("seed chunk")

	idWritable := markl.MakeObjectId(onlyInWritable)
	idSeed := markl.MakeObjectId(onlyInSeed)

	if err := writable.Put(idWritable, onlyInWritable); err != nil {
		t.Fatalf("Put(writable): %v", err)
	}

	if err := seed.Put(idSeed, onlyInSeed); err != nil {
		t.Fatalf("Put(seed): %v", err)
	}

	cascade := Cascade{Writable: writable, Seeds: []ObjectStore{seed}}

	got, err := cascade.Get(idWritable)
	if err != nil {
		t.Fatalf("Get(idWritable): %v", err)
	}

	if !bytes.Equal(got, onlyInWritable) {
		t.Fatalf("Get(idWritable) = %q, want %q", got, onlyInWritable)
	}

	got, err = cascade.Get(idSeed)
	if err != nil {
		t.Fatalf("Get(idSeed) via seed fallback: %v", err)
	}

	if !bytes.Equal(got, onlyInSeed) {
		t.Fatalf("Get(idSeed) = %q, want %q", got, onlyInSeed)
	}

	missing := markl.MakeObjectId([]byte("nowhere"))

	if _, err := cascade.Get(missing); !isNotFound(err) {
		t.Fatalf("Get(missing) = %v, want not-found", err)
	}
}

func TestFSShardLayout(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	data := []byte("shard me")
	id := markl.MakeObjectId(data)

	if err := s.Put(id, data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	hexId := id.String()
	want := filepath.Join(dir, hexId[:2], hexId[2:]+".chunk")

	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected shard file at %s: %v", want, err)
	}
}
