package markl

import (
	"crypto/sha256"
	"testing"
)

func TestMakeObjectIdMatchesStdlib(t *testing.T) {
	data := []byte("the quick brown fox")
	want := sha256.Sum256(data)

	got := MakeObjectId(data)

	if got.String() != Id(want).String() {
		t.Fatalf("MakeObjectId = %s, want %s", got, Id(want))
	}
}

func TestFormatPoolResetsBetweenUses(t *testing.T) {
	f := Default()

	h, repool := f.GetHash()
	if _, err := h.Write([]byte("first")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	first := h.Sum(nil)
	repool()

	h2, repool2 := f.GetHash()
	defer repool2()

	if _, err := h2.Write([]byte("first")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	second := h2.Sum(nil)

	if string(first) != string(second) {
		t.Fatalf("pooled hash was not reset between checkouts: %x != %x", first, second)
	}
}

func TestIdFromHexRoundTrip(t *testing.T) {
	id := MakeObjectId([]byte("round trip"))

	parsed, err := IdFromHex(id.String())
	if err != nil {
		t.Fatalf("IdFromHex: %v", err)
	}

	if !parsed.Equal(id) {
		t.Fatalf("parsed id %s != original %s", parsed, id)
	}
}

func TestBlake2b256Registered(t *testing.T) {
	f, err := GetFormat(FormatIdBlake2b256)
	if err != nil {
		t.Fatalf("GetFormat: %v", err)
	}

	if f.Size() != 32 {
		t.Fatalf("blake2b-256 size = %d, want 32", f.Size())
	}
}
