package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfileFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profiles.toml")
	if err := os.WriteFile(path, []byte(contents), 0o666); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadAndGet(t *testing.T) {
	path := writeProfileFile(t, `
[profiles.nightly]
direction = "encode"
base-path = "/srv/data"
archive-path = "/srv/out/nightly.archive"
index-path = "/srv/out/nightly.caidx"
writable-store-dir = "/srv/store"
seed-store-dirs = ["/srv/seed-a", "/srv/seed-b"]
hook-path = "/srv/hooks/notify.lua"
extra-args = "--tag nightly --quiet"
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, err := file.Get("nightly")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if p.Direction != "encode" {
		t.Fatalf("Direction = %q, want encode", p.Direction)
	}

	if p.BasePath != "/srv/data" {
		t.Fatalf("BasePath = %q", p.BasePath)
	}

	if len(p.SeedStoreDirs) != 2 || p.SeedStoreDirs[0] != "/srv/seed-a" {
		t.Fatalf("SeedStoreDirs = %v", p.SeedStoreDirs)
	}

	tokens, err := p.ExtraArgsTokens()
	if err != nil {
		t.Fatalf("ExtraArgsTokens: %v", err)
	}

	want := []string{"--tag", "nightly", "--quiet"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}

	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokens[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestGetMissingProfileFails(t *testing.T) {
	path := writeProfileFile(t, `
[profiles.nightly]
base-path = "/srv/data"
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := file.Get("weekly"); err == nil {
		t.Fatal("expected Get of an absent profile to fail")
	}
}

func TestExtraArgsTokensEmptyIsNil(t *testing.T) {
	p := Profile{}

	tokens, err := p.ExtraArgsTokens()
	if err != nil {
		t.Fatalf("ExtraArgsTokens: %v", err)
	}

	if tokens != nil {
		t.Fatalf("tokens = %v, want nil", tokens)
	}
}
