// Package profile loads a named sync profile from TOML: which base path to
// walk, where its archive and index live, which store is writable, which
// seed stores to consult, and an optional extra-arguments string to hand to
// a post-run hook.
package profile

import (
	"os"

	"github.com/google/shlex"
	"github.com/pelletier/go-toml/v2"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
)

// Profile is one named sync configuration.
type Profile struct {
	Direction        string   `toml:"direction"`
	BasePath         string   `toml:"base-path"`
	BaseMode         string   `toml:"base-mode"`
	ArchivePath      string   `toml:"archive-path"`
	IndexPath        string   `toml:"index-path"`
	WritableStoreDir string   `toml:"writable-store-dir"`
	SeedStoreDirs    []string `toml:"seed-store-dirs"`
	HashFormatId     string   `toml:"hash-format-id"`
	HookPath         string   `toml:"hook-path"`
	ExtraArgs        string   `toml:"extra-args"`
}

// File is the top-level shape of a profile TOML document: one or more named
// profiles under [profiles.<name>].
type File struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Load reads and parses a profile file from path.
func Load(path string) (File, error) {
	var file File

	data, err := os.ReadFile(path)
	if err != nil {
		return file, errors.Wrapf(err, "reading profile file %s", path)
	}

	if err = toml.Unmarshal(data, &file); err != nil {
		return file, errors.Wrapf(err, "parsing profile file %s", path)
	}

	return file, nil
}

// Get returns the named profile, or ErrNotFound if it is absent.
func (f File) Get(name string) (Profile, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return p, errors.MakeErrNotFoundString(name)
	}

	return p, nil
}

// ExtraArgsTokens tokenizes ExtraArgs the way a shell would, honoring
// quoting, so a hook can receive it as argv rather than one opaque string.
func (p Profile) ExtraArgsTokens() ([]string, error) {
	if p.ExtraArgs == "" {
		return nil, nil
	}

	tokens, err := shlex.Split(p.ExtraArgs)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizing extra-args %q", p.ExtraArgs)
	}

	return tokens, nil
}
